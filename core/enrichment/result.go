// Package enrichment defines the advisory context result model shared by
// context retrieval clients.
package enrichment

// Result is the outcome of a best-effort context fetch. Absence of context
// is a valid outcome, never an error: a stale-but-present answer is
// preferable to no answer.
type Result struct {
	Available bool
	// Context is plain text summarizing the retrieved items, present only
	// when Available.
	Context string
}

// Unavailable is the degraded result used for every failure path.
func Unavailable() Result { return Result{} }
