// Package generation defines the request model and prompt construction for
// language-constrained answer generation.
package generation

import (
	"errors"

	"github.com/stockest/stockest-core/core/languages"
)

// ErrNoContent reports that the generation service answered without usable
// content at the documented payload path.
var ErrNoContent = errors.New("generation response contained no usable content")

// Request is one answer-generation call. Context is empty when enrichment
// was unavailable; Profile is the language profile captured when the cycle
// started.
type Request struct {
	Utterance string
	Context   string
	Profile   languages.Profile
}
