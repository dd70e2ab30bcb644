// Package languages holds the language profiles the assistant can operate
// in. A profile carries every per-language value the pipeline needs so that
// nothing downstream switches on raw locale tags.
package languages

import "strings"

// Profile describes one selectable assistant language.
type Profile struct {
	// Tag is the BCP-47 locale tag used for both the recognizer and the
	// synthesizer.
	Tag string
	// DisplayName is the human-readable name used when constraining
	// generated text to the language.
	DisplayName string
}

// PrimarySubtag returns the language part of the tag ("hi" for "hi-IN").
func (p Profile) PrimarySubtag() string {
	subtag, _, _ := strings.Cut(p.Tag, "-")
	return subtag
}

func (p Profile) IsZero() bool { return p.Tag == "" }

var profiles = []Profile{
	{Tag: "en-IN", DisplayName: "English"},
	{Tag: "hi-IN", DisplayName: "Hindi"},
	{Tag: "ta-IN", DisplayName: "Tamil"},
	{Tag: "te-IN", DisplayName: "Telugu"},
	{Tag: "kn-IN", DisplayName: "Kannada"},
	{Tag: "ml-IN", DisplayName: "Malayalam"},
	{Tag: "gu-IN", DisplayName: "Gujarati"},
	{Tag: "mr-IN", DisplayName: "Marathi"},
	{Tag: "bn-IN", DisplayName: "Bengali"},
	{Tag: "pa-IN", DisplayName: "Punjabi"},
}

// Default returns the profile used when a session has not selected one.
func Default() Profile { return profiles[0] }

// All returns every selectable profile in presentation order.
func All() []Profile {
	all := make([]Profile, len(profiles))
	copy(all, profiles)
	return all
}

// Lookup finds a profile by its full locale tag.
func Lookup(tag string) (Profile, bool) {
	for _, profile := range profiles {
		if profile.Tag == tag {
			return profile, true
		}
	}
	return Profile{}, false
}

// LookupPrimary finds the first profile whose primary language subtag
// matches, regardless of region.
func LookupPrimary(subtag string) (Profile, bool) {
	for _, profile := range profiles {
		if profile.PrimarySubtag() == subtag {
			return profile, true
		}
	}
	return Profile{}, false
}

// SampleQueries returns the suggestion prompts surfaced to users trying out
// the assistant.
func SampleQueries() []string {
	return []string{
		"What's the current price of Reliance?",
		"Tell me about NIFTY 50",
		"Market trends today",
		"Best stocks to invest",
	}
}
