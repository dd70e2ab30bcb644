package deepgram

import "github.com/stockest/stockest-core/core/synthesis"

const defaultVoiceID = "aura-asteria-en"

// voiceCatalog is the static set of aura voice models. The speak API has
// no voice listing endpoint, so the catalog ships with the engine.
var voiceCatalog = []synthesis.Voice{
	{ID: "aura-asteria-en", Name: "Asteria", Locale: "en-US"},
	{ID: "aura-luna-en", Name: "Luna", Locale: "en-US"},
	{ID: "aura-stella-en", Name: "Stella", Locale: "en-US"},
	{ID: "aura-athena-en", Name: "Athena", Locale: "en-GB"},
	{ID: "aura-hera-en", Name: "Hera", Locale: "en-US"},
	{ID: "aura-orion-en", Name: "Orion", Locale: "en-US"},
	{ID: "aura-arcas-en", Name: "Arcas", Locale: "en-US"},
	{ID: "aura-perseus-en", Name: "Perseus", Locale: "en-US"},
	{ID: "aura-angus-en", Name: "Angus", Locale: "en-IE"},
	{ID: "aura-orpheus-en", Name: "Orpheus", Locale: "en-US"},
	{ID: "aura-helios-en", Name: "Helios", Locale: "en-GB"},
	{ID: "aura-zeus-en", Name: "Zeus", Locale: "en-US"},
}

func catalogVoice(id string) (synthesis.Voice, bool) {
	for _, voice := range voiceCatalog {
		if voice.ID == id {
			return voice, true
		}
	}
	return synthesis.Voice{}, false
}
