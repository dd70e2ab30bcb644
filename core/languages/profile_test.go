package languages

import "testing"

func TestLookupFindsKnownTags(t *testing.T) {
	profile, ok := Lookup("hi-IN")
	if !ok {
		t.Fatalf("expected hi-IN to resolve to a profile")
	}
	if profile.DisplayName != "Hindi" {
		t.Fatalf("expected display name Hindi, got %q", profile.DisplayName)
	}
}

func TestLookupRejectsUnknownTags(t *testing.T) {
	if _, ok := Lookup("fr-FR"); ok {
		t.Fatalf("expected fr-FR to be unknown")
	}
}

func TestLookupPrimaryIgnoresRegion(t *testing.T) {
	profile, ok := LookupPrimary("ta")
	if !ok {
		t.Fatalf("expected primary subtag ta to resolve")
	}
	if profile.Tag != "ta-IN" {
		t.Fatalf("expected ta-IN, got %q", profile.Tag)
	}
}

func TestDefaultIsEnglishIndia(t *testing.T) {
	if got := Default().Tag; got != "en-IN" {
		t.Fatalf("expected default profile en-IN, got %q", got)
	}
}

func TestPrimarySubtag(t *testing.T) {
	if got := (Profile{Tag: "kn-IN"}).PrimarySubtag(); got != "kn" {
		t.Fatalf("expected kn, got %q", got)
	}
}

func TestAllReturnsACopy(t *testing.T) {
	all := All()
	if len(all) != 10 {
		t.Fatalf("expected ten profiles, got %d", len(all))
	}
	all[0] = Profile{Tag: "xx-XX", DisplayName: "Mutated"}
	if Default().Tag != "en-IN" {
		t.Fatalf("expected mutation of All result to not affect the registry")
	}
}
