package prefs

import (
	"path/filepath"
	"testing"
)

// TestSaveLoadRoundTrip verifies values survive a save/load cycle through
// the JSON file.
func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Load()
	p.SetString("scalingMethod", "Min/Max")
	p.SetInt("binFactor", 2)
	p.SetBool("liveOnOpen", true)
	if err := p.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	q := Load()
	if got := q.String("scalingMethod", ""); got != "Min/Max" {
		t.Errorf("String = %q, want Min/Max", got)
	}
	if got := q.Int("binFactor", 1); got != 2 {
		t.Errorf("Int = %d, want 2 (JSON numbers decode as float64)", got)
	}
	if !q.Bool("liveOnOpen", false) {
		t.Error("Bool lost across round trip")
	}
}

// TestFallbacks verifies missing and mistyped keys fall back.
func TestFallbacks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "nowhere"))

	p := Load()
	if got := p.String("missing", "default"); got != "default" {
		t.Errorf("String fallback = %q", got)
	}
	if got := p.Int("missing", 7); got != 7 {
		t.Errorf("Int fallback = %d", got)
	}
	if got := p.Bool("missing", true); !got {
		t.Error("Bool fallback lost")
	}

	p.SetString("number", "not a number")
	if got := p.Int("number", 3); got != 3 {
		t.Errorf("Mistyped Int = %d, want fallback 3", got)
	}
}
