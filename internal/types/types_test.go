package types

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTimestampFormat(t *testing.T) {
	at := time.Date(2026, 3, 7, 9, 5, 2, 0, time.UTC)
	if got := Timestamp(at); got != "2026/03/07 09:05:02" {
		t.Fatalf("Timestamp() = %q, want 2026/03/07 09:05:02", got)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []AssetCategory{AssetInspiration, AssetSpeech, AssetStrategy} {
		if !ValidCategory(c) {
			t.Fatalf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("memes") {
		t.Fatal(`ValidCategory("memes") = true`)
	}
}

func TestNewSocialAccounts(t *testing.T) {
	got := NewSocialAccounts()
	if got.Version != SchemaVersion {
		t.Fatalf("Version = %d, want %d", got.Version, SchemaVersion)
	}
	want := map[string]bool{
		PlatformFacebook:  false,
		PlatformInstagram: false,
		PlatformThreads:   false,
		PlatformLine:      false,
		PlatformGoogle:    false,
	}
	if diff := cmp.Diff(want, got.Connected); diff != "" {
		t.Fatalf("Connected mismatch (-want +got):\n%s", diff)
	}
}

func TestSeedDNA(t *testing.T) {
	seed := SeedDNA()
	if seed.CandidateName == "" || seed.Slogan == "" {
		t.Fatalf("seed profile incomplete: %+v", seed)
	}
	if seed.Triangle == nil {
		t.Fatal("seed profile missing strategic triangle")
	}
	if seed.Version != SchemaVersion {
		t.Fatalf("seed Version = %d, want %d", seed.Version, SchemaVersion)
	}
}
