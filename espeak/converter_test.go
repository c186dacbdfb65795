package espeak

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		language string
		wantErr  bool
	}{
		{"valid", "hello", "en", false},
		{"empty text", "", "en", true},
		{"empty language", "hello", "", true},
		{"at limit", strings.Repeat("a", MaxTextLength), "en", false},
		{"over limit", strings.Repeat("a", MaxTextLength+1), "en", true},
		{"multibyte at limit", strings.Repeat("é", MaxTextLength), "fr", false},
		{"multibyte over limit", strings.Repeat("é", MaxTextLength+1), "fr", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.text, tt.language)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestResultOf(t *testing.T) {
	if r := resultOf("hɛlɒ", nil); !r.Success || r.Phonemes != "hɛlɒ" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r := resultOf("partial", ErrConversionFailed); r.Success || r.Phonemes != "" {
		t.Errorf("failed result must be empty: %+v", r)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateUninitialized: "uninitialized",
		StateInitialized:   "initialized",
		StateTerminated:    "terminated",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestDefaultLocations(t *testing.T) {
	locations := DefaultLocations()
	if len(locations) != 3 {
		t.Fatalf("expected 3 default locations, got %d", len(locations))
	}
	for _, loc := range locations {
		if !strings.HasSuffix(loc, DataDirName) {
			t.Errorf("location %q does not end in %s", loc, DataDirName)
		}
	}
	if locations[1] != "/usr/local/share/espeak-ng-data" {
		t.Errorf("unexpected system location %q", locations[1])
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !pathExists(dir) {
		t.Errorf("pathExists(%q) = false", dir)
	}
	if pathExists(dir + "/missing") {
		t.Error("pathExists reported a missing path")
	}
}
