package chord

import (
	"errors"
	"testing"
)

func TestParseAndString(t *testing.T) {
	for _, token := range []string{"A", "A#", "Ab", "Am", "A#m7b5", "Abm6add9", "C/G", "F#m7/C#", "Bbmaj7", "Esus4"} {
		c, err := Parse(token)
		if err != nil {
			t.Errorf("Parse(%q): %v", token, err)
			continue
		}
		if c.String() != token {
			t.Errorf("Parse(%q).String() = %q", token, c.String())
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, token := range []string{"", "H", "Hello", "Cxyz", "C/G/E", "C/", "N.C.", "x2", "|"} {
		if _, err := Parse(token); !errors.Is(err, ErrNotAChord) {
			t.Errorf("Parse(%q) err = %v, want ErrNotAChord", token, err)
		}
	}
}

func TestIsChord(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"C", true},
		{"n.c.", true},
		{"G/B", true},
		{"Dsus2", true},
		{"the", false},
		{"Bad", false},
		{"Em7", true},
		{"E/Q", false},
	}
	for _, tt := range tests {
		if got := IsChord(tt.token); got != tt.want {
			t.Errorf("IsChord(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestStepUp(t *testing.T) {
	tests := map[string]string{
		"Ab": "A", "A": "A#", "A#": "B", "Bb": "B", "B": "C", "C": "C#",
		"C#": "D", "Db": "D", "D": "D#", "D#": "E", "E": "F", "F": "F#",
		"F#": "G", "Gb": "G", "G": "G#", "G#": "A",
		"Am7": "A#m7", "C/G": "C#/G#", "B#": "C#",
	}
	for from, want := range tests {
		got, err := Transpose(from, true)
		if err != nil {
			t.Fatalf("Transpose(%q): %v", from, err)
		}
		if got != want {
			t.Errorf("up %s: got %s, want %s", from, got, want)
		}
	}
}

func TestStepDown(t *testing.T) {
	tests := map[string]string{
		"Ab": "G", "A": "Ab", "A#": "A", "Bb": "A", "B": "Bb", "C": "B",
		"C#": "C", "Db": "C", "D": "Db", "D#": "D", "Eb": "D", "E": "Eb",
		"F": "E", "F#": "F", "Gb": "F", "G": "Gb", "G#": "G",
		"Dm/F": "Dbm/E", "Cb": "Bb",
	}
	for from, want := range tests {
		got, err := Transpose(from, false)
		if err != nil {
			t.Fatalf("Transpose(%q): %v", from, err)
		}
		if got != want {
			t.Errorf("down %s: got %s, want %s", from, got, want)
		}
	}
}

func TestTwelveStepsRoundTrip(t *testing.T) {
	c, err := Parse("F#m7")
	if err != nil {
		t.Fatal(err)
	}
	start := c.PitchClass()
	for i := 0; i < 12; i++ {
		c.StepUp()
	}
	if c.PitchClass() != start {
		t.Errorf("pitch class drifted: %d -> %d", start, c.PitchClass())
	}
	if c.Flavor != "m7" {
		t.Errorf("flavor changed to %q", c.Flavor)
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical("cMAJ7"); got != "Cmaj7" {
		t.Errorf("Canonical(cMAJ7) = %q", got)
	}
	if got := Canonical("N.C."); got != "N.C." {
		t.Errorf("Canonical(N.C.) = %q", got)
	}
}

func TestIsKey(t *testing.T) {
	if !IsKey(Unset) || !IsKey("F#m") || IsKey("H") {
		t.Error("unexpected IsKey results")
	}
}
