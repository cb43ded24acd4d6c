// Package chord recognises chord tokens in song sheets and steps them by one
// semitone.
package chord

import (
	"errors"
	"fmt"
	"strings"
)

// Accidental is the sharp/flat modifier on a note.
type Accidental int

const (
	Natural Accidental = iota
	Sharp
	Flat
)

// String returns the accidental as written in a chord.
func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "#"
	case Flat:
		return "b"
	default:
		return ""
	}
}

// NoChord is the conventional "no chord" marker.
const NoChord = "N.C."

const knownSuffixes = "m 7 5 dim dim7 aug sus sus2 sus4 maj7 m7 7sus4 maj9 maj11 maj13 maj9#11 maj13#11 add9 6add9 maj7b5 maj7#5 m6 m9 m11 m13 madd9 m6add9 mmaj7 mmaj9 m7b5 m7#5 6 9 11 13 7b5 7#5 7b9"

var suffixes = func() map[string]bool {
	m := make(map[string]bool)
	for _, s := range strings.Fields(knownSuffixes) {
		m[s] = true
	}
	return m
}()

// ErrNotAChord is returned by Parse for tokens that are not chords.
var ErrNotAChord = errors.New("not a chord")

// Chord is a parsed chord symbol such as "F#m7" or "C/G".
type Chord struct {
	Note       string // upper-case root letter A-G
	Accidental Accidental
	Flavor     string // suffix, lower-cased as in knownSuffixes
	Bass       *Chord // slash bass note, nil when absent
}

// IsChord reports whether token is a chord symbol, including "N.C.".
func IsChord(token string) bool {
	if strings.EqualFold(token, NoChord) {
		return true
	}
	_, err := Parse(token)
	return err == nil
}

// Parse parses a chord token. "N.C." is recognised by IsChord but is not a
// pitched chord, so Parse rejects it.
func Parse(token string) (Chord, error) {
	if token == "" || strings.EqualFold(token, NoChord) {
		return Chord{}, fmt.Errorf("%q: %w", token, ErrNotAChord)
	}
	if strings.Count(token, "/") > 1 {
		return Chord{}, fmt.Errorf("%q: %w", token, ErrNotAChord)
	}

	head, bass, hasBass := strings.Cut(token, "/")
	c, ok := parseHead(head)
	if !ok {
		return Chord{}, fmt.Errorf("%q: %w", token, ErrNotAChord)
	}
	if hasBass {
		b, ok := parseHead(bass)
		if !ok {
			return Chord{}, fmt.Errorf("%q: bad bass note: %w", token, ErrNotAChord)
		}
		c.Bass = &b
	}
	return c, nil
}

func parseHead(s string) (Chord, bool) {
	lower := strings.ToLower(s)
	if lower == "" || lower[0] < 'a' || lower[0] > 'g' {
		return Chord{}, false
	}
	c := Chord{Note: strings.ToUpper(s[:1])}
	rest := lower[1:]
	if rest != "" {
		switch rest[0] {
		case '#':
			c.Accidental = Sharp
			rest = rest[1:]
		case 'b':
			c.Accidental = Flat
			rest = rest[1:]
		}
	}
	if rest == "" {
		return c, true
	}
	if !suffixes[rest] {
		return Chord{}, false
	}
	c.Flavor = rest
	return c, true
}

// String returns the canonical spelling of the chord.
func (c Chord) String() string {
	var sb strings.Builder
	sb.WriteString(c.Note)
	sb.WriteString(c.Accidental.String())
	sb.WriteString(c.Flavor)
	if c.Bass != nil {
		sb.WriteByte('/')
		sb.WriteString(c.Bass.String())
	}
	return sb.String()
}

var naturalClass = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// PitchClass returns the root's semitone offset from C, 0-11.
func (c Chord) PitchClass() int {
	pc := naturalClass[c.Note]
	switch c.Accidental {
	case Sharp:
		pc++
	case Flat:
		pc--
	}
	return (pc + 12) % 12
}

func (c *Chord) setPitchClass(pc int, names [12]string) {
	name := names[(pc+12)%12]
	c.Note = name[:1]
	c.Accidental = Natural
	if len(name) > 1 {
		if name[1] == '#' {
			c.Accidental = Sharp
		} else {
			c.Accidental = Flat
		}
	}
}

// StepUp raises the chord (and its bass) by one semitone. Naturals are
// preferred, otherwise the sharp spelling is used.
func (c *Chord) StepUp() {
	if c.Bass != nil {
		c.Bass.StepUp()
	}
	c.setPitchClass(c.PitchClass()+1, sharpNames)
}

// StepDown lowers the chord (and its bass) by one semitone. Naturals are
// preferred, otherwise the flat spelling is used.
func (c *Chord) StepDown() {
	if c.Bass != nil {
		c.Bass.StepDown()
	}
	c.setPitchClass(c.PitchClass()-1, flatNames)
}

// Transpose parses token, steps it by one semitone in the given direction and
// returns the new spelling. up=false steps down.
func Transpose(token string, up bool) (string, error) {
	c, err := Parse(token)
	if err != nil {
		return "", err
	}
	if up {
		c.StepUp()
	} else {
		c.StepDown()
	}
	return c.String(), nil
}

// Canonical returns the canonical spelling of token, or token itself when it
// does not parse (e.g. "N.C.").
func Canonical(token string) string {
	c, err := Parse(token)
	if err != nil {
		return token
	}
	return c.String()
}
