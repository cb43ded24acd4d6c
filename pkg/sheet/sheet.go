// Package sheet defines the structured song-sheet content exchanged with the
// content engine, and the reconciliation pass that turns engine output into
// displayable text.
//
// A sheet is an ordered list of lines. Chord lines additionally carry the runs
// they were split into, so their text can always be rebuilt after the chord
// letters of those runs have been transposed.
package sheet

import "strings"

// LineKind classifies a line. The set is open: the engine may emit kinds this
// package does not name, and consumers must fall back to default handling.
type LineKind string

const (
	KindSection LineKind = "Section"
	KindChords  LineKind = "Chords"
	KindLyrics  LineKind = "Lyrics"
	KindText    LineKind = "Text"
	KindEmpty   LineKind = "Empty"
)

// RunKind classifies a run within a chord line. Open set, like LineKind.
type RunKind string

const (
	RunChord RunKind = "ChordRun"
	RunText  RunKind = "Text"
)

// LetterRun is a contiguous span of a chord line.
type LetterRun struct {
	Kind RunKind `json:"Type"`
	// OriginalLetters are the letters as parsed from the file. Never modified
	// once set; only TransposedLetters changes across transposition steps.
	OriginalLetters string `json:"Letters"`
	// ChordSymbol is the canonical chord the engine associates with the run.
	// Empty for non-chord runs.
	ChordSymbol string `json:"Chord"`
	// TransposedLetters is empty until a transposition step has been applied.
	TransposedLetters string `json:"TransposedLetters"`
}

// Displayed returns the letters that should be rendered for the run.
func (r LetterRun) Displayed() string {
	if r.TransposedLetters != "" {
		return r.TransposedLetters
	}
	return r.OriginalLetters
}

// IsChord reports whether the run is a chord token.
func (r LetterRun) IsChord() bool {
	return r.Kind == RunChord
}

// Line is one row of a sheet.
type Line struct {
	LineNumber int      `json:"LineNumber"`
	Text       string   `json:"Text"`
	Kind       LineKind `json:"Type"`
	// Runs is only populated for chord lines. For those lines Text is derived
	// from Runs and must not be trusted until reconciled.
	Runs []LetterRun `json:"Parts"`
}

// IsChords reports whether the line is a chord line.
func (l Line) IsChords() bool {
	return l.Kind == KindChords
}

// Content is a whole sheet in file order.
type Content struct {
	Lines []Line `json:"Lines"`
}

// Empty returns content with no lines. Lines is non-nil so that encoded
// output is `{"Lines":[]}` rather than null.
func Empty() Content {
	return Content{Lines: []Line{}}
}

// Len returns the number of lines.
func (c Content) Len() int {
	return len(c.Lines)
}

// Clone returns a deep copy of c. Runs are copied so that the clone can be
// handed to the engine without the caller's runs changing underneath it.
func (c Content) Clone() Content {
	out := Content{Lines: make([]Line, len(c.Lines))}
	for i, line := range c.Lines {
		out.Lines[i] = line.clone()
	}
	return out
}

func (l Line) clone() Line {
	if l.Runs != nil {
		runs := make([]LetterRun, len(l.Runs))
		copy(runs, l.Runs)
		l.Runs = runs
	}
	return l
}

// ResetTransposition returns a copy of c with every run's TransposedLetters
// cleared and chord line text rebuilt from the original letters.
func (c Content) ResetTransposition() Content {
	out := c.Clone()
	for i := range out.Lines {
		for j := range out.Lines[i].Runs {
			out.Lines[i].Runs[j].TransposedLetters = ""
		}
	}
	return Reconcile(out)
}

// IsTransposed reports whether any run carries transposed letters.
func (c Content) IsTransposed() bool {
	for _, line := range c.Lines {
		for _, run := range line.Runs {
			if run.TransposedLetters != "" {
				return true
			}
		}
	}
	return false
}

// String renders the text of every line, newline separated.
func (c Content) String() string {
	var sb strings.Builder
	for i, line := range c.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Text)
	}
	return sb.String()
}
