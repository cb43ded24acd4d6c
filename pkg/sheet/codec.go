package sheet

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Decode errors.
var (
	ErrMissingLines = errors.New("content has no Lines array")
	ErrMissingRuns  = errors.New("chord line has no Parts array")
	ErrMissingKind  = errors.New("missing Type")
)

// DecodeError locates a structural problem in encoded content.
type DecodeError struct {
	Line int // index into Lines, -1 for document-level problems
	Run  int // index into Parts, -1 when the problem is on the line itself
	Err  error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Line < 0:
		return fmt.Sprintf("decode content: %v", e.Err)
	case e.Run < 0:
		return fmt.Sprintf("decode content: line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("decode content: line %d part %d: %v", e.Line, e.Run, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

type wireRun struct {
	Type              *string `json:"Type"`
	Letters           string  `json:"Letters"`
	Chord             string  `json:"Chord"`
	TransposedLetters string  `json:"TransposedLetters"`
}

type wireLine struct {
	LineNumber int        `json:"LineNumber"`
	Text       string     `json:"Text"`
	Type       *string    `json:"Type"`
	Parts      *[]wireRun `json:"Parts"`
}

type wireContent struct {
	Lines *[]wireLine `json:"Lines"`
}

// Decode parses engine-encoded content into the typed model, validating its
// shape. Every line needs a Type, every chord line a Parts array (possibly
// empty) and every part a Type. Unknown kinds are accepted.
func Decode(data []byte) (Content, error) {
	var wc wireContent
	if err := json.Unmarshal(data, &wc); err != nil {
		return Content{}, &DecodeError{Line: -1, Run: -1, Err: err}
	}
	if wc.Lines == nil {
		return Content{}, &DecodeError{Line: -1, Run: -1, Err: ErrMissingLines}
	}

	out := Content{Lines: make([]Line, 0, len(*wc.Lines))}
	for i, wl := range *wc.Lines {
		if wl.Type == nil || *wl.Type == "" {
			return Content{}, &DecodeError{Line: i, Run: -1, Err: ErrMissingKind}
		}
		if wl.LineNumber < 0 {
			return Content{}, &DecodeError{Line: i, Run: -1, Err: fmt.Errorf("negative LineNumber %d", wl.LineNumber)}
		}
		line := Line{
			LineNumber: wl.LineNumber,
			Text:       wl.Text,
			Kind:       LineKind(*wl.Type),
		}
		if line.IsChords() && wl.Parts == nil {
			return Content{}, &DecodeError{Line: i, Run: -1, Err: ErrMissingRuns}
		}
		if wl.Parts != nil {
			line.Runs = make([]LetterRun, 0, len(*wl.Parts))
			for j, wr := range *wl.Parts {
				if wr.Type == nil || *wr.Type == "" {
					return Content{}, &DecodeError{Line: i, Run: j, Err: ErrMissingKind}
				}
				line.Runs = append(line.Runs, LetterRun{
					Kind:              RunKind(*wr.Type),
					OriginalLetters:   wr.Letters,
					ChordSymbol:       wr.Chord,
					TransposedLetters: wr.TransposedLetters,
				})
			}
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

// Encode serialises content in the engine wire shape. Nil slices are written
// as empty arrays for chord lines so the result always decodes.
func Encode(c Content) ([]byte, error) {
	norm := c.Clone()
	for i := range norm.Lines {
		if norm.Lines[i].IsChords() && norm.Lines[i].Runs == nil {
			norm.Lines[i].Runs = []LetterRun{}
		}
	}
	data, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return data, nil
}
