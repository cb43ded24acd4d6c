package engine

import (
	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/metrics"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// Transpose returns a copy of c with every chord run stepped one semitone.
// The step starts from a run's transposed letters when present, so repeated
// calls accumulate. Runs whose letters do not parse as a pitched chord (for
// example "N.C.") are left as they are. Line text is not recomputed; that is
// the reconciliation pass's job.
func Transpose(c sheet.Content, up bool) sheet.Content {
	defer metrics.Timer(metrics.Transpose)()

	out := c.Clone()
	for i := range out.Lines {
		if !out.Lines[i].IsChords() {
			continue
		}
		for j := range out.Lines[i].Runs {
			run := &out.Lines[i].Runs[j]
			if !run.IsChord() {
				continue
			}
			next, err := chord.Transpose(run.Displayed(), up)
			if err != nil {
				continue
			}
			run.TransposedLetters = next
			run.ChordSymbol = next
		}
	}
	return out
}
