package sheet

import "strings"

// Reconcile derives display-ready content from content returned by a
// transposition step. The result has the same lines in the same order:
//
//   - non-chord lines are copied unchanged
//   - chord lines get their Text rebuilt from their runs, choosing each run's
//     transposed letters when present and its original letters otherwise
//
// The choice is made per run. A chord line routinely mixes transposed chord
// tokens with spacing and bar runs that never transpose.
//
// A chord line without runs reconciles to empty text. The input is never
// modified.
func Reconcile(c Content) Content {
	out := Content{Lines: make([]Line, len(c.Lines))}
	for i, line := range c.Lines {
		if !line.IsChords() {
			out.Lines[i] = line
			continue
		}
		rebuilt := line.clone()
		rebuilt.Text = ChordText(line.Runs)
		out.Lines[i] = rebuilt
	}
	return out
}

// ChordText concatenates the displayed letters of runs in order.
func ChordText(runs []LetterRun) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.Displayed())
	}
	return sb.String()
}
