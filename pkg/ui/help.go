package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# leadsheet

| Key | Action |
|-----|--------|
| ` + "`o`" + ` | open a song file |
| ` + "`+` `u`" + ` | transpose up one semitone |
| ` + "`-` `d`" + ` | transpose down one semitone |
| ` + "`c`" + ` | copy the sheet to the clipboard |
| ` + "`k`" + ` | choose the musical key |
| ` + "`r`" + ` | reload the file |
| ` + "`n`" + ` | toggle line numbers |
| ` + "`↑` `↓` `pgup` `pgdn`" + ` | scroll |
| ` + "`?`" + ` | toggle this help |
| ` + "`q`" + ` | quit |

Sections are shown in cyan, chord lines in pink and lyrics in yellow.
Transposing only changes chords; spacing and bar lines stay put.
`

// renderHelp renders the help overlay for the given width.
func renderHelp(width int) (string, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(helpMarkdown)
}
