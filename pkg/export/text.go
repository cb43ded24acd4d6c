package export

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// Format names accepted by Render.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Render serialises content in the named format. Content is reconciled first
// so chord lines always reflect their runs.
func Render(c sheet.Content, format, title string) (string, error) {
	c = sheet.Reconcile(c)
	switch strings.ToLower(format) {
	case "", FormatText:
		return Text(c), nil
	case FormatMarkdown, "md":
		return Markdown(c, title), nil
	case FormatJSON:
		data, err := sheet.Encode(c)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// Text returns the sheet as plain text, one line per sheet line, with a
// trailing newline when non-empty.
func Text(c sheet.Content) string {
	if c.Len() == 0 {
		return ""
	}
	return c.String() + "\n"
}

// Markdown renders section headers as headings and keeps chord and lyric
// lines in fenced blocks so their column alignment survives.
func Markdown(c sheet.Content, title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	}

	fence := fenceFor(c)
	inFence := false
	closeFence := func() {
		if inFence {
			sb.WriteString(fence + "\n\n")
			inFence = false
		}
	}

	for _, line := range c.Lines {
		if line.Kind == sheet.KindSection {
			closeFence()
			sb.WriteString(fmt.Sprintf("## %s\n\n", sectionTitle(line.Text)))
			continue
		}
		if !inFence {
			if line.Kind == sheet.KindEmpty {
				continue
			}
			sb.WriteString(fence + "\n")
			inFence = true
		}
		sb.WriteString(line.Text)
		sb.WriteByte('\n')
	}
	closeFence()

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// fenceFor returns a backtick fence longer than any backtick run inside the
// sheet, so no line can close a block early.
func fenceFor(c sheet.Content) string {
	longest := 0
	for _, line := range c.Lines {
		run := 0
		for _, r := range line.Text {
			if r != '`' {
				run = 0
				continue
			}
			run++
			longest = max(longest, run)
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func sectionTitle(text string) string {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "[")
	if i := strings.LastIndex(t, "]"); i >= 0 {
		t = t[:i] + t[i+1:]
	}
	return strings.TrimSpace(t)
}
