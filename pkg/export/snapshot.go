package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"
)

// SnapshotOptions controls sheet snapshot export.
type SnapshotOptions struct {
	Path    string        // Output path; format inferred from extension when Format empty
	Format  string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title   string        // Rendered in the header block
	Key     string        // Musical key indicator, "-" or empty when unset
	Content sheet.Content // Sheet to render; reconciled before drawing
}

// SaveSnapshot renders a static image of the sheet (SVG or PNG) with each line
// banded in the colour of its presentation bucket.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Content.Len() == 0 {
		return fmt.Errorf("no lines to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		file, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSVG(file, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// --- layout ------------------------------------------------------------------

const (
	margin     = 24
	headerH    = 56
	lineH      = 18
	charW      = 7 // basicfont.Face7x13 advance
	bandInsetY = 2
)

type layoutLine struct {
	Text   string
	Number int
	Bucket sheet.Bucket
	Y      int
}

type layoutResult struct {
	Title  string
	Key    string
	Lines  []layoutLine
	Width  int
	Height int
}

func buildLayout(opts SnapshotOptions) layoutResult {
	c := sheet.Reconcile(opts.Content)

	cols := runewidth.StringWidth(opts.Title)
	lines := make([]layoutLine, 0, c.Len())
	for i, line := range c.Lines {
		if w := runewidth.StringWidth(line.Text); w > cols {
			cols = w
		}
		lines = append(lines, layoutLine{
			Text:   line.Text,
			Number: line.LineNumber,
			Bucket: sheet.StyleFor(line.Kind),
			Y:      margin + headerH + i*lineH,
		})
	}
	if cols < 40 {
		cols = 40
	}

	key := opts.Key
	if key == "" {
		key = "-"
	}
	return layoutResult{
		Title:  opts.Title,
		Key:    key,
		Lines:  lines,
		Width:  2*margin + cols*charW,
		Height: 2*margin + headerH + len(lines)*lineH,
	}
}

// --- colours -----------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorSection  = color.RGBA{0xcf, 0xfa, 0xfe, 0xff}
	colorChords   = color.RGBA{0xfb, 0xcf, 0xe8, 0xff}
	colorLyrics   = color.RGBA{0xfe, 0xf9, 0xc3, 0xff}
)

func bucketColor(b sheet.Bucket) (color.RGBA, bool) {
	switch b {
	case sheet.BucketSection:
		return colorSection, true
	case sheet.BucketChords:
		return colorChords, true
	case sheet.BucketLyrics:
		return colorLyrics, true
	default:
		return colorBackdrop, false
	}
}

// --- renderers ---------------------------------------------------------------

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(margin/2, margin/2, float64(layout.Width-margin), headerH-8, 8)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, margin, margin+8, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored("key: "+layout.Key, margin, margin+26, 0, 0.5)

	for _, l := range layout.Lines {
		if bg, ok := bucketColor(l.Bucket); ok {
			dc.SetColor(bg)
			dc.DrawRectangle(margin-4, float64(l.Y+bandInsetY), float64(layout.Width-2*margin+8), lineH-bandInsetY)
			dc.Fill()
		}
		dc.SetColor(colorText)
		dc.DrawStringAnchored(l.Text, margin, float64(l.Y)+lineH/2+1, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderSVG(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(margin/2, margin/2, layout.Width-margin, headerH-8, 8, 8, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(margin, margin+12, layout.Title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(margin, margin+30, "key: "+layout.Key, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, l := range layout.Lines {
		if bg, ok := bucketColor(l.Bucket); ok {
			canvas.Rect(margin-4, l.Y+bandInsetY, layout.Width-2*margin+8, lineH-bandInsetY, fmt.Sprintf("fill:%s", css(bg)))
		}
		canvas.Text(margin, l.Y+lineH-4, l.Text,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;white-space:pre", css(colorText)),
			`xml:space="preserve"`)
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
