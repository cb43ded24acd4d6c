package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

func TestSaveSnapshot_SVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "song.svg")
	err := SaveSnapshot(SnapshotOptions{Path: path, Title: "Song", Key: "C#", Content: sampleSheet()})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	for _, want := range []string{"<svg", "C#   G#", "Hello darkness", "key: C#", css(colorChords), css(colorSection)} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestSaveSnapshot_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.png")
	if err := SaveSnapshot(SnapshotOptions{Path: path, Content: sampleSheet()}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestSaveSnapshot_InfersSVGWithoutExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "song")
	if err := SaveSnapshot(SnapshotOptions{Path: base, Content: sampleSheet()}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(base + ".svg"); err != nil {
		t.Errorf("expected %s.svg: %v", base, err)
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []SnapshotOptions{
		{Path: filepath.Join(dir, "a.svg")},
		{Path: filepath.Join(dir, "a.gif"), Format: "gif", Content: sampleSheet()},
		{Content: sampleSheet()},
	}
	for i, opts := range tests {
		if err := SaveSnapshot(opts); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestBuildLayout(t *testing.T) {
	l := buildLayout(SnapshotOptions{Content: sampleSheet()})
	if l.Key != "-" {
		t.Errorf("expected unset key marker, got %q", l.Key)
	}
	if len(l.Lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(l.Lines))
	}
	if l.Lines[1].Bucket != sheet.BucketChords || l.Lines[3].Bucket != sheet.BucketDefault {
		t.Errorf("unexpected buckets %v %v", l.Lines[1].Bucket, l.Lines[3].Bucket)
	}
	if l.Lines[1].Text != "C#   G#" {
		t.Errorf("layout should use reconciled text, got %q", l.Lines[1].Text)
	}
}
