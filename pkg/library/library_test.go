package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

func openTemp(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "state", "library.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestRecent_NewestFirst(t *testing.T) {
	lib := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, p := range []string{"/songs/a.txt", "/songs/b.txt", "/songs/c.txt"} {
		if err := lib.RecordOpen(p, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("RecordOpen: %v", err)
		}
	}
	if err := lib.RecordOpen("/songs/a.txt", base.Add(time.Hour)); err != nil {
		t.Fatalf("RecordOpen: %v", err)
	}

	entries, err := lib.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Path != "/songs/a.txt" || entries[0].Opens != 2 {
		t.Errorf("expected a.txt opened twice first, got %+v", entries[0])
	}
	if entries[1].Path != "/songs/c.txt" {
		t.Errorf("expected c.txt second, got %s", entries[1].Path)
	}
	if !entries[0].OpenedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("opened_at = %v", entries[0].OpenedAt)
	}

	limited, err := lib.Recent(1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Recent(1) = %v, %v", limited, err)
	}
}

func TestParseCache(t *testing.T) {
	lib := openTemp(t)
	mod := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	content := sheet.Content{Lines: []sheet.Line{
		{LineNumber: 0, Kind: sheet.KindSection, Text: "[Verse]"},
		{LineNumber: 1, Kind: sheet.KindChords, Text: "G  C", Runs: []sheet.LetterRun{
			{Kind: sheet.RunChord, OriginalLetters: "G", ChordSymbol: "G"},
			{Kind: sheet.RunText, OriginalLetters: "  "},
			{Kind: sheet.RunChord, OriginalLetters: "C", ChordSymbol: "C"},
		}},
	}}

	if _, ok, err := lib.Cached("/s.txt", 10, mod); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}
	if err := lib.Store("/s.txt", 10, mod, content); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := lib.Cached("/s.txt", 10, mod)
	if err != nil || !ok {
		t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
	}
	if got.Len() != 2 || got.Lines[1].Runs[2].OriginalLetters != "C" {
		t.Errorf("unexpected cached content %+v", got)
	}

	if _, ok, _ := lib.Cached("/s.txt", 11, mod); ok {
		t.Error("expected miss when size changes")
	}
	if _, ok, _ := lib.Cached("/s.txt", 10, mod.Add(time.Second)); ok {
		t.Error("expected miss when mtime changes")
	}
}

func TestForget(t *testing.T) {
	lib := openTemp(t)
	now := time.Now()
	if err := lib.RecordOpen("/x.txt", now); err != nil {
		t.Fatal(err)
	}
	if err := lib.Store("/x.txt", 1, now, sheet.Empty()); err != nil {
		t.Fatal(err)
	}
	if err := lib.Forget("/x.txt"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	entries, _ := lib.Recent(10)
	if len(entries) != 0 {
		t.Errorf("expected no recents, got %v", entries)
	}
	if _, ok, _ := lib.Cached("/x.txt", 1, now); ok {
		t.Error("expected cache entry removed")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("expected error for empty path")
	}
}
