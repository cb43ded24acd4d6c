// Package parser turns raw song-sheet text into structured sheet content.
//
// Lines are categorised as section headers ("[Verse]"), chord lines (every
// token is a chord), lyric lines or empty lines. Runs of empty lines are
// collapsed and chord lines are split into chord and text runs.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/vanderheijden86/leadsheet/pkg/chord"
	"github.com/vanderheijden86/leadsheet/pkg/metrics"
	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

var punctuation = regexp.MustCompile(`^[[:punct:]]+$`)

// separators split tokens on chord lines in addition to whitespace.
const separators = "|()[]{},"

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(separators, r)
}

// Parse parses song-sheet text. It never fails on well-formed UTF-8 text; an
// input with no non-blank lines yields empty content.
func Parse(text string) sheet.Content {
	defer metrics.Timer(metrics.Parse)()

	lines := lo.Map(strings.Split(text, "\n"), func(s string, _ int) sheet.Line {
		trimmed := strings.TrimRight(s, " \t\r\n")
		return sheet.Line{Text: trimmed, Kind: Categorize(trimmed)}
	})

	lines = compact(lines)

	for i := range lines {
		lines[i].LineNumber = i
		if lines[i].IsChords() {
			lines[i].Runs = SplitRuns(lines[i].Text)
		}
	}
	return sheet.Content{Lines: lines}
}

// Categorize returns the kind of a single (right-trimmed) line.
func Categorize(line string) sheet.LineKind {
	first := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsSpace(r) })
	if first < 0 {
		return sheet.KindEmpty
	}
	if line[first] == '[' {
		return sheet.KindSection
	}

	tokens := lo.Filter(tokenize(line), func(s string, _ int) bool {
		return !punctuation.MatchString(s)
	})
	if lo.EveryBy(tokens, chord.IsChord) {
		return sheet.KindChords
	}
	return sheet.KindLyrics
}

func tokenize(line string) []string {
	return strings.FieldsFunc(line, isSeparator)
}

// compact drops leading and trailing empty lines and collapses consecutive
// empty lines into one.
func compact(lines []sheet.Line) []sheet.Line {
	lastWasEmpty := true
	out := lo.Filter(lines, func(l sheet.Line, _ int) bool {
		empty := l.Kind == sheet.KindEmpty
		if empty && lastWasEmpty {
			return false
		}
		lastWasEmpty = empty
		return true
	})
	if n := len(out); n > 0 && out[n-1].Kind == sheet.KindEmpty {
		out = out[:n-1]
	}
	if out == nil {
		out = []sheet.Line{}
	}
	return out
}

// SplitRuns splits a chord line into runs. Chord tokens become ChordRun runs
// carrying their canonical symbol; all other characters are merged into Text
// runs. Concatenating the runs' letters reproduces line exactly.
func SplitRuns(line string) []sheet.LetterRun {
	runs := []sheet.LetterRun{}
	var text strings.Builder

	flushText := func() {
		if text.Len() == 0 {
			return
		}
		runs = append(runs, sheet.LetterRun{Kind: sheet.RunText, OriginalLetters: text.String()})
		text.Reset()
	}

	rest := line
	for rest != "" {
		start := strings.IndexFunc(rest, func(r rune) bool { return !isSeparator(r) })
		if start < 0 {
			text.WriteString(rest)
			break
		}
		text.WriteString(rest[:start])
		rest = rest[start:]

		end := strings.IndexFunc(rest, isSeparator)
		if end < 0 {
			end = len(rest)
		}
		token := rest[:end]
		rest = rest[end:]

		if chord.IsChord(token) {
			flushText()
			runs = append(runs, sheet.LetterRun{
				Kind:            sheet.RunChord,
				OriginalLetters: token,
				ChordSymbol:     chord.Canonical(token),
			})
			continue
		}
		text.WriteString(token)
	}
	flushText()
	return runs
}
