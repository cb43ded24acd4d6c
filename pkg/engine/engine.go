// Package engine provides the content engine: the component that picks song
// files, parses them into sheet content, transposes chord runs and exports
// sheets to the clipboard.
//
// The state layer (package store) only sees the Engine interface.
package engine

import (
	"context"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// Engine is the content engine contract.
type Engine interface {
	// ChooseFile asks the user for a file. An empty path means the user
	// cancelled.
	ChooseFile(ctx context.Context) (string, error)
	// RetrieveFileContents parses the file at path.
	RetrieveFileContents(ctx context.Context, path string) (sheet.Content, error)
	// TransposeUpOneStep returns c with every chord run's transposed letters
	// raised one semitone. Already-transposed letters form the basis of the
	// step, so callers must pass the most recently reconciled content.
	TransposeUpOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error)
	// TransposeDownOneStep is TransposeUpOneStep in the other direction.
	TransposeDownOneStep(ctx context.Context, c sheet.Content) (sheet.Content, error)
	// ExportToClipboard writes the reconciled sheet to the system clipboard.
	ExportToClipboard(ctx context.Context, c sheet.Content) error
	// LogPrint records a diagnostic message. It never fails.
	LogPrint(msg string)
}

// Chooser picks a file starting from dir. It returns "" when the user
// cancels.
type Chooser interface {
	Choose(ctx context.Context, dir string) (string, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, dir string) (string, error)

// Choose calls f.
func (f ChooserFunc) Choose(ctx context.Context, dir string) (string, error) {
	return f(ctx, dir)
}
