package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// PickerBridge lets the engine's blocking ChooseFile call be answered by the
// file picker running inside the Bubble Tea program. It satisfies
// engine.Chooser.
type PickerBridge struct {
	requests chan pickRequest
}

type pickRequest struct {
	dir   string
	reply chan string
}

// pickRequestMsg asks the model to show the file picker.
type pickRequestMsg struct {
	req pickRequest
}

// NewPickerBridge creates a bridge.
func NewPickerBridge() *PickerBridge {
	return &PickerBridge{requests: make(chan pickRequest)}
}

// Choose blocks until the user picks a file or cancels. A cancelled pick
// returns "".
func (b *PickerBridge) Choose(ctx context.Context, dir string) (string, error) {
	req := pickRequest{dir: dir, reply: make(chan string, 1)}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case path := <-req.reply:
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// WaitForPickRequestCmd waits for the next Choose call.
func WaitForPickRequestCmd(b *PickerBridge) tea.Cmd {
	return func() tea.Msg {
		if b == nil {
			return nil
		}
		return pickRequestMsg{req: <-b.requests}
	}
}
