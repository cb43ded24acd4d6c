package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/leadsheet/pkg/debug"
	"github.com/vanderheijden86/leadsheet/pkg/engine"
	"github.com/vanderheijden86/leadsheet/pkg/store"
	"github.com/vanderheijden86/leadsheet/pkg/ui"
	"github.com/vanderheijden86/leadsheet/pkg/watcher"
)

func runTUI(parent context.Context, cc *commandContext, file string, watch bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := cc.engineOptions()
	if err != nil {
		return err
	}

	bridge := ui.NewPickerBridge()
	eng := engine.NewLocal(append(opts, engine.WithChooser(bridge))...)
	st := store.New(eng)

	var w *watcher.Watcher
	if watch && cfg.Files.Watch {
		w = watcher.New(watcher.WithOnError(func(err error) {
			debug.Log("watcher: %v", err)
		}))
		defer w.Stop()
	}
	cfg.Files.Watch = w != nil

	m := ui.NewModel(ctx, ui.Options{
		Store:       st,
		Bridge:      bridge,
		Watcher:     w,
		Config:      cfg,
		InitialFile: file,
	})
	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM; a second signal or a stuck
	// program gets killed.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Auto-quit for scripted smoke runs.
	if v := os.Getenv("LEADSHEET_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				select {
				case <-runDone:
				case <-time.After(time.Duration(ms) * time.Millisecond):
					p.Quit()
				}
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
