package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/twx/internal/models"
	"github.com/desertthunder/twx/internal/server"
	"github.com/desertthunder/twx/internal/shared"
	"github.com/desertthunder/twx/internal/ui"
)

const tuiLogPath = "./tmp/twx-tui.log"

// useFileLogger redirects logs to a file so they do not interfere with TUI rendering.
func (r *Runner) useFileLogger() error {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	return nil
}

// loginTUI shows the waiting screen until the server reports, the user quits or ctx ends.
func (r *Runner) loginTUI(ctx context.Context, authURL string, cb *server.Server, results <-chan server.Result) (server.Result, error) {
	if err := r.useFileLogger(); err != nil {
		return server.Result{}, err
	}

	model := ui.NewLoginModel(authURL, cb.RedirectURL(), results, cb.Stop)
	p := tea.NewProgram(model)

	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-cb.Done():
		}
	}()

	if _, err := p.Run(); err != nil {
		return server.Result{}, fmt.Errorf("error running TUI: %w", err)
	}

	switch {
	case model.Result().IsSet():
		return model.Result(), nil
	case model.Cancelled():
		return server.Result{}, shared.ErrAuthCancelled
	case ctx.Err() != nil:
		return server.Result{}, ctx.Err()
	default:
		return server.Result{}, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
}

// videosTUI browses videos interactively.
func (r *Runner) videosTUI(title string, videos []models.Video) error {
	if err := r.useFileLogger(); err != nil {
		return err
	}

	if _, err := tea.NewProgram(ui.NewVideosModel(title, videos), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
