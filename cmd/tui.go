package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinedex/internal/catalog"
	"github.com/desertthunder/cinedex/internal/notify"
	"github.com/desertthunder/cinedex/internal/shared"
	"github.com/desertthunder/cinedex/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLevel(config.Log.Level))
	r.SetLogger(fileLogger)

	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Session: r.session,
		Deps: catalog.Deps{
			Movies:   r.movies(),
			Images:   r.images,
			Notifier: notify.NewLogNotifier(fileLogger),
		},
		List:      catalog.ListOpts{PageSize: config.Catalog.PageSize, NotifyFetchErrors: config.Catalog.NotifyFetchErrors},
		StartPath: cmd.String("start"),
		Logger:    fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
