package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
	"github.com/desertthunder/onlyhub/internal/tasks"
	"github.com/desertthunder/onlyhub/internal/ui"
	"github.com/urfave/cli/v3"
)

// Watch launches the live dashboard. With a backend, change events refresh the affected tab.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.open(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, r.catalog, r.online())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	stop, err := r.startListener(ctx, p)
	if err != nil {
		r.logger.Warn("live updates unavailable", "error", err)
		update := tasks.Update{Phase: tasks.Failed, Collection: "realtime", Err: err, At: time.Now()}
		go p.Send(ui.ActivityMsg(update))
	}
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// startListener connects the change feed and forwards snapshots and activity to p.
func (r *Runner) startListener(ctx context.Context, p *tea.Program) (func(), error) {
	if !r.online() {
		return func() {}, nil
	}

	rt, err := r.client.ConnectRealtime(ctx, services.RealtimeOpts{
		Heartbeat: r.config.Heartbeat(),
		Logger:    r.logger,
	})
	if err != nil {
		return func() {}, err
	}

	updates := make(chan tasks.Update, 16)
	listener := tasks.NewListener(tasks.ListenerOpts{
		Feed:             tasks.NewRealtimeFeed(rt),
		Banners:          r.catalog.Banners,
		Videos:           r.catalog.Videos,
		Notices:          r.catalog.Notices,
		RefreshPerSecond: r.config.Realtime.RefreshPerSecond,
		Updates:          updates,
		Logger:           r.logger,
	})

	done := make(chan struct{})
	go func() {
		for {
			select {
			case update := <-updates:
				p.Send(ui.ActivityMsg(update))
			case <-done:
				return
			}
		}
	}()

	unsubscribe := listener.Subscribe(ctx, tasks.Callbacks{
		OnBanners: func(items []models.Banner) { p.Send(ui.BannersMsg(items)) },
		OnVideos:  func(items []models.VideoCard) { p.Send(ui.VideosMsg(items)) },
		OnNotices: func(items []models.Notice) { p.Send(ui.NoticesMsg(items)) },
		OnPromos: func() {
			cards, err := r.catalog.Promos.All(ctx)
			if err != nil {
				r.logger.Warn("failed to reload promos", "error", err)
				return
			}
			p.Send(ui.PromosMsg(cards))
		},
	})

	return func() {
		unsubscribe()
		close(done)
		if err := rt.Close(); err != nil {
			r.logger.Debug("failed to close realtime connection", "error", err)
		}
	}, nil
}
