// Package app wires configuration, persistence, the task store and the notification
// scheduler together, and runs the flows that touch more than one of them
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/td0m/rememo/internal/config"
	"github.com/td0m/rememo/internal/logger"
	"github.com/td0m/rememo/pkg/notify"
	"github.com/td0m/rememo/pkg/persist"
	"github.com/td0m/rememo/pkg/task"
)

type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Store     *task.Store
	Platform  *notify.Local
	Scheduler *notify.Scheduler

	now     func() time.Time
	loc     *time.Location
	closers []io.Closer
}

type Option func(*App)

// WithClock replaces time.Now for the store, the platform and the flows
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithLogger overrides the logger chosen by the config
func WithLogger(l *logger.Logger) Option {
	return func(a *App) { a.Log = l }
}

// Open builds an App from cfg. Close releases the backend and the log file
func Open(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if a.Log == nil {
		if cfg.LogFile == "" {
			a.Log = logger.New(os.Stderr)
		} else {
			l, err := logger.Open(cfg.LogFile)
			if err != nil {
				return nil, err
			}
			a.Log = l
			a.closers = append(a.closers, l)
		}
	}

	kv, err := a.openKV()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.loc, _ = cfg.Location()
	a.Store = task.NewStore(kv,
		task.WithClock(a.now),
		task.WithLocation(a.loc),
		task.WithLogger(a.Log),
	)
	a.Platform = notify.NewLocal(kv,
		notify.LocalClock(a.Now),
		notify.PromptAnswer(notify.Permission(cfg.Notifications.PromptAnswer)),
	)

	n := cfg.Notifications
	schedOpts := []notify.Option{notify.WithLogger(a.Log)}
	if n.Channel.Enabled {
		schedOpts = append(schedOpts, notify.WithChannel(notify.Channel{
			ID:         n.Channel.ID,
			Name:       n.Channel.Name,
			Importance: notify.ImportanceMax,
			Vibration:  n.Channel.Vibration,
			LightColor: n.Channel.LightColor,
		}))
	}
	a.Scheduler = notify.Init(a.Platform, notify.Handler{
		ShowAlert: n.ShowAlert,
		PlaySound: n.PlaySound,
		SetBadge:  n.SetBadge,
	}, schedOpts...)
	return a, nil
}

func (a *App) openKV() (persist.KV, error) {
	switch a.Config.Backend {
	case config.BackendMemory:
		return persist.InMemory(), nil
	case config.BackendSQLite:
		db, err := persist.InSQLite(a.Config.SQLiteFile())
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		a.closers = append(a.closers, db)
		return db, nil
	default:
		dir, err := persist.InDir(a.Config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		return dir, nil
	}
}

// Now is the current time in the configured zone
func (a *App) Now() time.Time {
	return a.now().In(a.loc)
}

// Close releases resources in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Watch delivers due notifications every poll interval until ctx is done
func (a *App) Watch(ctx context.Context, deliver func(notify.Delivery)) error {
	return a.Platform.Run(ctx, a.Config.Notifications.PollInterval, deliver)
}
