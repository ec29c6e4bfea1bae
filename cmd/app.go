package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/config"
	"github.com/Abcdabansu666/TimeSheet/internal/remote"
	"github.com/Abcdabansu666/TimeSheet/internal/session"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
	"github.com/Abcdabansu666/TimeSheet/internal/syncer"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

// flushTimeout bounds how long a command waits for queued writes on exit.
const flushTimeout = 30 * time.Second

// app is the runtime every command works against: the loaded tracker, the
// write queue draining into the configured backend, and that backend.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	backend storage.Backend
	queue   *syncer.Queue
	tracker *tracker.Tracker
	initial storage.Snapshot

	stop context.CancelFunc
	done chan struct{}
}

// newLogger returns a stderr logger when --verbose is set and a discarding
// one otherwise.
func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "timesheet: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// openApp loads config and data and starts the write queue. The caller must
// call close.
func openApp(ctx context.Context, logger *log.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zone, err := timecalc.NewZone(cfg.Timezone, time.Now)
	if err != nil {
		return nil, err
	}
	policy, err := session.ParsePolicy(cfg.Sessions.DoubleClockIn)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	snap, err := backend.Load(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading data: %w", err)
	}

	queue := syncer.NewQueue(backend, syncer.Options{
		MaxAttempts: cfg.Sync.MaxAttempts,
		Backoff:     cfg.Backoff(),
		Logger:      logger,
	})
	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		queue.Run(runCtx)
		close(done)
	}()

	tr := tracker.New(tracker.Options{
		Zone:      zone,
		Policy:    policy,
		Persister: queue,
		Logger:    logger,
	}, snap.Entries, snap.Settings)

	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		queue:   queue,
		tracker: tr,
		initial: snap,
		stop:    stop,
		done:    done,
	}, nil
}

func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, error) {
	if cfg.Storage.Backend != "remote" {
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return storage.Open(cfg.Storage.Backend, path, cfg.Storage.DSN)
	}

	if cfg.Remote.BaseURL == "" {
		return nil, errors.New("storage backend is remote but [remote] base_url is not set")
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	ts, err := remote.TokenSource(ctx, remote.AuthConfig{
		ClientID:      cfg.Remote.ClientID,
		ClientSecret:  cfg.Remote.ClientSecret,
		TokenURL:      cfg.Remote.TokenURL,
		DeviceAuthURL: cfg.Remote.DeviceAuthURL,
		Scopes:        cfg.Remote.Scopes,
		TokenFile:     filepath.Join(dir, "auth", "tokens.json"),
	}, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	client, err := remote.NewClient(ctx, cfg.Remote.BaseURL, ts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// close waits for queued writes, stops the worker and closes the backend.
// Writes that could not be saved are reported on stderr.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := a.queue.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if st := a.queue.Status(); st.Unsynced > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d change(s) could not be saved. Last error: %s\n", st.Unsynced, st.LastError)
	}
	a.stop()
	<-a.done
	if err := a.backend.Close(); err != nil {
		a.logger.Printf("closing backend: %v", err)
	}
}

// follow pulls changes made elsewhere into the tracker until the returned
// function is called. Polls are skipped while local writes are pending.
func (a *app) follow(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		syncer.Watch(ctx, a.backend, a.tracker, syncer.WatchOptions{
			Interval: a.cfg.PollInterval(),
			Logger:   a.logger,
			Initial:  &a.initial,
			Skip:     a.queue.Busy,
		})
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx, newLogger())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
