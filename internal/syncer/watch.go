package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"io"
	"log"
	"sort"
	"time"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
)

// Handler receives full replacements of the two collections.
type Handler interface {
	ApplyEntries(entries []model.TimeEntry)
	ApplySettings(s model.Settings)
}

// WatchOptions configures Watch.
type WatchOptions struct {
	Interval time.Duration
	Logger   *log.Logger

	// Initial is the snapshot the handler already holds. Only changes
	// relative to it are pushed.
	Initial *storage.Snapshot

	// Skip, when set and true, postpones a poll. The queue's Busy is used so
	// a stale remote copy never overwrites local writes still in flight.
	Skip func() bool
}

// Watch polls backend.Load every Interval and pushes entries and settings
// to h whenever their content changed since the last push. Load failures
// are logged and polling continues. Watch returns when ctx is done.
func Watch(ctx context.Context, backend storage.Backend, h Handler, opts WatchOptions) {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	var lastEntries, lastSettings [sha256.Size]byte
	if opts.Initial != nil {
		lastEntries = entriesFingerprint(opts.Initial.Entries)
		lastSettings = settingsFingerprint(opts.Initial.Settings)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if opts.Skip != nil && opts.Skip() {
			continue
		}

		snap, err := backend.Load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				opts.Logger.Printf("watch: load failed: %v", err)
			}
			continue
		}
		if fp := entriesFingerprint(snap.Entries); fp != lastEntries {
			lastEntries = fp
			h.ApplyEntries(snap.Entries)
			opts.Logger.Printf("watch: applied %d entries", len(snap.Entries))
		}
		if fp := settingsFingerprint(snap.Settings); fp != lastSettings {
			lastSettings = fp
			h.ApplySettings(snap.Settings)
			opts.Logger.Printf("watch: applied settings")
		}
	}
}

// entriesFingerprint hashes entries independent of their order.
func entriesFingerprint(entries []model.TimeEntry) [sha256.Size]byte {
	sorted := append([]model.TimeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	data, _ := json.Marshal(sorted)
	return sha256.Sum256(data)
}

// settingsFingerprint ignores UpdatedAt so a rewrite of identical content
// is not pushed again.
func settingsFingerprint(s model.Settings) [sha256.Size]byte {
	s.UpdatedAt = 0
	s.People = model.SortedNames(s.People)
	s.Jobs = model.SortedNames(s.Jobs)
	data, _ := json.Marshal(s)
	return sha256.Sum256(data)
}
