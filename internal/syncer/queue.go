// Package syncer moves state changes to a storage backend in the background
// and pulls remote changes back.
package syncer

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/storage"
)

// maxRetryWait caps the wait between two attempts of one write.
const maxRetryWait = 5 * time.Minute

type opKind int

const (
	opUpsert opKind = iota
	opDelete
	opSettings
)

func (k opKind) String() string {
	switch k {
	case opUpsert:
		return "upsert entry"
	case opDelete:
		return "delete entry"
	default:
		return "save settings"
	}
}

// op is one pending write.
type op struct {
	kind     opKind
	entry    model.TimeEntry
	id       string
	settings model.Settings
}

func (o op) String() string {
	switch o.kind {
	case opUpsert:
		return fmt.Sprintf("%s %s", o.kind, o.entry.ID)
	case opDelete:
		return fmt.Sprintf("%s %s", o.kind, o.id)
	default:
		return o.kind.String()
	}
}

// Options configures a Queue.
type Options struct {
	// MaxAttempts is the number of tries per write, including the first.
	MaxAttempts int

	// Backoff is the wait after the first failure; it doubles per retry.
	Backoff time.Duration

	Logger *log.Logger
}

// Status is a snapshot of the queue counters.
type Status struct {
	Pending   int    `json:"pending"`
	Synced    int    `json:"synced"`
	Unsynced  int    `json:"unsynced"`
	LastError string `json:"last_error,omitempty"`
}

// Queue is an ordered list of pending writes drained by one worker. It
// implements tracker.Persister: enqueueing never blocks and never fails.
type Queue struct {
	backend     storage.Backend
	maxAttempts int
	backoff     time.Duration
	logger      *log.Logger

	mu       sync.Mutex
	pending  []op
	inFlight bool
	synced   int
	unsynced int
	lastErr  string
	wake     chan struct{}
}

// NewQueue returns a queue writing to backend. Call Run to start draining.
func NewQueue(backend storage.Backend, opts Options) *Queue {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Queue{
		backend:     backend,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
		wake:        make(chan struct{}, 1),
	}
}

// UpsertEntry queues an entry write.
func (q *Queue) UpsertEntry(e model.TimeEntry) { q.push(op{kind: opUpsert, entry: e}) }

// DeleteEntry queues an entry delete.
func (q *Queue) DeleteEntry(id string) { q.push(op{kind: opDelete, id: id}) }

// SaveSettings queues a settings write.
func (q *Queue) SaveSettings(s model.Settings) { q.push(op{kind: opSettings, settings: s}) }

func (q *Queue) push(o op) {
	q.mu.Lock()
	q.pending = append(q.pending, o)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Status returns the current counters.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if q.inFlight {
		n++
	}
	return Status{Pending: n, Synced: q.synced, Unsynced: q.unsynced, LastError: q.lastErr}
}

// Busy reports whether writes are queued or in flight.
func (q *Queue) Busy() bool { return q.Status().Pending > 0 }

// Run drains the queue in order until ctx is cancelled. Writes still queued
// at that point stay queued.
func (q *Queue) Run(ctx context.Context) {
	for {
		o, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		q.apply(ctx, o)
		q.mu.Lock()
		q.inFlight = false
		q.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
	}
}

func (q *Queue) next() (op, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return op{}, false
	}
	o := q.pending[0]
	q.pending = q.pending[1:]
	q.inFlight = true
	return o, true
}

// apply runs o with retries. A write that exhausts its attempts is logged,
// counted as unsynced and dropped.
func (q *Queue) apply(ctx context.Context, o op) {
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return q.exec(ctx, o)
	}, q.newBackOff(ctx), func(err error, wait time.Duration) {
		q.logger.Printf("sync: %s failed (attempt %d/%d), retrying in %s: %v", o, attempt, q.maxAttempts, wait, err)
	})
	if err == nil {
		q.mu.Lock()
		q.synced++
		q.mu.Unlock()
		return
	}

	q.logger.Printf("sync: persistence error, giving up on %s: %v", o, err)
	q.mu.Lock()
	q.unsynced++
	q.lastErr = fmt.Sprintf("%s: %v", o, err)
	q.mu.Unlock()
}

// newBackOff waits q.backoff after the first failure and doubles the wait
// after each further one, for at most maxAttempts tries in total.
func (q *Queue) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.backoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = maxRetryWait
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(q.maxAttempts-1)), ctx)
}

func (q *Queue) exec(ctx context.Context, o op) error {
	switch o.kind {
	case opUpsert:
		return q.backend.UpsertEntry(ctx, o.entry)
	case opDelete:
		return q.backend.DeleteEntry(ctx, o.id)
	default:
		return q.backend.SaveSettings(ctx, o.settings)
	}
}

// Flush waits until every queued write has been attempted or ctx is done.
// Run must be active for Flush to make progress.
func (q *Queue) Flush(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for q.Busy() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("flush: %d write(s) still pending: %w", q.Status().Pending, ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}
