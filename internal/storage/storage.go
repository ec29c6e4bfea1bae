// Package storage persists time entries and the settings document.
//
// Every backend implements Backend. Writes are per entry or per settings
// document; there is no whole-collection rewrite.
package storage

import (
	"context"
	"fmt"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
)

// Snapshot is everything a backend holds.
type Snapshot struct {
	Entries  []model.TimeEntry
	Settings model.Settings
}

// Backend is the load/save contract shared by the file, SQL and remote
// stores.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	UpsertEntry(ctx context.Context, e model.TimeEntry) error
	DeleteEntry(ctx context.Context, id string) error
	// SaveSettings overwrites the known settings fields and keeps any other
	// field already stored.
	SaveSettings(ctx context.Context, s model.Settings) error
	Close() error
}

// Kinds of backend accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMySQL  = "mysql"
)

// Open returns a local backend. path is the data directory for KindFile and
// the database file for KindSQLite; dsn is used by KindMySQL.
func Open(kind, path, dsn string) (Backend, error) {
	switch kind {
	case "", KindFile:
		return NewFileBackend(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	case KindMySQL:
		return OpenMySQL(dsn)
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}
