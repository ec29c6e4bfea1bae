package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
)

const settingsFile = "settings.json"

// FileBackend stores one human-readable JSON file per day under
// <base>/YYYY/MM/DD.json and the settings document in <base>/settings.json.
type FileBackend struct {
	base string
	mu   sync.Mutex
}

// NewFileBackend returns a backend rooted at base. Directories are created
// on first write.
func NewFileBackend(base string) *FileBackend {
	return &FileBackend{base: base}
}

// Dir returns the data directory.
func (b *FileBackend) Dir() string { return b.base }

// dayFilePath returns the path for the given YYYY-MM-DD date.
func (b *FileBackend) dayFilePath(date string) (string, error) {
	t, err := timecalc.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("entry date %q: %w", date, err)
	}
	return filepath.Join(b.base, t.Format("2006"), t.Format("01"), t.Format("02")+".json"), nil
}

// loadDay loads a day file. A missing file is an empty day. A file that is
// not valid JSON is moved aside to <path>.corrupt and reported.
func loadDay(path, date string) (model.DayFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: date, Entries: []model.TimeEntry{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// writeAtomic writes data to a temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// saveDay writes df, or removes the file when df has no entries left.
func saveDay(path string, df model.DayFile) error {
	if len(df.Entries) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage error removing %s: %w", path, err)
		}
		return nil
	}
	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return writeAtomic(path, data)
}

// dayFiles lists every day file under base.
func (b *FileBackend) dayFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(b.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == b.base {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !isDayFile(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage error scanning %s: %w", b.base, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads every day file and the settings document.
func (b *FileBackend) Load(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	paths, err := b.dayFiles()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Entries: []model.TimeEntry{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		df, err := loadDay(path, "")
		if err != nil {
			return Snapshot{}, err
		}
		snap.Entries = append(snap.Entries, df.Entries...)
	}

	fields, err := b.readSettingsFields()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Settings = model.DecodeSettings(fields)
	return snap, nil
}

// findEntry returns the day file holding id, or "" when none does.
func (b *FileBackend) findEntry(id string) (string, model.DayFile, int, error) {
	paths, err := b.dayFiles()
	if err != nil {
		return "", model.DayFile{}, -1, err
	}
	for _, path := range paths {
		df, err := loadDay(path, "")
		if err != nil {
			return "", model.DayFile{}, -1, err
		}
		for i, e := range df.Entries {
			if e.ID == id {
				return path, df, i, nil
			}
		}
	}
	return "", model.DayFile{}, -1, nil
}

// UpsertEntry replaces or appends e in the file of its date. When an edit
// moved the entry to another date it is removed from the old file.
func (b *FileBackend) UpsertEntry(ctx context.Context, e model.TimeEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path, err := b.dayFilePath(e.Date)
	if err != nil {
		return err
	}
	oldPath, oldDay, idx, err := b.findEntry(e.ID)
	if err != nil {
		return err
	}
	if oldPath != "" && oldPath != path {
		oldDay.Entries = append(oldDay.Entries[:idx], oldDay.Entries[idx+1:]...)
		if err := saveDay(oldPath, oldDay); err != nil {
			return err
		}
	}

	df, err := loadDay(path, e.Date)
	if err != nil {
		return err
	}
	for i, existing := range df.Entries {
		if existing.ID == e.ID {
			df.Entries[i] = e
			return saveDay(path, df)
		}
	}
	df.Entries = append(df.Entries, e)
	return saveDay(path, df)
}

// DeleteEntry removes the entry with id. Unknown ids are not an error.
func (b *FileBackend) DeleteEntry(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path, df, idx, err := b.findEntry(id)
	if err != nil || path == "" {
		return err
	}
	df.Entries = append(df.Entries[:idx], df.Entries[idx+1:]...)
	return saveDay(path, df)
}

func (b *FileBackend) readSettingsFields() (map[string]json.RawMessage, error) {
	path := filepath.Join(b.base, settingsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// SaveSettings merges s over the stored settings document.
func (b *FileBackend) SaveSettings(ctx context.Context, s model.Settings) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fields, err := b.readSettingsFields()
	if err != nil {
		return err
	}
	update, err := s.Fields()
	if err != nil {
		return fmt.Errorf("storage error encoding settings: %w", err)
	}
	for k, v := range update {
		fields[k] = v
	}
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return writeAtomic(filepath.Join(b.base, settingsFile), data)
}

// Close is a no-op.
func (b *FileBackend) Close() error { return nil }

// isDayFile reports whether name looks like a DD.json day file.
func isDayFile(name string) bool {
	day := strings.TrimSuffix(name, ".json")
	return len(day) == 2 && day != name
}
