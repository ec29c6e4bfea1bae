package storage

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// settingRow is one field of the settings document.
type settingRow struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"column:value;type:text"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (settingRow) TableName() string { return "settings" }

// SQLBackend stores entries in a time_entries table and the settings
// document as key/value rows.
type SQLBackend struct {
	db *gorm.DB
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the embedded migrations.
func OpenSQLite(path string) (*SQLBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating directories: %w", err)
	}
	gdb, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	b := &SQLBackend{db: gdb}
	if err := b.runMigrations(); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

// OpenMySQL connects to dsn and migrates the schema from the model.
func OpenMySQL(dsn string) (*SQLBackend, error) {
	if dsn == "" {
		return nil, errors.New("mysql backend needs a dsn")
	}
	gdb, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := gdb.AutoMigrate(&model.TimeEntry{}, &settingRow{}); err != nil {
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	return &SQLBackend{db: gdb}, nil
}

func (b *SQLBackend) runMigrations() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

// Load reads every entry and the settings rows.
func (b *SQLBackend) Load(ctx context.Context) (Snapshot, error) {
	var entries []model.TimeEntry
	if err := b.db.WithContext(ctx).Order("created_at desc").Find(&entries).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load entries: %w", err)
	}
	var rows []settingRow
	if err := b.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load settings: %w", err)
	}
	fields := make(map[string]json.RawMessage, len(rows))
	for _, r := range rows {
		fields[r.Key] = json.RawMessage(r.Value)
	}
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	return Snapshot{Entries: entries, Settings: model.DecodeSettings(fields)}, nil
}

// UpsertEntry inserts e or overwrites every column of the row with its ID.
func (b *SQLBackend) UpsertEntry(ctx context.Context, e model.TimeEntry) error {
	res := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&e)
	if res.Error != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, res.Error)
	}
	return nil
}

// DeleteEntry removes the row with id.
func (b *SQLBackend) DeleteEntry(ctx context.Context, id string) error {
	if err := b.db.WithContext(ctx).Delete(&model.TimeEntry{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// SaveSettings upserts one row per known field; other rows are kept.
func (b *SQLBackend) SaveSettings(ctx context.Context, s model.Settings) error {
	fields, err := s.Fields()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	now := time.Now().UnixMilli()
	rows := make([]settingRow, 0, len(fields))
	for k, v := range fields {
		rows = append(rows, settingRow{Key: k, Value: string(v), UpdatedAt: now})
	}
	res := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows)
	if res.Error != nil {
		return fmt.Errorf("save settings: %w", res.Error)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *SQLBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
