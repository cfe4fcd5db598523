// Package db provides a store.Backend persisted in SQLite through GORM.
package db

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	defaultDBPath = "./counter.db"
)

// KVEntry is one key/value pair. Keys are stored hex encoded.
type KVEntry struct {
	Key   string `gorm:"column:entry_key;primaryKey;size:255"`
	Value []byte `gorm:"column:entry_value;type:blob;not null"`
}

// TableName specifies the table name for KVEntry
func (KVEntry) TableName() string {
	return "kv_entries"
}

// Store implements store.Backend on SQLite
type Store struct {
	db *gorm.DB
}

func init() {
	store.Register(store.DBBackendType, NewBackend)
}

// NewBackend creates a Store from registry parameters. Recognized
// parameters: "db_path" (string).
func NewBackend(params map[string]any) (store.Backend, error) {
	dbPath := defaultDBPath
	if path, ok := params["db_path"].(string); ok && path != "" {
		dbPath = path
	}
	return Open(dbPath)
}

// Open opens or creates the SQLite database at path and migrates its schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps transactions serial.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Update implements store.Backend
func (s *Store) Update(ctx context.Context, fn func(core.Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&kv{db: tx})
	})
}

// View implements store.Backend
func (s *Store) View(ctx context.Context, fn func(core.Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(store.ReadOnly(&kv{db: tx}))
	})
}

// Close implements store.Backend
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// kv implements core.Storage on a gorm handle, usually a transaction
type kv struct {
	db *gorm.DB
}

func (k *kv) Get(ctx context.Context, key []byte) ([]byte, error) {
	var entry KVEntry
	err := k.db.WithContext(ctx).Where("entry_key = ?", hex.EncodeToString(key)).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return entry.Value, nil
}

func (k *kv) Set(ctx context.Context, key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := KVEntry{
		Key:   hex.EncodeToString(key),
		Value: value,
	}
	err := k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}
