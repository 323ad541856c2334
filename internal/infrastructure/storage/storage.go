// Package storage provides the durable KeyValueStore backends used for the
// cart record: in-process memory, a directory of files, SQLite and Redis.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/taabalselect/storefront/internal/domain"
)

// Backend names accepted by Open
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

// Store is a KeyValueStore that holds resources
type Store interface {
	domain.KeyValueStore
	Close() error
}

// Options selects and configures a backend
type Options struct {
	Type     string
	Path     string // directory for file, database file for sqlite
	RedisURL string
	TTL      time.Duration // memory and redis only
}

// Open builds the backend named by opts.Type
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case TypeMemory, "":
		return NewMemoryStore(opts.TTL), nil
	case TypeFile:
		s, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case TypeSQLite:
		s, err := NewSQLiteStore(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case TypeRedis:
		s, err := NewRedisStoreFromURL(ctx, opts.RedisURL, opts.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", opts.Type)
	}
}
