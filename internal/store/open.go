package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Drivers accepted by Open.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string // sqlite
	MongoURI      string
	MongoDatabase string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if dir := filepath.Dir(opts.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		return NewSQLiteStore(opts.Path)
	case DriverMongoDB:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
