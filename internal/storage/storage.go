// Package storage publishes a finished session's output tree to a
// destination: another directory on disk or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage stores objects under slash-separated keys.
type Storage interface {
	// Put stores the contents of r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader) error

	// Location returns where key is stored, as a path or URL.
	Location(key string) string
}

// Config selects and configures a backend
type Config struct {
	Backend string `yaml:"backend" env:"BACKEND, overwrite" validate:"omitempty,oneof=local s3"`
	Dir     string `yaml:"dir" env:"DIR, overwrite" validate:"required_if=Backend local"`
	Prefix  string `yaml:"prefix" env:"PREFIX, overwrite"`

	S3 S3Config `yaml:"s3" env:", prefix=S3_"`
}

// Enabled reports whether a publish destination is configured
func (c Config) Enabled() bool {
	return c.Backend != ""
}

// New builds the backend named by cfg.Backend
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStorage(cfg.Dir)
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Publish uploads every regular file under dir to store, keyed by its
// slash-separated path relative to dir under prefix. It returns the keys
// in walk order.
func Publish(ctx context.Context, store Storage, dir, prefix string, progress func(done, total int)) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	keys := make([]string, 0, len(files))
	for i, p := range files {
		if err := ctx.Err(); err != nil {
			return keys, fmt.Errorf("context cancelled: %w", err)
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return keys, err
		}
		key := path.Join(prefix, filepath.ToSlash(rel))
		if err := putFile(ctx, store, key, p); err != nil {
			return keys, err
		}
		keys = append(keys, key)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return keys, nil
}

func putFile(ctx context.Context, store Storage, key, p string) error {
	f, err := os.Open(p) // #nosec G304 - walked from the output directory
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	if err := store.Put(ctx, key, f); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}
