package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound = errors.New("key not found")
)

// KV is a string-keyed blob store
type KV interface {
	// Get returns ErrNotFound when nothing is stored under key
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes every key, missing keys are ignored
	Remove(ctx context.Context, keys ...string) error
}

var _ KV = &Dir{}

// Dir stores each key as its own json file inside a directory
type Dir struct {
	dir string
}

// InDir creates the directory if needed and returns a KV backed by it
func InDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Dir{dir}, nil
}

func (d Dir) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bs, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return bs, err
}

// Set writes to a temporary file first so a crash never leaves half a blob behind
func (d Dir) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(d.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0600); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, d.path(key))
}

func (d Dir) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, k := range keys {
		err := os.Remove(d.path(k))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// "@Effort_history" -> "<dir>/effort_history.json"
func (d Dir) path(key string) string {
	name := strings.ToLower(strings.TrimPrefix(key, "@"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return '_'
	}, name)
	return filepath.Join(d.dir, name+".json")
}
