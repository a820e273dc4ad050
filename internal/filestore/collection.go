// Package filestore keeps a homogeneous collection of records in a single
// JSON array file. Every read loads the whole file and every write replaces it.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
	indent   = "  "
)

type Options struct {
	// Name labels log lines and metrics, e.g. "products".
	Name    string
	Log     *zap.Logger
	Metrics *Metrics
}

type Collection[T any] struct {
	path    string
	name    string
	log     *zap.Logger
	metrics *Metrics
}

// New returns a collection backed by path, creating the file with an empty
// array when it does not exist yet.
func New[T any](path string, opts Options) (*Collection[T], error) {
	if path == "" {
		return nil, errors.New("filestore: empty path")
	}

	c := &Collection[T]{
		path:    path,
		name:    opts.Name,
		log:     opts.Log,
		metrics: opts.Metrics,
	}
	if c.name == "" {
		c.name = filepath.Base(path)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}

	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection[T]) Path() string { return c.path }

// EnsureInitialized writes an empty array to the backing file if it is
// absent. An existing file is left untouched, whatever it contains.
func (c *Collection[T]) EnsureInitialized() error {
	_, err := os.Stat(c.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filestore: stat %s: %w", c.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), dirPerm); err != nil {
		return fmt.Errorf("filestore: create dir for %s: %w", c.path, err)
	}
	if err := c.SaveAll(nil); err != nil {
		return err
	}

	c.log.Info("initialized empty collection", zap.String("collection", c.name), zap.String("path", c.path))
	return nil
}

// LoadAll returns every record in file order. Read and parse failures are
// logged and reported as an empty collection.
func (c *Collection[T]) LoadAll() []T {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		c.log.Warn("read collection failed, treating as empty",
			zap.String("collection", c.name), zap.String("path", c.path), zap.Error(err))
		c.metrics.loadFailed(c.name)
		return []T{}
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		c.log.Warn("parse collection failed, treating as empty",
			zap.String("collection", c.name), zap.String("path", c.path), zap.Error(err))
		c.metrics.loadFailed(c.name)
		return []T{}
	}
	if records == nil {
		records = []T{}
	}

	c.metrics.loaded(c.name, len(records))
	return records
}

// SaveAll replaces the file content with records, pretty-printed. The new
// content is written to a sibling temp file first and renamed into place.
func (c *Collection[T]) SaveAll(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		c.metrics.saveFailed(c.name)
		return fmt.Errorf("filestore: encode %s: %w", c.name, err)
	}

	if err := c.replace(data); err != nil {
		c.metrics.saveFailed(c.name)
		return fmt.Errorf("filestore: write %s: %w", c.path, err)
	}

	c.metrics.saved(c.name, len(records))
	return nil
}

func (c *Collection[T]) replace(data []byte) error {
	dir, base := filepath.Split(c.path)
	tmp := filepath.Join(dir, "."+base+".tmp-"+uuid.NewString())

	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Ping reports whether the backing file is reachable.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fi, err := os.Stat(c.path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("filestore: %s is a directory", c.path)
	}
	return nil
}
