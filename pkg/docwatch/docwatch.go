// Package docwatch uploads files dropped into a directory to the documents
// corpus, optionally indexing them right away.
package docwatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
)

const defaultSettle = 500 * time.Millisecond

// Uploader is the part of the backend client the watcher uses.
type Uploader interface {
	UploadDocuments(ctx context.Context, paths []string) (*backend.UploadResult, error)
	LoadDocuments(ctx context.Context, collection string, force bool) (*backend.LoadResult, error)
}

// Batch reports one upload.
type Batch struct {
	Paths    []string
	Uploaded *backend.UploadResult

	// Loaded is nil unless the watcher indexes after uploading.
	Loaded *backend.LoadResult
	Err    error
}

type Config struct {
	Dir      string
	Uploader Uploader

	// Load indexes Collection after every upload.
	Load       bool
	Collection string

	// Settle is how long a file must stay unchanged before it is uploaded.
	Settle time.Duration

	// OnBatch is called after every upload attempt. Optional.
	OnBatch func(Batch)

	Logger *zap.Logger
}

// Watch blocks until ctx is done or the watcher fails. Files created or
// written in Dir are collected until no change arrived for Settle, then
// uploaded together. Hidden files and directories are ignored.
func Watch(ctx context.Context, c *Config) error {
	if c.Uploader == nil {
		return errors.New("uploader is required")
	}
	settle := c.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", c.Dir, err)
	}
	logger.Debug("watching for documents", zap.String("dir", c.Dir))

	pending := map[string]bool{}
	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || ignored(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-timer.C:
			paths := regularFiles(pending)
			pending = map[string]bool{}
			if len(paths) == 0 {
				continue
			}
			batch := upload(ctx, c, paths)
			if batch.Err != nil {
				logger.Warn("uploading documents failed", zap.Strings("paths", paths), zap.Error(batch.Err))
			}
			if c.OnBatch != nil {
				c.OnBatch(batch)
			}
		}
	}
}

func upload(ctx context.Context, c *Config, paths []string) Batch {
	batch := Batch{Paths: paths}

	batch.Uploaded, batch.Err = c.Uploader.UploadDocuments(ctx, paths)
	if batch.Err != nil || !c.Load {
		return batch
	}

	batch.Loaded, batch.Err = c.Uploader.LoadDocuments(ctx, c.Collection, false)
	return batch
}

func ignored(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// regularFiles returns the sorted paths of pending that still exist as
// regular files.
func regularFiles(pending map[string]bool) []string {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
