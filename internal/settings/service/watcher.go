package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"zkvault/internal/settings/models"
)

// FileWatcher applies a JSON settings file on start and whenever it changes.
// The file holds a models.Patch so operators can pin a single field.
type FileWatcher struct {
	path    string
	service *Service
	logger  *slog.Logger
}

func NewFileWatcher(path string, service *Service, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{path: path, service: service, logger: logger}
}

// Apply loads the file once.
func (w *FileWatcher) Apply(ctx context.Context) error {
	raw, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	var patch models.Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return fmt.Errorf("decode settings file: %w", err)
	}
	settings, err := w.service.Update(ctx, patch)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "settings file applied",
		"auto_approve", settings.AutoApprove,
		"expiry_days", settings.ExpiryDays,
	)
	return nil
}

// Run watches the file's directory, since editors often replace files by
// rename, and blocks until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch settings dir: %w", err)
	}
	if err := w.Apply(ctx); err != nil {
		w.logger.WarnContext(ctx, "settings file not applied", "error", err)
	}

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.Apply(ctx); err != nil {
				w.logger.WarnContext(ctx, "settings file not applied", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "settings watcher error", "error", err)
		}
	}
}
