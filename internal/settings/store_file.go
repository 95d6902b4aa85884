package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"gdpr-backend/internal/shared/telemetry"
)

// FileStore serves settings from a YAML file. Watch keeps the in-memory copy in
// sync with edits made to the file.
type FileStore struct {
	path     string
	writable bool

	mu  sync.RWMutex
	doc Document
}

// NewFileStore loads path. A missing file yields empty settings.
func NewFileStore(path string, writable bool) (*FileStore, error) {
	s := &FileStore{path: filepath.Clean(path), writable: writable}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the watched file path.
func (s *FileStore) Path() string {
	return s.path
}

// Reload re-reads the file. A missing file yields empty settings; on a decode
// error the previous settings are kept.
func (s *FileStore) Reload() error {
	_, err := s.load(false)
	return err
}

// load reads and decodes the file. With keepOnMissing a missing file leaves
// the current settings in place and load reports false.
func (s *FileStore) load(keepOnMissing bool) (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("read settings file: %w", err)
		}
		if keepOnMissing {
			return false, nil
		}
		s.mu.Lock()
		s.doc = Document{}
		s.mu.Unlock()
		return true, nil
	}
	doc, err := DecodeDocument(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return true, nil
}

// Watch reloads the file whenever it changes until ctx is canceled. The parent
// directory is watched so editors that replace the file are handled. While the
// file is missing the previous settings stay in effect.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch settings dir: %w", err)
	}
	telemetry.Info("settings.watch_started", map[string]any{"path": s.path})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("settings watcher closed")
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			loaded, err := s.load(true)
			if err != nil {
				telemetry.Warn("settings.reload_failed", map[string]any{"path": s.path, "error": err})
				continue
			}
			if !loaded {
				telemetry.Info("settings.file_missing", map[string]any{"path": s.path, "op": event.Op.String()})
				continue
			}
			telemetry.Info("settings.reloaded", map[string]any{"path": s.path, "op": event.Op.String()})
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("settings watcher closed")
			}
			telemetry.Warn("settings.watch_error", map[string]any{"path": s.path, "error": err})
		}
	}
}

func (s *FileStore) GetExportConfig(ctx context.Context) (ExportConfig, error) {
	if err := ctx.Err(); err != nil {
		return ExportConfig{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExportConfig(s.doc.Export), nil
}

func (s *FileStore) SaveExportConfig(ctx context.Context, cfg ExportConfig) error {
	return s.update(ctx, func(doc *Document) { doc.Export = cloneExportConfig(cfg) })
}

func (s *FileStore) GetLinkSettings(ctx context.Context) (LinkSettings, error) {
	if err := ctx.Err(); err != nil {
		return LinkSettings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Link, nil
}

func (s *FileStore) SaveLinkSettings(ctx context.Context, ls LinkSettings) error {
	return s.update(ctx, func(doc *Document) { doc.Link = ls })
}

func (s *FileStore) update(ctx context.Context, apply func(*Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.writable {
		return ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc
	apply(&next)

	var buf bytes.Buffer
	if err := EncodeDocument(&buf, next); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace settings file: %w", err)
	}
	s.doc = next
	return nil
}

var _ Store = (*FileStore)(nil)
