package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/mention-me/AISlackBot/internal/pkg/logger"
)

// Manager holds the process-wide current model behind an explicit load/swap
// protocol: resolutions read a single reference which is atomically replaced
// on a successful retrain and never mutated in place. There is a bounded
// window where a resolution runs against a model older than the latest
// accepted record; that is accepted behaviour.
type Manager struct {
	current atomic.Pointer[Model]
	path    string
	logger  logger.ILogger
}

func NewManager(path string, log logger.ILogger) *Manager {
	return &Manager{
		path:   path,
		logger: log,
	}
}

// Current returns the model serving resolutions, or nil when untrained.
func (m *Manager) Current() *Model {
	return m.current.Load()
}

// Trained reports whether a model is available for resolution.
func (m *Manager) Trained() bool {
	return m.current.Load() != nil
}

// Swap atomically replaces the serving model.
func (m *Manager) Swap(model *Model) {
	m.current.Store(model)
}

// Path returns where the persisted model lives on disk.
func (m *Manager) Path() string {
	return m.path
}

// LoadFromDisk restores the persisted model at startup. A missing file is
// not an error, the bot simply starts untrained. A file that exists but
// cannot be loaded is: serving with a corrupted classifier is unsafe, so the
// caller should treat this as fatal.
func (m *Manager) LoadFromDisk() error {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.logger.Info("classifier", "No persisted classifier found, starting untrained", map[string]interface{}{
			"path": m.path,
		})
		return nil
	}

	model, err := Load(m.path)
	if err != nil {
		return fmt.Errorf("failed to load classifier from %s - corrupted file?: %w", m.path, err)
	}

	m.Swap(model)
	m.logger.Info("classifier", "Loaded persisted classifier", map[string]interface{}{
		"path": m.path,
	})
	return nil
}

// Watch reloads the model whenever the file on disk changes, so a separate
// trainer process can retrain out of band and the serving process picks the
// result up without a restart. Blocks until the context is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and atomic renames replace the file
	// inode, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != m.path || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			model, err := Load(m.path)
			if err != nil {
				m.logger.Error("classifier", "Failed to reload changed classifier", map[string]interface{}{
					"path":  m.path,
					"error": err.Error(),
				})
				continue
			}
			m.Swap(model)
			m.logger.Info("classifier", "Reloaded classifier after file change", map[string]interface{}{
				"path": m.path,
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Error("classifier", "Classifier watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
