package corpus

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/quaestor/internal/logger"
)

// debounceWindow coalesces bursts of filesystem events (editors write
// several events per save) into one rebuild.
const debounceWindow = 2 * time.Second

// Watcher triggers a callback when any markdown file in the corpus
// directory changes. The callback is expected to reload the corpus
// and rebuild the index wholesale; no partial updates exist.
type Watcher struct {
	dir      string
	onChange func()
	fsw      *fsnotify.Watcher
}

// NewWatcher creates a watcher on dir. onChange runs after the
// debounce window each time a markdown file is written, created,
// removed, or renamed.
func NewWatcher(dir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, onChange: onChange, fsw: fsw}, nil
}

// Run blocks processing events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return w.fsw.Close()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Corpus change: %s %s", event.Op, event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			logger.Info("Corpus changed, triggering rebuild")
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Corpus watcher error: %v", err)
		}
	}
}
