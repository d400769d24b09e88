// Package watch turns file system notifications under a stories root into
// debounced reload batches.
package watch

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
	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/fsutil"
)

// DefaultDebounce collapses the burst of events editors produce per save.
const DefaultDebounce = 50 * time.Millisecond

// Batch is the set of story files touched during one debounce window.
type Batch struct {
	Changed []string
	Removed []string
}

// Empty reports whether the batch carries nothing.
func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Removed) == 0
}

// Watcher watches a stories root recursively.
type Watcher struct {
	root     string
	suffix   string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	// known holds the story files seen so far. Only the Run goroutine
	// touches it once Run starts.
	known map[string]struct{}
}

// New creates a watcher for files ending in suffix under root. root may be a
// single file, in which case its directory is watched.
func New(root, suffix string, debounce time.Duration) (*Watcher, error) {
	if suffix == "" {
		return nil, errors.New("watch: suffix must not be empty")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{root: root, suffix: suffix, debounce: debounce, watcher: fw, known: make(map[string]struct{})}

	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}
	if err := w.addRecursive(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers batches to onChange until ctx is cancelled. onChange runs on
// the Run goroutine, so batches never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, b Batch)) error {
	logger := ctxlog.FromContext(ctx).With("component", "watch", "root", w.root)
	defer w.watcher.Close()

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	changed := make(map[string]struct{})
	removed := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(ctx, event, changed, removed) {
				debounceTimer.Reset(w.debounce)
			}

		case <-debounceTimer.C:
			b := Batch{Changed: sortedKeys(changed), Removed: sortedKeys(removed)}
			changed = make(map[string]struct{})
			removed = make(map[string]struct{})
			if b.Empty() {
				continue
			}
			logger.Debug("Story files changed.", "changed", b.Changed, "removed", b.Removed)
			onChange(ctx, b)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

// Close releases the watcher without running it. Run closes it on return.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handle records event and reports whether it is relevant.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, changed, removed map[string]struct{}) bool {
	if fsutil.IsSkippedPath(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				ctxlog.FromContext(ctx).Warn("Failed to watch new directory.", "dir", event.Name, "error", err)
			}
			// Files created together with the directory produce no events.
			files, _ := fsutil.FindFilesBySuffix(event.Name, w.suffix)
			for _, f := range files {
				delete(removed, f)
				changed[f] = struct{}{}
				w.known[f] = struct{}{}
			}
			return len(files) > 0
		}
	}

	if !strings.HasSuffix(event.Name, w.suffix) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			return w.removeUnder(event.Name, changed, removed)
		}
		return false
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(changed, event.Name)
		delete(w.known, event.Name)
		removed[event.Name] = struct{}{}
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		delete(removed, event.Name)
		changed[event.Name] = struct{}{}
		w.known[event.Name] = struct{}{}
	default:
		return false
	}
	return true
}

// removeUnder marks every known story file below dir as removed. A directory
// that is deleted or moved away does not always report its files one by one.
func (w *Watcher) removeUnder(dir string, changed, removed map[string]struct{}) bool {
	prefix := dir + string(filepath.Separator)
	found := false
	for f := range w.known {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		delete(w.known, f)
		delete(changed, f)
		removed[f] = struct{}{}
		found = true
	}
	return found
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if strings.HasSuffix(path, w.suffix) && !fsutil.IsSkippedPath(d.Name()) {
				w.known[path] = struct{}{}
			}
			return nil
		}
		if path != root && fsutil.IsSkippedPath(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
