package storyfile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/fsutil"
	"github.com/specialistvlad/previewgo/internal/loadable"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Dir is a directory of story files. Each file is one module, identified by
// its slash-separated path relative to Root.
type Dir struct {
	Root   string
	Suffix string

	mu    sync.Mutex
	cache map[story.ModuleID]parsedFile
}

type parsedFile struct {
	revision string
	exports  story.Exports
}

var _ loadable.Loadable = (*Dir)(nil)

// NewDir returns a Dir over root. An empty suffix means DefaultSuffix.
func NewDir(root, suffix string) *Dir {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Dir{Root: root, Suffix: suffix, cache: make(map[story.ModuleID]parsedFile)}
}

// Observe reads every story file under Root. Unchanged files keep their
// previously parsed exports.
func (d *Dir) Observe(ctx context.Context) ([]loadable.Observation, error) {
	logger := ctxlog.FromContext(ctx)

	suffix := d.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	files, err := fsutil.FindFilesBySuffix(d.Root, suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to find story files in %s: %w", d.Root, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cache == nil {
		d.cache = make(map[story.ModuleID]parsedFile)
	}

	seen := make(map[story.ModuleID]struct{}, len(files))
	out := make([]loadable.Observation, 0, len(files))
	for _, path := range files {
		id := d.ModuleID(path)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, &loadable.LoadError{Module: id, Err: err}
		}
		sum := sha256.Sum256(src)
		rev := hex.EncodeToString(sum[:])

		cached, ok := d.cache[id]
		if !ok || cached.revision != rev {
			exports, err := Parse(src, path)
			if err != nil {
				return nil, &loadable.LoadError{Module: id, Err: err}
			}
			cached = parsedFile{revision: rev, exports: exports}
			d.cache[id] = cached
			logger.Debug("Parsed story file.", "module", id, "revision", rev[:12])
		}
		seen[id] = struct{}{}
		out = append(out, loadable.Observation{ID: id, Exports: cached.exports, Revision: rev})
	}

	for id := range d.cache {
		if _, ok := seen[id]; !ok {
			delete(d.cache, id)
		}
	}
	return out, nil
}

// ModuleID returns the id of the story file at path.
func (d *Dir) ModuleID(path string) story.ModuleID {
	rel, err := filepath.Rel(d.Root, path)
	if err != nil || rel == "." {
		rel = filepath.Base(path)
	}
	return story.ModuleID(filepath.ToSlash(rel))
}

// ImportFn resolves a module id by reading its file from disk.
func (d *Dir) ImportFn(_ context.Context, id story.ModuleID) (story.Exports, error) {
	path := filepath.Join(d.Root, filepath.FromSlash(string(id)))
	if info, err := os.Stat(d.Root); err == nil && !info.IsDir() {
		path = d.Root
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &loadable.LoadError{Module: id, Err: err}
	}
	return Parse(src, path)
}
