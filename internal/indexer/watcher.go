package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/pkg/types"
)

// debounceInterval is how long the watcher waits after the last file event
// before running an indexing pass, collapsing editor save bursts.
const debounceInterval = 500 * time.Millisecond

// Sink is the indexing surface a watch pass drives. *Indexer satisfies it;
// callers that layer cache invalidation on top pass their wrapper instead.
type Sink interface {
	IndexBatch(ctx context.Context, tenant types.Tenant, files []types.FileInput, force bool) (*types.IndexStats, error)
	RemoveFile(ctx context.Context, tenant types.Tenant, path string) error
}

// Watcher re-indexes one tenant's project as files change under its root.
// Changed and created files are re-indexed, deleted files removed.
type Watcher struct {
	sink   Sink
	tenant types.Tenant
	root   string
	fsw    *fsnotify.Watcher
	log    *zap.SugaredLogger

	// pending maps absolute paths awaiting the next flush. It is only
	// touched from the Run goroutine.
	pending map[string]struct{}
}

// NewWatcher creates a watcher rooted at root. Every non-skipped directory
// in the tree is registered up front; directories created later are added
// as their events arrive.
func NewWatcher(sink Sink, tenant types.Tenant, root string, log *zap.SugaredLogger) (*Watcher, error) {
	if err := tenant.Validate(); err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		sink:    sink,
		tenant:  tenant,
		root:    absRoot,
		fsw:     fsw,
		log:     log,
		pending: make(map[string]struct{}),
	}
	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var flush <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				flush = time.After(debounceInterval)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watch error", "error", err)
		case <-flush:
			flush = nil
			w.flush(ctx)
		}
	}
}

// Close stops event delivery. A blocked Run returns after Close.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// addTree registers every watchable directory under dir.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != w.root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// handle routes one event into the pending set, reporting whether a flush
// should be scheduled.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	before := len(w.pending)

	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// The old path is gone either way. The flush decides between
		// removal and re-index by what is on disk at that point.
		if eligible(ev.Name) {
			w.pending[ev.Name] = struct{}{}
		}
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addNewTree(ev.Name)
		} else if eligible(ev.Name) {
			w.pending[ev.Name] = struct{}{}
		}
	}
	return len(w.pending) > before
}

// addNewTree watches a directory created after startup and queues any
// eligible files already inside it, which never produce their own events.
func (w *Watcher) addNewTree(dir string) {
	base := filepath.Base(dir)
	if strings.HasPrefix(base, ".") || skipDirs[base] {
		return
	}
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if p != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			if werr := w.fsw.Add(p); werr != nil {
				w.log.Warnw("watch add failed", "dir", p, "error", werr)
			}
			return nil
		}
		if eligible(p) {
			w.pending[p] = struct{}{}
		}
		return nil
	})
}

// flush runs one indexing pass over the pending set: paths still on disk
// are re-indexed through the sink, vanished paths are removed.
func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w.pending = make(map[string]struct{})

	var inputs []types.FileInput
	removed := 0
	for _, p := range paths {
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		info, err := os.Stat(p)
		if err != nil {
			if rerr := w.sink.RemoveFile(ctx, w.tenant, rel); rerr != nil {
				w.log.Warnw("watch removal failed", "file", rel, "error", rerr)
				continue
			}
			removed++
			continue
		}
		if info.IsDir() || info.Size() > DefaultMaxFileSize {
			continue
		}
		if content, ok := readFileText(p); ok {
			inputs = append(inputs, types.FileInput{Path: rel, Content: content})
		}
	}

	stats := &types.IndexStats{}
	if len(inputs) > 0 {
		var err error
		stats, err = w.sink.IndexBatch(ctx, w.tenant, inputs, false)
		if err != nil {
			w.log.Warnw("watch indexing failed", "tenant", w.tenant.Key(), "error", err)
			return
		}
	}
	if len(inputs) > 0 || removed > 0 {
		w.log.Infow("watch pass complete", "tenant", w.tenant.Key(),
			"indexed", stats.Indexed, "skipped", stats.Skipped,
			"failed", stats.Failed, "removed", removed)
	}
}
