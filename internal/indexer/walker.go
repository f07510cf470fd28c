package indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/scenedex/scenedex/pkg/types"
)

// DefaultMaxFileSize is the project walk's per-file size cap. Larger files
// are counted skipped without being read.
const DefaultMaxFileSize = 10 << 20

// Directory names never descended into during a project walk, beyond the
// hidden-directory rule. These hold generated or third-party trees that
// drown out project content.
var skipDirs = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"build":        true,
	"dist":         true,
}

// Suffixes excluded even when the extension is otherwise indexable.
// Engine-generated import metadata and editor temp files carry no
// searchable signal.
var skipSuffixes = []string{".import", ".tmp"}

// walkFile pairs a file's absolute path with its slash-separated
// project-relative path, the form used as its storage key.
type walkFile struct {
	abs string
	rel string
}

type walkResult struct {
	files   []walkFile
	total   int // regular files seen in walked directories
	skipped int // files seen but not eligible
}

// discoverFiles enumerates eligible files under root. The walk stays
// single-threaded; reading and indexing happen later in the worker pool.
func discoverFiles(root string, maxSize int64) (*walkResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	res := &walkResult{}
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil {
				return err
			}
			// Unreadable directory: its children are never enumerated.
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if p != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		res.total++
		if !eligible(p) {
			res.skipped++
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			res.skipped++
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = d.Name()
		}
		res.files = append(res.files, walkFile{abs: p, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// eligible reports whether a path is worth indexing at all: visible, an
// indexable text extension, and not a generated suffix.
func eligible(p string) bool {
	if strings.HasPrefix(filepath.Base(p), ".") {
		return false
	}
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(p, suffix) {
			return false
		}
	}
	return types.IndexableExtension(p)
}

// readFileText reads a file and reports whether its content is indexable
// text. Unreadable and binary files are skipped by callers, never failed.
func readFileText(p string) (string, bool) {
	data, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	if isBinary(data) {
		return "", false
	}
	return string(data), true
}

// isBinary sniffs for a NUL byte in the leading window or content that is
// not valid UTF-8.
func isBinary(data []byte) bool {
	window := data
	if len(window) > 8000 {
		window = window[:8000]
	}
	for _, b := range window {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(data)
}
