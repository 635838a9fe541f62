// Package store implements the Persistent Store (spec.md §4.1): a
// directory tree rooted at store-root, one subdirectory per feed label,
// holding meta.json, cache.json, cache.xml and the extractor's scratch
// files (args.json, stdout.txt, stderr.txt).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/siriusmart/scrapyard/pkg/domain"
)

// Store is the root of the persistent state tree.
type Store struct {
	root string
}

// New returns a Store rooted at root.
func New(root string) *Store {
	return &Store{root: root}
}

// Dir returns the directory holding label's state.
func (s *Store) Dir(label string) string {
	return filepath.Join(s.root, label)
}

func (s *Store) path(label, name string) string {
	return filepath.Join(s.Dir(label), name)
}

// ArgsPath, StdoutPath and StderrPath locate the extractor's scratch files.
func (s *Store) ArgsPath(label string) string   { return s.path(label, "args.json") }
func (s *Store) StdoutPath(label string) string { return s.path(label, "stdout.txt") }
func (s *Store) StderrPath(label string) string { return s.path(label, "stderr.txt") }

// EnsureDir creates label's directory if it doesn't already exist.
func (s *Store) EnsureDir(label string) error {
	if err := os.MkdirAll(s.Dir(label), 0o755); err != nil {
		return fmt.Errorf("create feed dir %s: %w", label, err)
	}
	return nil
}

// writeFile truncates and rewrites the whole file — spec.md §4.1 calls for
// no atomic rename here, readers tolerate a transiently missing file.
func (s *Store) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // best effort, write error already captured below
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadMeta loads meta.json, substituting a freshly-initialized default if
// the file is missing.
func (s *Store) LoadMeta(label string) (domain.FetchedMeta, error) {
	path := s.path(label, "meta.json")
	data, err := os.ReadFile(path) //nolint:gosec // path built from operator-controlled store root + label
	if os.IsNotExist(err) {
		return domain.NewFetchedMeta(), nil
	}
	if err != nil {
		return domain.FetchedMeta{}, fmt.Errorf("read meta for %s: %w", label, err)
	}
	var meta domain.FetchedMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.FetchedMeta{}, fmt.Errorf("parse meta for %s: %w", label, err)
	}
	return meta, nil
}

// SaveMeta persists meta.json.
func (s *Store) SaveMeta(label string, meta domain.FetchedMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta for %s: %w", label, err)
	}
	return s.writeFile(s.path(label, "meta.json"), data)
}

// LoadCache loads cache.json. On deserialize failure it does not delete
// the file: it renames it to cache-<RFC-3339 timestamp>.json for forensic
// purposes and returns an empty cache so the feed keeps producing output
// (spec.md §4.1).
func (s *Store) LoadCache(label string) ([]domain.Item, error) {
	path := s.path(label, "cache.json")
	data, err := os.ReadFile(path) //nolint:gosec // path built from operator-controlled store root + label
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache for %s: %w", label, err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		salvaged := filepath.Join(s.Dir(label), fmt.Sprintf("cache-%s.json", time.Now().UTC().Format(time.RFC3339)))
		if renameErr := os.Rename(path, salvaged); renameErr != nil {
			lgr.Printf("[WARN] could not salvage corrupt cache for %s: %v", label, renameErr)
		} else {
			lgr.Printf("[WARN] could not parse cache.json for %s, salvaged to %s, continuing with empty cache", label, salvaged)
		}
		return nil, nil
	}
	return items, nil
}

// SaveCache persists cache.json.
func (s *Store) SaveCache(label string, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cache for %s: %w", label, err)
	}
	return s.writeFile(s.path(label, "cache.json"), data)
}

// SaveXML persists cache.xml from an already-rendered document string.
func (s *Store) SaveXML(label, xml string) error {
	return s.writeFile(s.path(label, "cache.xml"), []byte(xml))
}

// ReadCacheJSON returns the raw cache.json contents, for the Read API's
// string-returning operations (spec.md §4.7).
func (s *Store) ReadCacheJSON(label string) (string, error) {
	return s.readString(s.path(label, "cache.json"))
}

// ReadCacheXML returns the raw cache.xml contents.
func (s *Store) ReadCacheXML(label string) (string, error) {
	return s.readString(s.path(label, "cache.xml"))
}

func (s *Store) readString(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path built from operator-controlled store root + label
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
