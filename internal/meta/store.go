package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/specgraph/internal/value"
)

// RelPath is the metadata document location relative to the project root.
const RelPath = "meta/pipeline_graph.json"

// ErrCorrupt reports a metadata document that exists but is not a JSON object.
var ErrCorrupt = errors.New("metadata document is corrupt")

// Store loads and saves metadata documents under project roots.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// Path returns the metadata document path for root.
func (s *Store) Path(root string) string {
	return filepath.Join(root, filepath.FromSlash(RelPath))
}

// Load reads the metadata document under root.
// An absent, unreadable or malformed document yields Default().
func (s *Store) Load(root string) *Graph {
	g, err := s.LoadChecked(root)
	if err != nil {
		slog.Warn("metadata unusable, using defaults",
			"path", s.Path(root),
			"error", err)
		return Default()
	}
	return g
}

// LoadChecked reads the metadata document under root.
// An absent document yields Default() and no error. A document that cannot be
// read is returned as a wrapped I/O error; one that does not parse as a JSON
// object is returned as ErrCorrupt.
func (s *Store) LoadChecked(root string) (*Graph, error) {
	path := s.Path(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	obj, err := value.ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return decode(obj), nil
}

// Save writes g under root with an atomic replace: the document goes to a
// sibling ".tmp" file, any existing target is removed, and the temporary
// file is renamed into place. Parent directories are created as needed.
//
// A failed save leaves g untouched; the caller decides how to surface it.
func (s *Store) Save(root string, g *Graph) error {
	raw, err := value.Marshal(encode(g))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent metadata: %w", err)
	}
	buf.WriteByte('\n')

	path := s.Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp metadata: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove old metadata: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename metadata: %w", err)
	}
	return nil
}
