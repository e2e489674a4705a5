package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/mj1618/composebox/internal/model"
)

// FileStore keeps placements in a single JSON document. Every Save rewrites
// the document through a temporary file and a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type placementFile struct {
	Placements map[string]model.Point `json:"placements"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(_ context.Context, key string, pt model.Point) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := s.read()
	if err != nil {
		return err
	}
	points[key] = pt
	return s.write(points)
}

func (s *FileStore) Load(_ context.Context, key string) (model.Point, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := s.read()
	if err != nil {
		return model.Point{}, false, err
	}
	pt, ok := points[key]
	return pt, ok, nil
}

func (s *FileStore) List(_ context.Context) (map[string]model.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := s.read()
	if err != nil {
		return nil, err
	}
	return maps.Clone(points), nil
}

func (s *FileStore) Close() error { return nil }

// read returns an empty map when the file does not exist yet.
func (s *FileStore) read() (map[string]model.Point, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]model.Point), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read placements: %w", err)
	}
	var doc placementFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode placements %s: %w", s.path, err)
	}
	if doc.Placements == nil {
		doc.Placements = make(map[string]model.Point)
	}
	return doc.Placements, nil
}

func (s *FileStore) write(points map[string]model.Point) error {
	data, err := json.MarshalIndent(placementFile{Placements: points}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode placements: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create placement dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".placements-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write placements: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write placements: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace placements: %w", err)
	}
	return nil
}
