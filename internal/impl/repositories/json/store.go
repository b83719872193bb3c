package repositories_json

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/drujensen/cliweb/internal/domain/errs"

	"github.com/google/uuid"
)

// store keeps one collection of records in a JSON file under dataDir/.cliweb.
// Records are cloned on the way in and out so callers never share state
// with the stored copy.
type store[T any] struct {
	mu       sync.RWMutex
	name     string
	filePath string
	idOf     func(*T) string
	data     []*T
}

func newStore[T any](dataDir, name string, idOf func(*T) string) (*store[T], error) {
	s := &store[T]{
		name:     name,
		filePath: filepath.Join(dataDir, ".cliweb", name+".json"),
		idOf:     idOf,
		data:     []*T{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store[T]) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errs.InternalErrorf("failed to read %s.json: %v", s.name, err)
	}

	var records []*T
	if err := json.Unmarshal(data, &records); err != nil {
		return errs.InternalErrorf("failed to unmarshal %s.json: %v", s.name, err)
	}
	for _, record := range records {
		id := s.idOf(record)
		if id == "" {
			return errs.InternalErrorf("%s record is missing an ID", s.name)
		}
		if _, err := uuid.Parse(id); err != nil {
			return errs.InternalErrorf("%s record has an invalid UUID: %v", s.name, err)
		}
	}

	s.data = records
	return nil
}

// save writes records to disk and makes them the current data only when the
// write succeeds.
func (s *store[T]) save(records []*T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errs.InternalErrorf("failed to marshal %s: %v", s.name, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return errs.InternalErrorf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return errs.InternalErrorf("failed to write %s.json: %v", s.name, err)
	}
	s.data = records
	return nil
}

func clone[T any](record *T) (*T, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errs.InternalErrorf("failed to copy record: %v", err)
	}
	var copied T
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, errs.InternalErrorf("failed to copy record: %v", err)
	}
	return &copied, nil
}

func (s *store[T]) get(id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.data {
		if s.idOf(record) == id {
			return clone(record)
		}
	}
	return nil, errs.NotFoundErrorf("%s not found: %s", s.name, id)
}

func (s *store[T]) list(match func(*T) bool) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*T{}
	for _, record := range s.data {
		if !match(record) {
			continue
		}
		copied, err := clone(record)
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
	}
	return result, nil
}

func (s *store[T]) create(record *T) error {
	copied, err := clone(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(record)
	if slices.ContainsFunc(s.data, func(r *T) bool { return s.idOf(r) == id }) {
		return errs.DuplicateErrorf("%s already exists: %s", s.name, id)
	}
	return s.save(append(slices.Clone(s.data), copied))
}

func (s *store[T]) update(record *T) error {
	copied, err := clone(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(record)
	for i, r := range s.data {
		if s.idOf(r) == id {
			records := slices.Clone(s.data)
			records[i] = copied
			return s.save(records)
		}
	}
	return errs.NotFoundErrorf("%s not found: %s", s.name, id)
}

func (s *store[T]) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.data {
		if s.idOf(r) == id {
			return s.save(slices.Delete(slices.Clone(s.data), i, i+1))
		}
	}
	return errs.NotFoundErrorf("%s not found: %s", s.name, id)
}
