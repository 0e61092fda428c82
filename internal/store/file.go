package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/research-analyst/internal/types"
)

// FileStore keeps each collection in <dir>/<collection>.json. It is safe for
// concurrent use within one process.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) ListTasks(ctx context.Context) ([]types.Task, error) {
	return list[types.Task](ctx, s, CollectionTasks)
}

func (s *FileStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	return get(ctx, s, CollectionTasks, KindTask, id, taskID)
}

func (s *FileStore) SaveTask(ctx context.Context, task types.Task) error {
	return save(ctx, s, CollectionTasks, task, taskID)
}

func (s *FileStore) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := readCollection[types.Task](s.path(CollectionTasks))
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return &NotFoundError{Kind: KindTask, ID: id}
	}
	return writeCollection(s.dir, s.path(CollectionTasks), kept)
}

func (s *FileStore) ReplaceTasks(ctx context.Context, tasks []types.Task) error {
	return replace(ctx, s, CollectionTasks, tasks)
}

func (s *FileStore) ListSources(ctx context.Context) ([]types.Source, error) {
	return list[types.Source](ctx, s, CollectionSources)
}

func (s *FileStore) GetSource(ctx context.Context, id string) (*types.Source, error) {
	return get(ctx, s, CollectionSources, KindSource, id, sourceID)
}

func (s *FileStore) SaveSource(ctx context.Context, source types.Source) error {
	return save(ctx, s, CollectionSources, source, sourceID)
}

func (s *FileStore) ReplaceSources(ctx context.Context, sources []types.Source) error {
	return replace(ctx, s, CollectionSources, sources)
}

func (s *FileStore) ListDeliverables(ctx context.Context) ([]types.Deliverable, error) {
	return list[types.Deliverable](ctx, s, CollectionDeliverables)
}

// GetDeliverableByTask returns the first deliverable recorded for taskID.
func (s *FileStore) GetDeliverableByTask(ctx context.Context, taskID string) (*types.Deliverable, error) {
	return get(ctx, s, CollectionDeliverables, KindDeliverable, taskID, deliverableTaskID)
}

func (s *FileStore) SaveDeliverable(ctx context.Context, deliverable types.Deliverable) error {
	return save(ctx, s, CollectionDeliverables, deliverable, deliverableID)
}

func (s *FileStore) Counts(ctx context.Context) (Counts, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return Counts{}, err
	}
	sources, err := s.ListSources(ctx)
	if err != nil {
		return Counts{}, err
	}
	deliverables, err := s.ListDeliverables(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Tasks: len(tasks), Sources: len(sources), Deliverables: len(deliverables)}, nil
}

// Close is a no-op; the store holds no open resources.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func taskID(t types.Task) string { return t.ID }
func sourceID(s types.Source) string { return s.ID }
func deliverableID(d types.Deliverable) string { return d.ID }
func deliverableTaskID(d types.Deliverable) string { return d.TaskID }

func list[T any](ctx context.Context, s *FileStore, collection string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readCollection[T](s.path(collection))
}

func get[T any](ctx context.Context, s *FileStore, collection, kind, id string, key func(T) string) (*T, error) {
	items, err := list[T](ctx, s, collection)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if key(items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, &NotFoundError{Kind: kind, ID: id}
}

func save[T any](ctx context.Context, s *FileStore, collection string, item T, key func(T) string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[T](s.path(collection))
	if err != nil {
		return err
	}
	id := key(item)
	replaced := false
	for i := range items {
		if key(items[i]) == id {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return writeCollection(s.dir, s.path(collection), items)
}

func replace[T any](ctx context.Context, s *FileStore, collection string, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if items == nil {
		items = []T{}
	}
	return writeCollection(s.dir, s.path(collection), items)
}

// readCollection reads a JSON array. A missing or empty file is an empty
// collection.
func readCollection[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeCollection[T any](dir, path string, items []T) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
