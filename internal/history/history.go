// Package history persists snapshots of resolution runs.
//
// Each snapshot is a JSON file named after its run identifier under the
// project's .codeloom/history directory. Run identifiers are ULIDs, so
// lexicographic file order is chronological order.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/codeloom-ai/codeloom/internal/project"
)

var ErrNotFound = errors.New("snapshot not found")

// DefaultKeep is how many snapshots Prune retains.
const DefaultKeep = 50

// Store writes and reads run snapshots.
type Store struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*fileLock
}

// NewStore creates a store rooted at the project's state directory.
func NewStore(root string) *Store {
	return &Store{
		dir:   filepath.Join(root, project.ConfigDirName, "history"),
		locks: make(map[string]*fileLock),
	}
}

func (s *Store) snapshotPath(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

// Record persists one run snapshot. The write is atomic: data lands in a
// temp file that is renamed into place under a lock.
func (s *Store) Record(ctx context.Context, runID string, v any) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	path := s.snapshotPath(runID)
	lock := s.getLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock snapshot: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Get loads one snapshot into v.
func (s *Store) Get(ctx context.Context, runID string, v any) error {
	data, err := os.ReadFile(s.snapshotPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return nil
}

// List returns all recorded run identifiers in chronological order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		runs = append(runs, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(runs)
	return runs, nil
}

// Latest returns the most recent run identifier.
func (s *Store) Latest(ctx context.Context) (string, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNotFound
	}
	return runs[len(runs)-1], nil
}

// Prune deletes all but the newest keep snapshots. keep <= 0 uses
// DefaultKeep.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = DefaultKeep
	}
	runs, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) <= keep {
		return nil
	}
	for _, runID := range runs[:len(runs)-keep] {
		path := s.snapshotPath(runID)
		lock := s.getLock(path)
		if err := lock.Lock(); err != nil {
			return fmt.Errorf("lock snapshot: %w", err)
		}
		err := os.Remove(path)
		lock.Unlock()
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	return nil
}

func (s *Store) getLock(path string) *fileLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[path]
	if !ok {
		lock = newFileLock(path)
		s.locks[path] = lock
	}
	return lock
}
