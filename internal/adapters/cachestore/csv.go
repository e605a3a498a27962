// Package cachestore persists the address-resolution cache between runs.
package cachestore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// CSVStore persists the cache as a two-column table (handle, address),
// rewritten in full on every save.
type CSVStore struct {
	path   string
	logger *zap.Logger
}

// NewCSVStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	return &CSVStore{path: path, logger: logger}
}

func (s *CSVStore) Load(ctx context.Context) (map[string]string, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cache table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cache table: %w", err)
	}

	entries := make(map[string]string, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && strings.EqualFold(record[0], "handle") {
			continue
		}
		if len(record) < 2 {
			continue
		}
		handle := strings.ToLower(strings.TrimSpace(record[0]))
		if handle == "" {
			continue
		}
		entries[handle] = strings.TrimSpace(record[1])
	}
	return entries, nil
}

func (s *CSVStore) Save(ctx context.Context, entries map[string]string) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"handle", "address"}); err != nil {
		f.Close()
		return fmt.Errorf("write cache header: %w", err)
	}

	// Stable output keeps diffs between runs readable.
	handles := make([]string, 0, len(entries))
	for handle := range entries {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	for _, handle := range handles {
		if err := w.Write([]string{handle, entries[handle]}); err != nil {
			f.Close()
			return fmt.Errorf("write cache entry: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush cache table: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cache table: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache table: %w", err)
	}

	s.logger.Debug("cache table written",
		zap.String("path", s.path),
		zap.Int("entries", len(entries)))
	return nil
}
