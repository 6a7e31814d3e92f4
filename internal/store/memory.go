package store

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"civic-insight/internal/record"
)

// MemoryStore is a thread-safe, snapshot-per-source record store with JSONL
// file persistence. Datasets are deduplicated on record ID and kept in a
// deterministic chronological order so repeat queries are bit-identical.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string][]record.Grievance
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{datasets: make(map[string][]record.Grievance)}
}

// Put replaces or extends the dataset for a source, deduplicating on record
// ID and restoring chronological order.
func (s *MemoryStore) Put(source string, records []record.Grievance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.datasets[source]
	seen := make(map[string]bool, len(existing))
	for _, g := range existing {
		seen[g.ID] = true
	}

	added := 0
	for _, g := range records {
		if g.ID == "" || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		g.Source = source
		existing = append(existing, g)
		added++
	}
	if added == 0 && len(existing) == len(s.datasets[source]) {
		return
	}

	// Created date ascending, ID as a stable tie-break.
	slices.SortFunc(existing, func(a, b record.Grievance) int {
		if !a.CreatedDate.Equal(b.CreatedDate) {
			if a.CreatedDate.Before(b.CreatedDate) {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	s.datasets[source] = existing
}

// Snapshot returns a copy of the dataset for a source. Mutating the returned
// slice never affects subsequent snapshots.
func (s *MemoryStore) Snapshot(_ context.Context, source string) ([]record.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.datasets[source]
	if !ok {
		return nil, fmt.Errorf("unknown dataset source: %s", source)
	}
	out := make([]record.Grievance, len(data))
	copy(out, data)
	return out, nil
}

// Sources lists the known dataset identifiers, sorted.
func (s *MemoryStore) Sources(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]string, 0, len(s.datasets))
	for src := range s.datasets {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	return sources, nil
}

// Count returns the record count for a source.
func (s *MemoryStore) Count(source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets[source])
}

// LoadDir loads every *.jsonl dataset file in dir, one source per file.
func (s *MemoryStore) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no datasets yet, not an error
		}
		return fmt.Errorf("failed to read dataset directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		source := strings.TrimSuffix(e.Name(), ".jsonl")
		if err := s.Load(dir, source); err != nil {
			return err
		}
	}
	return nil
}

// Load reads one source's records from its JSONL dataset file.
func (s *MemoryStore) Load(dir, source string) error {
	path := filepath.Join(dir, fmt.Sprintf("%s.jsonl", source))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	var records []record.Grievance
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var g record.Grievance
		if err := json.Unmarshal(scanner.Bytes(), &g); err != nil {
			log.Warn().Err(err).Str("source", source).Msg("Skipping invalid JSON line in dataset")
			continue
		}
		records = append(records, g)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading dataset: %w", err)
	}

	log.Info().Str("source", source).Int("count", len(records)).Msg("Loaded dataset")
	s.Put(source, records)
	return nil
}

// Save persists a source's records to a JSONL dataset file via atomic rename.
func (s *MemoryStore) Save(dir, source string) error {
	s.mu.RLock()
	data, ok := s.datasets[source]
	s.mu.RUnlock()

	if !ok || len(data) == 0 {
		return nil
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.jsonl", source))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, g := range data {
		if err := encoder.Encode(g); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename dataset file: %w", err)
	}

	log.Info().Str("source", source).Int("count", len(data)).Msg("Dataset saved")
	return nil
}
