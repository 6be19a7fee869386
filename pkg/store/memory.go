package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

func (m *Memory) Get(ctx context.Context, topology, group string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[Key(topology, group)].Clone(), nil
}

func (m *Memory) Put(ctx context.Context, rec *Record) error {
	if err := stamp(rec); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key()] = rec.Clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, topology, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, Key(topology, group))
	return nil
}

func (m *Memory) List(ctx context.Context, topology string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	prefix := topology + "/"
	for k, r := range m.records {
		if strings.HasPrefix(k, prefix) {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
