package blobstore

import (
	"context"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is an in-memory Store implementation for testing.
// It stores objects in memory without any filesystem dependency.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	putErr  error

	puts     atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
	delay    atomic.Int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
	}
}

// Put reads body fully and stores it under key.
func (m *MemoryStore) Put(ctx context.Context, key string, body io.Reader, _ int64) error {
	m.puts.Add(1)

	cur := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		p := m.peak.Load()
		if cur <= p || m.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	if d := m.delay.Load(); d > 0 {
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	return nil
}

// Exists reports whether key is stored.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[key]
	return ok, nil
}

// Delete removes an object.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

// Get returns a copy of the object stored under key.
func (m *MemoryStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, true
}

// Keys returns all stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PutCount returns the number of Put calls, failed ones included.
func (m *MemoryStore) PutCount() int64 { return m.puts.Load() }

// PeakConcurrency returns the highest number of simultaneous Put calls seen.
func (m *MemoryStore) PeakConcurrency() int64 { return m.peak.Load() }

// SetPutError makes every following Put fail with err. Pass nil to reset.
func (m *MemoryStore) SetPutError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// SetPutDelay makes every following Put take at least d.
func (m *MemoryStore) SetPutDelay(d time.Duration) { m.delay.Store(int64(d)) }

func sleepCtx(ctx context.Context, nanos int64) error {
	t := time.NewTimer(time.Duration(nanos))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
