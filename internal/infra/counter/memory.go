package counter

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

var errCapacityExceeded = errors.New("counter store capacity exceeded")

type memoryEntry struct {
	value     string
	expiresAt time.Time
	hasExpiry bool
}

func (e *memoryEntry) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expiresAt)
}

// Memory is the in-process backend, used when no Redis address is
// configured. Entries are bounded; expired entries are collected when
// the map is full and lazily on access.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*memoryEntry
	maxKeys int
}

type MemoryConfig struct {
	Now     func() time.Time
	MaxKeys int
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	return &Memory{
		now:     cfg.Now,
		entries: make(map[string]*memoryEntry),
		maxKeys: cfg.MaxKeys,
	}
}

func (m *Memory) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if ok && entry.expired(now) {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		if err := m.ensureCapacity(now); err != nil {
			return 0, err
		}
		entry = &memoryEntry{value: "1"}
		if ttl > 0 {
			entry.hasExpiry = true
			entry.expiresAt = now.Add(ttl)
		}
		m.entries[key] = entry
		return 1, nil
	}

	count, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, errors.New("counter value is not an integer")
	}
	count++
	entry.value = strconv.FormatInt(count, 10)
	return count, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		if err := m.ensureCapacity(now); err != nil {
			return err
		}
	}
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// ensureCapacity must be called with the lock held.
func (m *Memory) ensureCapacity(now time.Time) error {
	if len(m.entries) < m.maxKeys {
		return nil
	}
	m.gc(now)
	if len(m.entries) >= m.maxKeys {
		return errCapacityExceeded
	}
	return nil
}

func (m *Memory) gc(now time.Time) {
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
		}
	}
}

var _ Store = (*Memory)(nil)
