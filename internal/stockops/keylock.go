package stockops

import (
	"sort"
	"sync"
)

// KeyLock serializes batch operations over the stock record keys they touch.
// Locks are acquired in sorted key order so two batches touching overlapping
// key sets cannot deadlock. Mutexes are retained for the process lifetime;
// the key space is bounded by the physical warehouse layout.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyLock) lockFor(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

// LockAll acquires every key exclusively and returns the matching unlock.
// Duplicate keys are collapsed before acquisition.
func (k *KeyLock) LockAll(keys []string) func() {
	unique := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		unique[key] = struct{}{}
	}

	ordered := make([]string, 0, len(unique))
	for key := range unique {
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, key := range ordered {
		m := k.lockFor(key)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
