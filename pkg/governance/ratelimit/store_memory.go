// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"sync"
)

// counterKey uniquely identifies a counter.
type counterKey struct {
	Scope      Scope
	Identifier string
	WindowKey  string
}

// MemoryStore is an in-memory implementation of Store.
// It is thread-safe and suitable for development, testing, and
// single-instance deployments.
type MemoryStore struct {
	data map[counterKey]int64
	mu   sync.RWMutex

	// purgedThrough is the last purge watermark; repeat purges at or
	// below it are skipped.
	purgedThrough string
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[counterKey]int64),
	}
}

// Increment atomically increments a counter and returns the new count.
func (s *MemoryStore) Increment(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey{Scope: scope, Identifier: identifier, WindowKey: windowKey}
	s.data[key]++
	return s.data[key], nil
}

// Get returns the current count for a counter. Missing counters read as 0.
func (s *MemoryStore) Get(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[counterKey{Scope: scope, Identifier: identifier, WindowKey: windowKey}], nil
}

// PurgeBefore drops counters from windows older than the given key.
func (s *MemoryStore) PurgeBefore(ctx context.Context, windowKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if windowKey <= s.purgedThrough {
		return nil
	}
	s.purgedThrough = windowKey

	for key := range s.data {
		if key.WindowKey < windowKey {
			delete(s.data, key)
		}
	}
	return nil
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[counterKey]int64)
	return nil
}

// Size returns the number of live counters (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
