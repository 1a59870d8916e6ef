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

import "context"

// Store is the persistence layer for rate-limit counters.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Increment atomically increments the counter for
	// (scope, identifier, windowKey) and returns the new count. The
	// increment-and-return must be a single atomic operation; callers
	// rely on it for the exceed-on-boundary invariant.
	Increment(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error)

	// Get returns the current count without modifying it. A missing
	// counter reads as 0.
	Get(ctx context.Context, scope Scope, identifier, windowKey string) (int64, error)

	// PurgeBefore deletes counters whose window key sorts strictly below
	// the given key. Window keys are monotonic, so lexicographic
	// comparison is a time comparison.
	PurgeBefore(ctx context.Context, windowKey string) error

	// Close releases store resources.
	Close() error
}

// Ensure interface compliance at compile time.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
