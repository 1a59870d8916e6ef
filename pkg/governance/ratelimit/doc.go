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

// Package ratelimit enforces per-user and per-tenant request quotas over
// fixed 10-minute windows.
//
// Counters are keyed by (scope, identifier, window key) and live behind
// the Store interface, which must provide an atomic increment-and-return
// primitive: a read-then-write pattern would let two concurrent requests
// both observe a pre-increment count at the boundary and both pass.
//
// A request is rejected once the post-increment count is strictly
// greater than the limit, so with a user limit of 30 the 31st request in
// a window is the first one rejected. The user quota is always consulted
// before the tenant quota; a request over both limits is reported as a
// user violation.
//
// Two stores ship with the package:
//
//   - MemoryStore: in-process map, suitable for a single instance.
//   - SQLStore: shared counters via an atomic SQL upsert, for
//     multi-instance deployments (Postgres, MySQL, SQLite).
//
// The limiter never retries and never rolls back an increment.
package ratelimit
