// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"context"
	"time"
)

// NoopMetrics discards every measurement. Use it when metrics are
// disabled or in tests.
type NoopMetrics struct{}

func (NoopMetrics) RecordGeneration(_ context.Context, _, _, _ string, _ time.Duration, _ int, _ string) {
}

func (NoopMetrics) RecordRateLimitHit(_ context.Context, _ string) {}

func (NoopMetrics) RecordGateDenial(_ context.Context, _, _ string) {}

func (NoopMetrics) RecordFallback(_ context.Context, _ string) {}
