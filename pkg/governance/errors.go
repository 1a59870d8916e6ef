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

package governance

import (
	"errors"

	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
)

// The pipeline surfaces exactly four error kinds to callers. Raw
// transport, store, or provider errors never escape; anything
// unclassified is mapped to ServiceUnavailableError.
var (
	// ErrRateLimitExceeded is returned when a request quota is exhausted.
	ErrRateLimitExceeded = ratelimit.ErrExceeded

	// ErrFeaturePermissionDenied is returned when the feature gate
	// rejects a request.
	ErrFeaturePermissionDenied = featuregate.ErrPermissionDenied

	// ErrAIResponseInvalid is returned when caller input or provider
	// output fails schema validation.
	ErrAIResponseInvalid = errors.New("ai response invalid")

	// ErrServiceUnavailable is returned for transport failures, provider
	// error payloads, and any unclassified failure.
	ErrServiceUnavailable = errors.New("ai service unavailable")
)

// RateLimitExceededError carries the exhausted scope and window key.
type RateLimitExceededError = ratelimit.ExceededError

// FeaturePermissionDeniedError carries the denial reason and feature.
type FeaturePermissionDeniedError = featuregate.PermissionDeniedError

// AIResponseInvalidError reports a schema validation failure on caller
// input or provider output. Message lists failing fields and never
// carries request or response content.
type AIResponseInvalidError struct {
	Message string
}

func (e *AIResponseInvalidError) Error() string {
	return e.Message
}

func (e *AIResponseInvalidError) Unwrap() error {
	return ErrAIResponseInvalid
}

// ServiceUnavailableError reports a provider or infrastructure failure.
type ServiceUnavailableError struct {
	Message string
}

func (e *ServiceUnavailableError) Error() string {
	return e.Message
}

func (e *ServiceUnavailableError) Unwrap() error {
	return ErrServiceUnavailable
}

// IsInvalid checks if an error is a schema validation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrAIResponseInvalid)
}

// IsUnavailable checks if an error is a service failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
