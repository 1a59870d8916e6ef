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

package ratelimit

import (
	"errors"
	"fmt"
)

// ErrExceeded is returned when a request quota is exhausted.
var ErrExceeded = errors.New("rate limit exceeded")

// ExceededError reports which scope was exhausted and in which window.
type ExceededError struct {
	// Scope is the exhausted dimension ("user" or "tenant"). The user
	// scope always takes precedence: a request over both limits reports
	// a user violation.
	Scope Scope

	// WindowKey identifies the 10-minute bucket that was exceeded.
	WindowKey string
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s in window %s", e.Scope, e.WindowKey)
}

func (e *ExceededError) Unwrap() error {
	return ErrExceeded
}

// IsExceeded checks if an error is a rate limit rejection.
func IsExceeded(err error) bool {
	return errors.Is(err, ErrExceeded)
}

// GetExceeded extracts the ExceededError from an error chain.
// Returns nil if the error is not a rate limit rejection.
func GetExceeded(err error) *ExceededError {
	var ee *ExceededError
	if errors.As(err, &ee) {
		return ee
	}
	return nil
}
