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

package featuregate

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned when the gate rejects a request.
var ErrPermissionDenied = errors.New("feature permission denied")

// DenialReason explains why the gate rejected a request.
type DenialReason string

const (
	// ReasonFeatureDisabled means the tenant's feature flag is off.
	// Checked before roles and takes precedence over rbac.
	ReasonFeatureDisabled DenialReason = "feature_disabled"

	// ReasonRBAC means the caller's effective role is below the
	// feature's minimum.
	ReasonRBAC DenialReason = "rbac"
)

// PermissionDeniedError reports a gate rejection.
type PermissionDeniedError struct {
	Reason  DenialReason
	Feature Feature
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("feature %s denied: %s", e.Feature, e.Reason)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// IsPermissionDenied checks if an error is a gate rejection.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// GetDenial extracts the PermissionDeniedError from an error chain.
// Returns nil if the error is not a gate rejection.
func GetDenial(err error) *PermissionDeniedError {
	var pde *PermissionDeniedError
	if errors.As(err, &pde) {
		return pde
	}
	return nil
}
