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

import "time"

// WindowDuration is the fixed width of a rate-limit window.
const WindowDuration = 10 * time.Minute

// windowKeyLayout formats a bucket as YYYY-MM-DDThh:mm in UTC.
const windowKeyLayout = "2006-01-02T15:04"

// WindowKey maps a timestamp to its 10-minute bucket key. Timestamps in
// the same bucket produce the same key; keys sort lexicographically in
// time order and are never reused across non-adjacent windows.
func WindowKey(t time.Time) string {
	return WindowStart(t).Format(windowKeyLayout)
}

// WindowStart truncates a timestamp to the start of its bucket, in UTC.
func WindowStart(t time.Time) time.Time {
	return t.UTC().Truncate(WindowDuration)
}

// NextWindow returns the start of the bucket after the one containing t.
// Used to compute Retry-After for rejected requests.
func NextWindow(t time.Time) time.Time {
	return WindowStart(t).Add(WindowDuration)
}
