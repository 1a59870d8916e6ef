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
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenEncodings = make(map[string]*tiktoken.Tiktoken)
	tokenMu        sync.RWMutex
)

// estimateTokens approximates the prompt token count for telemetry.
// Encodings are cached per model; when no encoding can be loaded the
// estimate falls back to a chars/4 heuristic rather than failing the
// request path.
func estimateTokens(model, text string) int {
	encoding := encodingForModel(model)
	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}

func encodingForModel(model string) *tiktoken.Tiktoken {
	tokenMu.RLock()
	cached, ok := tokenEncodings[model]
	tokenMu.RUnlock()
	if ok {
		return cached
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil
		}
	}

	tokenMu.Lock()
	tokenEncodings[model] = encoding
	tokenMu.Unlock()
	return encoding
}
