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

package prompt

import "regexp"

// FilteredToken replaces every matched injection phrase. It matches no
// pattern in the table, so sanitization is idempotent.
const FilteredToken = "[FILTERED]"

// injectionPatterns are applied in order to untrusted directive text.
// All patterns are case-insensitive. Extend the table, not the callers.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier|preceding)\s+(instructions?|prompts?|rules|messages|directions?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+|any\s+)?(previous|prior|above|earlier|preceding)\s+(instructions?|prompts?|rules|messages|directions?)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+|everything\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules|messages)`),
	regexp.MustCompile(`(?i)override\s+(all\s+|any\s+|the\s+)?(system|safety|previous|prior)\s+(prompts?|instructions?|rules|constraints?|settings?)`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)developer\s+(message|prompt|mode)`),
	regexp.MustCompile(`(?i)new\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|the)\b`),
	regexp.MustCompile(`(?i)act\s+as\s+(a\s+|an\s+|the\s+)?(system|administrator|admin|developer|root)`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)\b`),
	regexp.MustCompile(`(?i)jailbreak`),
	regexp.MustCompile(`(?i)do\s+anything\s+now`),
}

// Sanitize replaces known injection phrases in untrusted text with the
// filtered token. It returns the sanitized text and whether anything was
// replaced. Callers must not log the text itself, only the boolean.
func Sanitize(input string) (string, bool) {
	modified := false
	out := input
	for _, pattern := range injectionPatterns {
		replaced := pattern.ReplaceAllString(out, FilteredToken)
		if replaced != out {
			modified = true
			out = replaced
		}
	}
	return out, modified
}
