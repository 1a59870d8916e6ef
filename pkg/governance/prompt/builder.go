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

// Package prompt assembles the final prompt from prioritized content
// layers under a global character budget, and neutralizes prompt
// injection in untrusted text before it joins the prompt.
package prompt

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to any trimmed layer so truncation stays
// visible to the model and to humans reading the prompt.
const TruncationMarker = " [truncated]"

// layerSeparator joins emitted layers.
const layerSeparator = "\n\n"

// Layer is one prioritized slice of prompt content. MaxChars == 0 means
// the layer may consume whatever remains of the global budget.
type Layer struct {
	Name     string
	Content  string
	MaxChars int
}

// LayerResult records what one layer contributed.
type LayerResult struct {
	Name    string
	Chars   int
	Trimmed bool
}

// BuiltContext is the assembled prompt plus per-layer metadata.
// Built fresh per request; never persisted.
type BuiltContext struct {
	Text       string
	TotalChars int
	Layers     []LayerResult
	WasTrimmed bool
}

// Builder assembles layers under a fixed global character budget.
// Build is pure and deterministic given its inputs.
type Builder struct {
	maxChars int
}

// NewBuilder creates a builder with the given global budget.
func NewBuilder(maxChars int) *Builder {
	return &Builder{maxChars: maxChars}
}

// Build processes layers in the given priority order. Earlier layers are
// never trimmed to make room for later ones; the layer most likely to
// need truncation belongs last. A layer whose effective cap reaches zero
// is dropped with a warning, and processing continues. The truncation
// marker is reserved inside each layer's cap, so the total emitted text
// never exceeds the global budget.
func (b *Builder) Build(layers []Layer) *BuiltContext {
	built := &BuiltContext{
		Layers: make([]LayerResult, 0, len(layers)),
	}

	remaining := b.maxChars
	var parts []string

	for _, layer := range layers {
		if layer.Content == "" {
			built.Layers = append(built.Layers, LayerResult{Name: layer.Name})
			continue
		}

		limit := layer.MaxChars
		if limit <= 0 || limit > remaining {
			limit = remaining
		}

		// The marker must fit inside the cap for a trimmed layer, so a
		// cap that cannot hold more than the marker drops the layer.
		if limit <= 0 || (utf8.RuneCountInString(layer.Content) > limit && limit <= utf8.RuneCountInString(TruncationMarker)) {
			built.Layers = append(built.Layers, LayerResult{Name: layer.Name, Trimmed: true})
			built.WasTrimmed = true
			slog.Warn("prompt layer dropped, budget exhausted", "layer", layer.Name)
			continue
		}

		emitted := layer.Content
		trimmed := false
		if utf8.RuneCountInString(emitted) > limit {
			emitted = Trim(emitted, limit-utf8.RuneCountInString(TruncationMarker))
			trimmed = true
			built.WasTrimmed = true
		}

		chars := utf8.RuneCountInString(emitted)
		remaining -= chars
		built.TotalChars += chars
		built.Layers = append(built.Layers, LayerResult{
			Name:    layer.Name,
			Chars:   chars,
			Trimmed: trimmed,
		})
		parts = append(parts, emitted)
	}

	built.Text = strings.Join(parts, layerSeparator)
	return built
}

// Trim cuts s to at most limit characters and appends the truncation
// marker. The cut prefers the last space within the limit when that
// space sits at or beyond 80% of it, preserving whole words; otherwise
// it hard-cuts mid-word rather than losing more content. The result
// never exceeds limit plus the marker length.
func Trim(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := runes[:limit]

	lastSpace := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == ' ' {
			lastSpace = i
			break
		}
	}

	if lastSpace*5 >= limit*4 {
		cut = cut[:lastSpace]
	}

	return strings.TrimRight(string(cut), " ") + TruncationMarker
}
