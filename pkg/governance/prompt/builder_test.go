package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_AllLayersFit(t *testing.T) {
	b := NewBuilder(1000)

	built := b.Build([]Layer{
		{Name: "system", Content: "You are a helpful assistant."},
		{Name: "tenant", Content: "Tenant tone: concise and warm."},
		{Name: "payload", Content: "Case notes go here."},
	})

	require.Len(t, built.Layers, 3)
	assert.False(t, built.WasTrimmed)
	assert.Equal(t, "You are a helpful assistant.\n\nTenant tone: concise and warm.\n\nCase notes go here.", built.Text)

	for _, layer := range built.Layers {
		assert.False(t, layer.Trimmed)
		assert.Positive(t, layer.Chars)
	}
}

func TestBuild_NeverExceedsBudget(t *testing.T) {
	b := NewBuilder(100)

	built := b.Build([]Layer{
		{Name: "system", Content: strings.Repeat("a", 60)},
		{Name: "payload", Content: strings.Repeat("b", 200)},
	})

	assert.True(t, built.WasTrimmed)
	assert.LessOrEqual(t, built.TotalChars, 100)

	// Separators are not charged against the budget.
	sepChars := utf8.RuneCountInString(built.Text) - built.TotalChars
	assert.Equal(t, len("\n\n"), sepChars)
}

func TestBuild_EarlierLayersNeverTrimmedForLater(t *testing.T) {
	b := NewBuilder(100)

	built := b.Build([]Layer{
		{Name: "system", Content: strings.Repeat("a", 90)},
		{Name: "payload", Content: strings.Repeat("b", 500)},
	})

	require.Len(t, built.Layers, 2)
	assert.False(t, built.Layers[0].Trimmed)
	assert.Equal(t, 90, built.Layers[0].Chars)
	assert.True(t, built.Layers[1].Trimmed)
	assert.LessOrEqual(t, built.Layers[1].Chars, 10)
}

func TestBuild_PerLayerCap(t *testing.T) {
	b := NewBuilder(1000)

	built := b.Build([]Layer{
		{Name: "directive", Content: strings.Repeat("x", 500), MaxChars: 100},
	})

	require.Len(t, built.Layers, 1)
	assert.True(t, built.Layers[0].Trimmed)
	assert.LessOrEqual(t, built.Layers[0].Chars, 100)
	assert.True(t, strings.HasSuffix(built.Text, TruncationMarker))
}

func TestBuild_ExhaustedBudgetDropsLayer(t *testing.T) {
	b := NewBuilder(50)

	built := b.Build([]Layer{
		{Name: "system", Content: strings.Repeat("a", 50)},
		{Name: "tenant", Content: "dropped entirely"},
		{Name: "payload", Content: "also dropped"},
	})

	require.Len(t, built.Layers, 3)
	assert.Equal(t, 50, built.Layers[0].Chars)
	assert.True(t, built.Layers[1].Trimmed)
	assert.Zero(t, built.Layers[1].Chars)
	assert.True(t, built.Layers[2].Trimmed)
	assert.Zero(t, built.Layers[2].Chars)
	assert.Equal(t, strings.Repeat("a", 50), built.Text)
}

func TestBuild_EmptyLayerSkipped(t *testing.T) {
	b := NewBuilder(100)

	built := b.Build([]Layer{
		{Name: "system", Content: "first"},
		{Name: "directive", Content: ""},
		{Name: "payload", Content: "last"},
	})

	// No separator is emitted for an empty layer.
	assert.Equal(t, "first\n\nlast", built.Text)
	assert.False(t, built.WasTrimmed)
	assert.Zero(t, built.Layers[1].Chars)
	assert.False(t, built.Layers[1].Trimmed)
}

func TestBuild_Deterministic(t *testing.T) {
	b := NewBuilder(80)
	layers := []Layer{
		{Name: "system", Content: "the quick brown fox jumps over the lazy dog repeatedly"},
		{Name: "payload", Content: strings.Repeat("word ", 40)},
	}

	first := b.Build(layers)
	second := b.Build(layers)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Layers, second.Layers)
}

func TestTrim_WordBoundary(t *testing.T) {
	// Last space within the limit sits at index 49 of 50, past the 80%
	// threshold, so the cut lands on the word boundary.
	s := "alpha bravo charlie delta echo foxtrot golf hotel india"
	out := Trim(s, 50)

	assert.Equal(t, "alpha bravo charlie delta echo foxtrot golf hotel"+TruncationMarker, out)
}

func TestTrim_HardCutWhenSpaceTooEarly(t *testing.T) {
	// Only space is at index 3, well before 80% of the limit.
	s := "abc " + strings.Repeat("d", 100)
	out := Trim(s, 20)

	assert.Equal(t, "abc "+strings.Repeat("d", 16)+TruncationMarker, out)
}

func TestTrim_NoSpaces(t *testing.T) {
	out := Trim(strings.Repeat("z", 100), 10)

	assert.Equal(t, strings.Repeat("z", 10)+TruncationMarker, out)
}

func TestTrim_UnderLimitUnchanged(t *testing.T) {
	assert.Equal(t, "short", Trim("short", 100))
}

func TestTrim_NeverExceedsLimitPlusMarker(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 500),
		strings.Repeat("word ", 100),
		"one two three four five six seven eight nine ten",
	}
	for _, s := range inputs {
		out := Trim(s, 30)
		assert.LessOrEqual(t, utf8.RuneCountInString(out), 30+utf8.RuneCountInString(TruncationMarker))
	}
}
