package analyzer

import (
	"testing"

	"github.com/mcncl/gotoon/internal/config"
	"github.com/mcncl/gotoon/internal/models"
	"github.com/mcncl/gotoon/internal/parser"
	"github.com/mcncl/gotoon/toon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_TabularDocument(t *testing.T) {
	jsonInput := `{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}],"tags":["a","b"]}`
	doc, err := parser.ParseString(jsonInput, models.FormatJSON)
	require.NoError(t, err)

	analyzer := NewAnalyzer()
	stats, err := analyzer.Analyze(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Objects)
	assert.Equal(t, 2, stats.Arrays)
	assert.Equal(t, 6, stats.Primitives)
	assert.Equal(t, 6, stats.Fields)
	assert.Equal(t, 3, stats.MaxDepth)
	assert.Equal(t, map[toon.Layout]int{toon.LayoutTabular: 1, toon.LayoutInline: 1}, stats.Layouts)

	assert.Equal(t, len(jsonInput), stats.JSONBytes)
	// users[2]{id,name}:\n  1,Alice\n  2,Bob\ntags[2]: a,b
	assert.Equal(t, 49, stats.TOONBytes)
	assert.InDelta(t, 33.78, stats.Savings(), 0.01)
}

func TestAnalyze_NestedListDepth(t *testing.T) {
	jsonInput := `{"a": {"b": [[1, 2], {"c": [3]}]}}`
	doc, err := parser.ParseString(jsonInput, models.FormatJSON)
	require.NoError(t, err)

	stats, err := NewAnalyzer().Analyze(doc)
	require.NoError(t, err)

	// root -> a -> b -> {c} -> [3]
	assert.Equal(t, 5, stats.MaxDepth)
	assert.Equal(t, 3, stats.Objects)
	assert.Equal(t, 3, stats.Arrays)
	assert.Equal(t, 1, stats.Layouts[toon.LayoutList])
	assert.Equal(t, 2, stats.Layouts[toon.LayoutInline])
}

func TestAnalyze_RootPrimitive(t *testing.T) {
	stats, err := NewAnalyzer().Analyze(models.Document{Root: "hello"})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.MaxDepth)
	assert.Equal(t, 1, stats.Primitives)
	assert.Equal(t, len(`"hello"`), stats.JSONBytes)
	assert.Equal(t, len("hello"), stats.TOONBytes)
}

func TestAnalyze_UsesEncodeConfig(t *testing.T) {
	doc, err := parser.ParseString(`{"a":{"b":{"c":1}}}`, models.FormatJSON)
	require.NoError(t, err)

	plain, err := NewAnalyzer().Analyze(doc)
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Encode.KeyFolding = string(toon.FoldingSafe)
	folded, err := NewAnalyzerWithConfig(cfg).Analyze(doc)
	require.NoError(t, err)

	// "a:\n  b:\n    c: 1" against "a.b.c: 1"
	assert.Equal(t, 16, plain.TOONBytes)
	assert.Equal(t, 8, folded.TOONBytes)
	assert.Equal(t, plain.JSONBytes, folded.JSONBytes)
}

func TestStats_Savings(t *testing.T) {
	assert.Equal(t, float64(0), Stats{}.Savings())
	assert.Equal(t, float64(50), Stats{JSONBytes: 10, TOONBytes: 5}.Savings())
	assert.Equal(t, float64(-100), Stats{JSONBytes: 5, TOONBytes: 10}.Savings())
}
