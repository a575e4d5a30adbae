package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcncl/gotoon/internal/config"
	"github.com/mcncl/gotoon/internal/models"
	"github.com/mcncl/gotoon/toon"
)

// Stats describes the shape of a document and how much TOON saves over compact JSON.
type Stats struct {
	Objects    int
	Arrays     int
	Primitives int
	// Fields counts key/value pairs across all objects
	Fields   int
	MaxDepth int
	Layouts  map[toon.Layout]int

	JSONBytes int
	TOONBytes int
}

// Savings returns the share of compact JSON bytes saved by TOON, in percent.
// It is negative when TOON is larger.
func (s Stats) Savings() float64 {
	if s.JSONBytes == 0 {
		return 0
	}
	return float64(s.JSONBytes-s.TOONBytes) / float64(s.JSONBytes) * 100
}

// Analyzer walks documents and measures their encodings
type Analyzer struct {
	// config holds the encode options used to measure TOON output
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		config: config.NewConfig(), // Use default config if none provided
	}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{config: cfg}
}

// Analyze counts the values in doc and measures its compact JSON and TOON sizes
func (a *Analyzer) Analyze(doc models.Document) (Stats, error) {
	stats := Stats{Layouts: make(map[toon.Layout]int)}
	a.walk(doc.Root, 0, &stats)

	jsonBytes, err := compactJSON(doc.Root)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to measure JSON: %w", err)
	}
	stats.JSONBytes = len(jsonBytes)

	opts := a.config.EncodeOptions()
	encoded, err := toon.EncodeWithOptions(doc.Root, &opts)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to measure TOON: %w", err)
	}
	stats.TOONBytes = len(encoded)

	return stats, nil
}

// walk records v at the given depth. The root container sits at depth 1, so a
// document holding only a primitive has depth 0.
func (a *Analyzer) walk(v any, depth int, stats *Stats) {
	switch val := v.(type) {
	case *toon.Object:
		stats.Objects++
		stats.Fields += val.Len()
		a.enter(depth+1, stats)
		for _, f := range val.Fields() {
			a.walk(f.Value, depth+1, stats)
		}
	case []any:
		stats.Arrays++
		stats.Layouts[toon.ArrayLayout(val)]++
		a.enter(depth+1, stats)
		for _, item := range val {
			a.walk(item, depth+1, stats)
		}
	default:
		stats.Primitives++
	}
}

func (a *Analyzer) enter(depth int, stats *Stats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}
}

func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
