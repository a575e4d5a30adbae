package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mcncl/gotoon/internal/analyzer"
	"github.com/mcncl/gotoon/internal/config"
	"github.com/mcncl/gotoon/toon"
)

var (
	colorCyan = lipgloss.Color("36")  // Teal - section titles
	colorGray = lipgloss.Color("245") // Gray - labels
	colorDim  = lipgloss.Color("240") // Dim gray - secondary values
)

// statLabelWidth pads stat labels so values line up
const statLabelWidth = 12

// Formatter renders values and section headers for one output stream.
// Styles are bound to that stream, so output piped to a file or another
// program carries no escape codes.
type Formatter struct {
	jsonIndent int
	headers    bool

	title lipgloss.Style
	label lipgloss.Style
	dim   lipgloss.Style
}

// NewFormatter creates a Formatter for w with default output settings
func NewFormatter(w io.Writer) *Formatter {
	return NewFormatterWithConfig(w, config.NewConfig())
}

// NewFormatterWithConfig creates a Formatter for w using the output section of cfg
func NewFormatterWithConfig(w io.Writer, cfg *config.Config) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		jsonIndent: cfg.Output.JSONIndent,
		headers:    cfg.Output.Headers,
		title:      r.NewStyle().Bold(true).Foreground(colorCyan),
		label:      r.NewStyle().Foreground(colorGray).Width(statLabelWidth),
		dim:        r.NewStyle().Foreground(colorDim),
	}
}

// JSON renders v as indented JSON without a trailing newline. Objects keep their
// key order and HTML characters are written as is. An indent of zero gives
// compact output.
func (f *Formatter) JSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.jsonIndent > 0 {
		enc.SetIndent("", strings.Repeat(" ", f.jsonIndent))
	}
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to render JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Header returns the section header for a format name, e.g. "--- TOON Format ---"
func (f *Formatter) Header(name string) string {
	return f.title.Render(fmt.Sprintf("--- %s ---", name))
}

// Section returns a header line followed by body. Without headers only body is returned.
func (f *Formatter) Section(name, body string) string {
	if !f.headers {
		return body + "\n"
	}
	return f.Header(name) + "\n" + body + "\n"
}

// Stats renders a label/value table for stats
func (f *Formatter) Stats(stats analyzer.Stats) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(f.label.Render(label) + " " + value + "\n")
	}

	row("objects", fmt.Sprintf("%d (%d fields)", stats.Objects, stats.Fields))
	arrays := fmt.Sprintf("%d", stats.Arrays)
	if layouts := layoutSummary(stats.Layouts); layouts != "" {
		arrays += " " + f.dim.Render("("+layouts+")")
	}
	row("arrays", arrays)
	row("primitives", fmt.Sprintf("%d", stats.Primitives))
	row("max depth", fmt.Sprintf("%d", stats.MaxDepth))
	row("JSON bytes", fmt.Sprintf("%d", stats.JSONBytes))
	row("TOON bytes", fmt.Sprintf("%d", stats.TOONBytes))
	row("savings", fmt.Sprintf("%.1f%%", stats.Savings()))

	return b.String()
}

// layoutSummary lists non-zero layout counts in layout order: "inline 2, tabular 1"
func layoutSummary(layouts map[toon.Layout]int) string {
	var parts []string
	for l := toon.LayoutEmpty; l <= toon.LayoutList; l++ {
		if n := layouts[l]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", l, n))
		}
	}
	return strings.Join(parts, ", ")
}
