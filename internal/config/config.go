package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/gotoon/toon"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for gotoon
type Config struct {
	Encode EncodeConfig `yaml:"encode"`
	Decode DecodeConfig `yaml:"decode"`
	Keys   KeysConfig   `yaml:"keys"`
	Output OutputConfig `yaml:"output"`
	Dev    DevConfig    `yaml:"dev"`
}

// EncodeConfig controls TOON output
type EncodeConfig struct {
	Indent       int    `yaml:"indent"`
	Delimiter    string `yaml:"delimiter"`   // comma, tab or pipe
	KeyFolding   string `yaml:"key_folding"` // off or safe
	FlattenDepth int    `yaml:"flatten_depth"`
}

// DecodeConfig controls TOON parsing
type DecodeConfig struct {
	Indent      int    `yaml:"indent"`
	Strict      bool   `yaml:"strict"`
	ExpandPaths string `yaml:"expand_paths"` // off or safe
}

// KeysConfig rewrites object keys before encoding
type KeysConfig struct {
	Case     string            `yaml:"case"`
	Mappings map[string]string `yaml:"mappings"`
	Skip     []SkipRule        `yaml:"skip"`
}

// SkipRule drops every key matching Pattern
type SkipRule struct {
	Pattern string `yaml:"pattern"`
	Comment string `yaml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	JSONIndent int  `yaml:"json_indent"`
	Headers    bool `yaml:"headers"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Key case names accepted in keys.case
const (
	CaseNone           = "none"
	CaseSnake          = "snake"
	CaseCamel          = "camel"
	CaseLowerCamel     = "lower_camel"
	CaseKebab          = "kebab"
	CaseScreamingSnake = "screaming_snake"
)

var delimiters = map[string]toon.Delimiter{
	"comma": toon.Comma,
	"tab":   toon.Tab,
	"pipe":  toon.Pipe,
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Encode: EncodeConfig{
			Indent:     2,
			Delimiter:  "comma",
			KeyFolding: string(toon.FoldingOff),
		},
		Decode: DecodeConfig{
			Indent:      2,
			Strict:      true,
			ExpandPaths: string(toon.ExpansionOff),
		},
		Keys: KeysConfig{
			Case:     CaseNone,
			Mappings: make(map[string]string),
			Skip:     []SkipRule{},
		},
		Output: OutputConfig{
			JSONIndent: 2,
			Headers:    true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".gotoon.yml", ".gotoon.yaml", "gotoon.yml", "gotoon.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Keys.Skip {
		rule := &c.Keys.Skip[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid skip pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Encode.Indent < 1 {
		return fmt.Errorf("encode.indent must be at least 1, got %d", c.Encode.Indent)
	}
	if c.Decode.Indent < 1 {
		return fmt.Errorf("decode.indent must be at least 1, got %d", c.Decode.Indent)
	}
	if c.Encode.FlattenDepth < 0 {
		return fmt.Errorf("encode.flatten_depth must not be negative, got %d", c.Encode.FlattenDepth)
	}
	if c.Output.JSONIndent < 0 {
		return fmt.Errorf("output.json_indent must not be negative, got %d", c.Output.JSONIndent)
	}
	if _, err := ParseDelimiter(c.Encode.Delimiter); err != nil {
		return err
	}
	switch toon.KeyFolding(c.Encode.KeyFolding) {
	case toon.FoldingOff, toon.FoldingSafe:
	default:
		return fmt.Errorf("unknown key folding mode '%s' (want off or safe)", c.Encode.KeyFolding)
	}
	switch toon.PathExpansion(c.Decode.ExpandPaths) {
	case toon.ExpansionOff, toon.ExpansionSafe:
	default:
		return fmt.Errorf("unknown path expansion mode '%s' (want off or safe)", c.Decode.ExpandPaths)
	}
	switch c.Keys.Case {
	case "", CaseNone, CaseSnake, CaseCamel, CaseLowerCamel, CaseKebab, CaseScreamingSnake:
	default:
		return fmt.Errorf("unknown key case '%s'", c.Keys.Case)
	}
	return nil
}

// ParseDelimiter maps a delimiter name (comma, tab, pipe) to its TOON delimiter
func ParseDelimiter(name string) (toon.Delimiter, error) {
	d, ok := delimiters[name]
	if !ok {
		return "", fmt.Errorf("unknown delimiter '%s' (want comma, tab or pipe)", name)
	}
	return d, nil
}

// MatchesKey checks if this skip rule matches the given key
func (sr *SkipRule) MatchesKey(key string) bool {
	if sr.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(sr.Pattern)
		if err != nil {
			return false
		}
		sr.regex = regex
	}
	return sr.regex.MatchString(key)
}

// ShouldSkipKey checks if a key is dropped by one of the skip rules
func (c *Config) ShouldSkipKey(key string) bool {
	for i := range c.Keys.Skip {
		if c.Keys.Skip[i].MatchesKey(key) {
			return true
		}
	}
	return false
}

// KeyName returns the output name for a key, applying mappings and then the case rule
func (c *Config) KeyName(key string) string {
	if mapped, exists := c.Keys.Mappings[key]; exists {
		return mapped
	}

	switch c.Keys.Case {
	case CaseSnake:
		return strcase.ToSnake(key)
	case CaseCamel:
		return strcase.ToCamel(key)
	case CaseLowerCamel:
		return strcase.ToLowerCamel(key)
	case CaseKebab:
		return strcase.ToKebab(key)
	case CaseScreamingSnake:
		return strcase.ToScreamingSnake(key)
	}
	return key
}

// RewritesKeys reports whether any key rule is configured
func (c *Config) RewritesKeys() bool {
	return (c.Keys.Case != "" && c.Keys.Case != CaseNone) || len(c.Keys.Mappings) > 0 || len(c.Keys.Skip) > 0
}

// EncodeOptions returns the TOON encoder options for this config
func (c *Config) EncodeOptions() toon.EncodeOptions {
	delimiter, err := ParseDelimiter(c.Encode.Delimiter)
	if err != nil {
		delimiter = toon.Comma
	}
	return toon.EncodeOptions{
		Indent:       c.Encode.Indent,
		Delimiter:    delimiter,
		KeyFolding:   toon.KeyFolding(c.Encode.KeyFolding),
		FlattenDepth: c.Encode.FlattenDepth,
	}
}

// DecodeOptions returns the TOON decoder options for this config
func (c *Config) DecodeOptions() toon.DecodeOptions {
	return toon.DecodeOptions{
		Indent:      c.Decode.Indent,
		Strict:      c.Decode.Strict,
		ExpandPaths: toon.PathExpansion(c.Decode.ExpandPaths),
	}
}

// Overrides holds values given on the command line. Zero values leave the
// config untouched.
type Overrides struct {
	Indent       int
	Delimiter    string
	KeyFolding   string
	FlattenDepth int
	DecodeIndent int
	Lenient      bool
	ExpandPaths  string
	JSONIndent   int
	Debug        bool
}

// Apply copies every non-zero override into the config
func (c *Config) Apply(o Overrides) {
	if o.Indent > 0 {
		c.Encode.Indent = o.Indent
	}
	if o.Delimiter != "" {
		c.Encode.Delimiter = o.Delimiter
	}
	if o.KeyFolding != "" {
		c.Encode.KeyFolding = o.KeyFolding
	}
	if o.FlattenDepth > 0 {
		c.Encode.FlattenDepth = o.FlattenDepth
	}
	if o.DecodeIndent > 0 {
		c.Decode.Indent = o.DecodeIndent
	}
	if o.Lenient {
		c.Decode.Strict = false
	}
	if o.ExpandPaths != "" {
		c.Decode.ExpandPaths = o.ExpandPaths
	}
	if o.JSONIndent > 0 {
		c.Output.JSONIndent = o.JSONIndent
	}
	if o.Debug {
		c.Dev.Debug = true
	}
}

// LoadConfigWithCLI loads the config file, if any, and applies CLI overrides on top.
// An empty configPath falls back to FindConfigFile.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg := NewConfig()
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.Apply(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
