package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/gotoon/toon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yml")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 2, cfg.Encode.Indent)
	assert.Equal(t, "comma", cfg.Encode.Delimiter)
	assert.Equal(t, "off", cfg.Encode.KeyFolding)
	assert.Equal(t, 0, cfg.Encode.FlattenDepth)
	assert.Equal(t, 2, cfg.Decode.Indent)
	assert.True(t, cfg.Decode.Strict)
	assert.Equal(t, "off", cfg.Decode.ExpandPaths)
	assert.Equal(t, CaseNone, cfg.Keys.Case)
	assert.Equal(t, 2, cfg.Output.JSONIndent)
	assert.True(t, cfg.Output.Headers)
	assert.False(t, cfg.Dev.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
encode:
  indent: 4
  delimiter: pipe
  key_folding: safe
  flatten_depth: 3
decode:
  strict: false
  expand_paths: safe
keys:
  case: snake
  mappings:
    "userId": "uid"
  skip:
    - pattern: "^_"
      comment: "private fields"
output:
  json_indent: 4
  headers: false
dev:
  debug: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Encode.Indent)
	assert.Equal(t, "pipe", cfg.Encode.Delimiter)
	assert.Equal(t, "safe", cfg.Encode.KeyFolding)
	assert.Equal(t, 3, cfg.Encode.FlattenDepth)
	assert.Equal(t, 2, cfg.Decode.Indent) // Default kept
	assert.False(t, cfg.Decode.Strict)
	assert.Equal(t, "safe", cfg.Decode.ExpandPaths)
	assert.Equal(t, CaseSnake, cfg.Keys.Case)
	assert.Equal(t, "uid", cfg.Keys.Mappings["userId"])
	require.Len(t, cfg.Keys.Skip, 1)
	assert.Equal(t, "private fields", cfg.Keys.Skip[0].Comment)
	assert.Equal(t, 4, cfg.Output.JSONIndent)
	assert.False(t, cfg.Output.Headers)
	assert.True(t, cfg.Dev.Debug)

	assert.Equal(t, toon.EncodeOptions{
		Indent:       4,
		Delimiter:    toon.Pipe,
		KeyFolding:   toon.FoldingSafe,
		FlattenDepth: 3,
	}, cfg.EncodeOptions())
	assert.Equal(t, toon.DecodeOptions{
		Indent:      2,
		Strict:      false,
		ExpandPaths: toon.ExpansionSafe,
	}, cfg.DecodeOptions())
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, `
encode:
  delimiter: [unclosed array
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"delimiter", "encode:\n  delimiter: semicolon\n", "unknown delimiter 'semicolon'"},
		{"key folding", "encode:\n  key_folding: always\n", "unknown key folding mode 'always'"},
		{"expand paths", "decode:\n  expand_paths: deep\n", "unknown path expansion mode 'deep'"},
		{"indent", "encode:\n  indent: 0\n", "encode.indent must be at least 1"},
		{"case", "keys:\n  case: title\n", "unknown key case 'title'"},
		{"skip pattern", "keys:\n  skip:\n    - pattern: \"[bad\"\n", "invalid skip pattern '[bad'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err := os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, "project", ".gotoon.yml")
	err = os.WriteFile(configPath, []byte("encode:\n  indent: 3\n"), 0o644)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Should find the file in a parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), "indent: 3")
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	assert.Empty(t, FindConfigFile())
}

func TestSkipRule_MatchesKey(t *testing.T) {
	rule := SkipRule{Pattern: "^_|password"}

	assert.True(t, rule.MatchesKey("_internal"))
	assert.True(t, rule.MatchesKey("user_password"))
	assert.False(t, rule.MatchesKey("username"))
}

func TestSkipRule_InvalidPattern(t *testing.T) {
	rule := SkipRule{Pattern: "[invalid regex"}

	// Should not panic and should return false for invalid regex
	assert.False(t, rule.MatchesKey("anything"))
}

func TestConfig_KeyName(t *testing.T) {
	tests := []struct {
		keyCase  string
		input    string
		expected string
	}{
		{CaseNone, "userName", "userName"},
		{CaseSnake, "userName", "user_name"},
		{CaseCamel, "user_name", "UserName"},
		{CaseLowerCamel, "user_name", "userName"},
		{CaseKebab, "userName", "user-name"},
		{CaseScreamingSnake, "userName", "USER_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.keyCase, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Keys.Case = tt.keyCase
			assert.Equal(t, tt.expected, cfg.KeyName(tt.input))
		})
	}
}

func TestConfig_KeyNameMappingsTakePrecedence(t *testing.T) {
	cfg := NewConfig()
	cfg.Keys.Case = CaseSnake
	cfg.Keys.Mappings["userID"] = "uid"

	assert.Equal(t, "uid", cfg.KeyName("userID"))
	assert.Equal(t, "first_name", cfg.KeyName("firstName"))
}

func TestConfig_RewritesKeys(t *testing.T) {
	cfg := NewConfig()
	assert.False(t, cfg.RewritesKeys())

	cfg.Keys.Skip = append(cfg.Keys.Skip, SkipRule{Pattern: "x"})
	assert.True(t, cfg.RewritesKeys())
	assert.True(t, cfg.ShouldSkipKey("xyz"))
	assert.False(t, cfg.ShouldSkipKey("abc"))
}

func TestParseDelimiter(t *testing.T) {
	d, err := ParseDelimiter("tab")
	require.NoError(t, err)
	assert.Equal(t, toon.Tab, d)

	_, err = ParseDelimiter(";")
	assert.Error(t, err)
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, `
encode:
  indent: 4
  delimiter: tab
decode:
  expand_paths: safe
`)

	cfg, err := LoadConfigWithCLI(path, Overrides{
		Delimiter:  "pipe",
		KeyFolding: "safe",
		Lenient:    true,
		Debug:      true,
	})
	require.NoError(t, err)

	// Precedence: CLI > config file > defaults
	assert.Equal(t, "pipe", cfg.Encode.Delimiter)   // From CLI
	assert.Equal(t, "safe", cfg.Encode.KeyFolding)  // From CLI
	assert.False(t, cfg.Decode.Strict)              // From CLI
	assert.True(t, cfg.Dev.Debug)                   // From CLI
	assert.Equal(t, 4, cfg.Encode.Indent)           // From config file
	assert.Equal(t, "safe", cfg.Decode.ExpandPaths) // From config file
	assert.Equal(t, 2, cfg.Output.JSONIndent)       // Default value
}

func TestLoadConfigWithPrecedence_InvalidOverride(t *testing.T) {
	_, err := LoadConfigWithCLI(writeConfig(t, "dev:\n  debug: false\n"), Overrides{Delimiter: "space"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown delimiter 'space'")
}
