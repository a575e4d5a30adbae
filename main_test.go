package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/mcncl/gotoon/internal/errors"
	"github.com/mcncl/gotoon/toon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoJSON = `{
  "users": [
    {
      "id": 1,
      "name": "Alice",
      "role": "admin"
    },
    {
      "id": 2,
      "name": "Bob",
      "role": "user"
    }
  ]
}`

const demoTOON = "users[2]{id,name,role}:\n  1,Alice,admin\n  2,Bob,user"

type testIO struct {
	ctx    *Context
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestContext returns a Context reading stdin and using an isolated config file
func newTestContext(t *testing.T, stdin, configYAML string) testIO {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), ".gotoon.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return testIO{
		ctx: &Context{
			ConfigPath: configPath,
			Stdin:      strings.NewReader(stdin),
			Stdout:     stdout,
			Stderr:     stderr,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestEncode_FromFile(t *testing.T) {
	tio := newTestContext(t, "", "")
	cmd := &EncodeCmd{Input: writeInput(t, "users.json", `{"users":[{"id":1,"name":"Alice","role":"admin"},{"id":2,"name":"Bob","role":"user"}]}`)}

	require.NoError(t, cmd.Run(tio.ctx))
	assert.Equal(t, demoTOON+"\n", tio.stdout.String())
}

func TestEncode_FromStdin(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		input    string
		expected string
	}{
		{"json default", "", `{"a": 1, "b": [true, null]}`, "a: 1\nb[2]: true,null\n"},
		{"yaml", "yaml", "a: 1\nb:\n  - x\n  - y\n", "a: 1\nb[2]: x,y\n"},
		{"toml", "toml", "a = 1\n[b]\nc = \"d\"\n", "a: 1\nb:\n  c: d\n"},
		{"toon", "toon", "a: 1\n", "a: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := newTestContext(t, tt.input, "")
			cmd := &EncodeCmd{From: tt.from}
			require.NoError(t, cmd.Run(tio.ctx))
			assert.Equal(t, tt.expected, tio.stdout.String())
		})
	}
}

func TestEncode_Options(t *testing.T) {
	input := `{"data": {"meta": {"items": ["a", "b"]}}, "rows": [{"x": 1, "y": 2}]}`

	tio := newTestContext(t, input, "")
	cmd := &EncodeCmd{Delimiter: "pipe", KeyFolding: "safe", Indent: 4}
	require.NoError(t, cmd.Run(tio.ctx))

	expected := "data.meta.items[2|]: a|b\nrows[1|]{x|y}:\n    1|2\n"
	assert.Equal(t, expected, tio.stdout.String())
}

func TestEncode_FlattenDepth(t *testing.T) {
	tio := newTestContext(t, `{"a": {"b": {"c": 1}}}`, "")
	cmd := &EncodeCmd{KeyFolding: "safe", FlattenDepth: 2}
	require.NoError(t, cmd.Run(tio.ctx))
	assert.Equal(t, "a.b:\n  c: 1\n", tio.stdout.String())
}

func TestEncode_Compare(t *testing.T) {
	tio := newTestContext(t, `{"users":[{"id":1,"name":"Alice","role":"admin"},{"id":2,"name":"Bob","role":"user"}]}`, "")
	cmd := &EncodeCmd{Compare: true}
	require.NoError(t, cmd.Run(tio.ctx))

	expected := "--- JSON Format ---\n" + demoJSON + "\n\n--- TOON Format ---\n" + demoTOON + "\n"
	assert.Equal(t, expected, tio.stdout.String())
}

func TestEncode_Stats(t *testing.T) {
	tio := newTestContext(t, `{"tags": ["a", "b", "c"]}`, "")
	cmd := &EncodeCmd{Stats: true}
	require.NoError(t, cmd.Run(tio.ctx))

	assert.Equal(t, "tags[3]: a,b,c\n", tio.stdout.String())
	assert.Contains(t, tio.stderr.String(), "arrays       1 (inline 1)")
	assert.Contains(t, tio.stderr.String(), "savings")
}

func TestEncode_ToOutputFile(t *testing.T) {
	tio := newTestContext(t, `{"id": 1, "email": "test@example.com"}`, "")
	outPath := filepath.Join(t.TempDir(), "out.toon")

	cmd := &EncodeCmd{Output: outPath}
	require.NoError(t, cmd.Run(tio.ctx))

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "id: 1\nemail: test@example.com\n", string(content))
	assert.Empty(t, tio.stdout.String())
	assert.Contains(t, tio.stderr.String(), "Output written")
}

func TestEncode_OutputFileError(t *testing.T) {
	tio := newTestContext(t, `{"a": 1}`, "")
	cmd := &EncodeCmd{Output: filepath.Join(t.TempDir(), "missing", "out.toon")}

	err := cmd.Run(tio.ctx)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeOutput}))
}

func TestEncode_ConfigFileKeyRules(t *testing.T) {
	configYAML := `
keys:
  case: snake
  mappings:
    userID: id
  skip:
    - pattern: "^internal"
      comment: "drop internal fields"
encode:
  delimiter: tab
`
	tio := newTestContext(t, `{"userID": 7, "firstName": "Ann", "internalNote": "x", "tagList": ["a", "b"]}`, configYAML)
	require.NoError(t, (&EncodeCmd{}).Run(tio.ctx))

	assert.Equal(t, "id: 7\nfirst_name: Ann\ntag_list[2\t]: a\tb\n", tio.stdout.String())
}

func TestEncode_Errors(t *testing.T) {
	t.Run("empty stdin", func(t *testing.T) {
		tio := newTestContext(t, "  \n", "")
		err := (&EncodeCmd{}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrEmptyInput))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tio := newTestContext(t, `{"name": }`, "")
		err := (&EncodeCmd{}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidJSON))
	})

	t.Run("unknown format", func(t *testing.T) {
		tio := newTestContext(t, `a,b`, "")
		err := (&EncodeCmd{From: "csv"}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrUnsupportedFormat))
	})

	t.Run("missing file", func(t *testing.T) {
		tio := newTestContext(t, "", "")
		err := (&EncodeCmd{Input: filepath.Join(t.TempDir(), "nope.json")}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
	})

	t.Run("bad delimiter", func(t *testing.T) {
		tio := newTestContext(t, `{"a": 1}`, "")
		err := (&EncodeCmd{Delimiter: "semicolon"}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
		assert.Contains(t, errors.UserFriendlyError(err), "unknown delimiter 'semicolon'")
	})

	t.Run("bad config file", func(t *testing.T) {
		tio := newTestContext(t, `{"a": 1}`, "encode:\n  key_folding: always\n")
		err := (&EncodeCmd{}).Run(tio.ctx)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeConfig}))
	})
}

func TestDecode_ToJSON(t *testing.T) {
	tio := newTestContext(t, demoTOON+"\n", "")
	require.NoError(t, (&DecodeCmd{}).Run(tio.ctx))
	assert.Equal(t, demoJSON+"\n", tio.stdout.String())
}

func TestDecode_RootPrimitive(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello\n", "\"hello\"\n"},
		{"42\n", "42\n"},
		{"null\n", "null\n"},
		{"\"a: b\"\n", "\"a: b\"\n"},
	}

	for _, tt := range tests {
		tio := newTestContext(t, tt.input, "")
		require.NoError(t, (&DecodeCmd{}).Run(tio.ctx), "input %q", tt.input)
		assert.Equal(t, tt.expected, tio.stdout.String())
	}
}

func TestDecode_FromFileWithJSONIndent(t *testing.T) {
	tio := newTestContext(t, "", "")
	cmd := &DecodeCmd{Input: writeInput(t, "doc.toon", "a: 1\n"), JSONIndent: 4}
	require.NoError(t, cmd.Run(tio.ctx))
	assert.Equal(t, "{\n    \"a\": 1\n}\n", tio.stdout.String())
}

func TestDecode_StrictAndLenient(t *testing.T) {
	input := "items[3]: a,b\n"

	tio := newTestContext(t, input, "")
	err := (&DecodeCmd{}).Run(tio.ctx)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, toon.ErrCountMismatch))
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeDecode}))

	tio = newTestContext(t, input, "")
	require.NoError(t, (&DecodeCmd{Lenient: true}).Run(tio.ctx))
	assert.Equal(t, "{\n  \"items\": [\n    \"a\",\n    \"b\"\n  ]\n}\n", tio.stdout.String())
}

func TestDecode_ExpandPaths(t *testing.T) {
	tio := newTestContext(t, "a.b.c: 1\na.b.d: 2\n", "")
	require.NoError(t, (&DecodeCmd{ExpandPaths: "safe", JSONIndent: 1}).Run(tio.ctx))
	assert.Equal(t, "{\n \"a\": {\n  \"b\": {\n   \"c\": 1,\n   \"d\": 2\n  }\n }\n}\n", tio.stdout.String())
}

func TestDecode_IndentFromConfig(t *testing.T) {
	tio := newTestContext(t, "a:\n    b: 1\n", "decode:\n  indent: 4\n")
	require.NoError(t, (&DecodeCmd{JSONIndent: 1}).Run(tio.ctx))
	assert.Equal(t, "{\n \"a\": {\n  \"b\": 1\n }\n}\n", tio.stdout.String())
}

func TestDemo_Output(t *testing.T) {
	tio := newTestContext(t, "", "")
	require.NoError(t, (&DemoCmd{}).Run(tio.ctx))

	expected := "--- JSON Format ---\n" + demoJSON + "\n\n--- TOON Format ---\n" + demoTOON + "\n"
	assert.Equal(t, expected, tio.stdout.String())
}

func TestDemo_Verify(t *testing.T) {
	tio := newTestContext(t, "", "")
	require.NoError(t, (&DemoCmd{Verify: true}).Run(tio.ctx))

	expected := "--- JSON Format ---\n" + demoJSON + "\n\n--- TOON Format ---\n" + demoTOON + "\n" +
		"\n--- Decoded Data ---\n" + demoJSON + "\n" +
		"\nVerification successful: Original and decoded data match.\n"
	assert.Equal(t, expected, tio.stdout.String())
}

func TestDemo_VerifyWithConfiguredEncoding(t *testing.T) {
	tio := newTestContext(t, "", "encode:\n  indent: 4\n  delimiter: pipe\n")
	require.NoError(t, (&DemoCmd{Verify: true}).Run(tio.ctx))

	out := tio.stdout.String()
	assert.Contains(t, out, "users[2|]{id|name|role}:\n    1|Alice|admin\n")
	assert.Contains(t, out, "Verification successful")
}

func TestDebugLogging(t *testing.T) {
	tio := newTestContext(t, `{"a": 1}`, "")
	tio.ctx.Debug = true
	require.NoError(t, (&EncodeCmd{}).Run(tio.ctx))

	assert.Contains(t, tio.stderr.String(), "parsed input")
	assert.Contains(t, tio.stderr.String(), "encoded TOON")
}

func TestReadStdin_NotATerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("x")))

	data, err := readStdin(&Context{Stdin: strings.NewReader("abc")}, false)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestCLI_Commands(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	parser, err := kong.New(&CLI, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-i", "in.json", "--delimiter", "tab", "--stats"})
	require.NoError(t, err)
	assert.Equal(t, "encode", ctx.Selected().Name)
	assert.True(t, strings.HasSuffix(CLI.Encode.Input, "in.json"))
	assert.Equal(t, "tab", CLI.Encode.Delimiter)
	assert.True(t, CLI.Encode.Stats)

	ctx, err = parser.Parse([]string{"--debug", "decode", "--lenient", "--expand-paths", "safe", "--json-indent", "4"})
	require.NoError(t, err)
	assert.Equal(t, "decode", ctx.Command())
	assert.True(t, CLI.Debug)
	assert.True(t, CLI.Decode.Lenient)
	assert.Equal(t, "safe", CLI.Decode.ExpandPaths)
	assert.Equal(t, 4, CLI.Decode.JSONIndent)

	ctx, err = parser.Parse([]string{"demo", "--verify"})
	require.NoError(t, err)
	assert.Equal(t, "demo", ctx.Command())
	assert.True(t, CLI.Demo.Verify)
}
