package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/mcncl/gotoon/internal/analyzer"
	"github.com/mcncl/gotoon/internal/config"
	"github.com/mcncl/gotoon/internal/errors"
	"github.com/mcncl/gotoon/internal/formatter"
	"github.com/mcncl/gotoon/internal/logging"
	"github.com/mcncl/gotoon/internal/models"
	"github.com/mcncl/gotoon/internal/parser"
	"github.com/mcncl/gotoon/internal/samples"
	"github.com/mcncl/gotoon/toon"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are flags shared by every command
type Globals struct {
	Config  string           `help:"Path to config file. If not specified, searches for .gotoon.yml upward from the working directory." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
var CLI struct {
	Globals

	Encode EncodeCmd `cmd:"" default:"withargs" help:"Encode a JSON, YAML or TOML document as TOON."`
	Decode DecodeCmd `cmd:"" help:"Decode a TOON document into JSON."`
	Demo   DemoCmd   `cmd:"" help:"Print a sample document as JSON and as TOON."`
}

// Context holds the runtime context shared by commands
type Context struct {
	ConfigPath string
	Debug      bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// EncodeCmd converts an input document to TOON
type EncodeCmd struct {
	Input        string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output       string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	From         string `help:"Input format: json, yaml, toml or toon. Defaults to the file extension, then JSON." short:"f"`
	Indent       int    `help:"Spaces per indentation level."`
	Delimiter    string `help:"Array delimiter: comma, tab or pipe."`
	KeyFolding   string `help:"Key folding: off or safe." name:"key-folding"`
	FlattenDepth int    `help:"Maximum segments in a folded key (0 for no limit)." name:"flatten-depth"`
	Compare      bool   `help:"Print the JSON and TOON forms under section headers."`
	Stats        bool   `help:"Print encoding statistics to stderr."`
	Interactive  bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// DecodeCmd converts a TOON document to JSON
type DecodeCmd struct {
	Input       string `help:"Path to input TOON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Indent      int    `help:"Spaces per indentation level in the input."`
	Lenient     bool   `help:"Accept count mismatches, blank lines in arrays and irregular indentation."`
	ExpandPaths string `help:"Dotted key expansion: off or safe." name:"expand-paths"`
	JSONIndent  int    `help:"Spaces per indentation level in the JSON output." name:"json-indent"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// DemoCmd prints the sample users document
type DemoCmd struct {
	Verify bool `help:"Decode the TOON output again and check it matches the original."`
}

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("gotoon"),
		kong.Description("A tool to convert JSON, YAML and TOML to Token-Oriented Object Notation and back"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("gotoon version %s", Version)},
	)

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	// Without arguments a terminal user gets the paste prompt
	if len(os.Args) == 1 {
		CLI.Encode.Interactive = true
	}

	err = ctx.Run(&Context{
		ConfigPath: CLI.Config,
		Debug:      CLI.Debug,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		// Show help on error
		fmt.Fprintf(os.Stderr, "\nFor help, run: gotoon --help\n")

		os.Exit(1)
	}
}

// setup loads the configuration with command overrides applied and builds the logger
func (ctx *Context) setup(overrides config.Overrides) (*config.Config, *log.Logger, error) {
	overrides.Debug = overrides.Debug || ctx.Debug
	cfg, err := config.LoadConfigWithCLI(ctx.ConfigPath, overrides)
	if err != nil {
		return nil, nil, errors.NewConfigError("failed to load configuration", err)
	}
	logger := logging.New(ctx.Stderr, cfg.Dev.Debug)
	logger.Debug("configuration loaded", "path", ctx.ConfigPath, "indent", cfg.Encode.Indent, "delimiter", cfg.Encode.Delimiter)
	return cfg, logger, nil
}

func (c *EncodeCmd) overrides() config.Overrides {
	return config.Overrides{
		Indent:       c.Indent,
		Delimiter:    c.Delimiter,
		KeyFolding:   c.KeyFolding,
		FlattenDepth: c.FlattenDepth,
	}
}

// Run executes the encode pipeline: parse, rewrite keys, encode, write
func (c *EncodeCmd) Run(ctx *Context) error {
	cfg, logger, err := ctx.setup(c.overrides())
	if err != nil {
		return err
	}

	var format models.Format
	if c.From != "" {
		format, err = models.ParseFormat(c.From)
		if err != nil {
			return errors.NewInputError(err.Error(), errors.ErrUnsupportedFormat)
		}
	}

	// 1. Parse input
	progress := logging.NewProgress(logger)
	doc, err := c.parseInput(ctx, format)
	if err != nil {
		return err
	}
	progress.Done("parsed input", "format", doc.Format)

	// 2. Apply key rules
	if cfg.RewritesKeys() {
		doc.Root = models.RewriteKeys(doc.Root, cfg)
		logger.Debug("rewrote keys", "case", cfg.Keys.Case, "mappings", len(cfg.Keys.Mappings), "skip", len(cfg.Keys.Skip))
	}

	// 3. Encode
	progress = logging.NewProgress(logger)
	opts := cfg.EncodeOptions()
	encoded, err := toon.EncodeWithOptions(doc.Root, &opts)
	if err != nil {
		return errors.NewEncodeError("failed to encode TOON", err)
	}
	progress.Done("encoded TOON", "bytes", len(encoded))

	// 4. Output the result
	err = writeOutput(ctx, c.Output, logger, func(w io.Writer) error {
		if !c.Compare {
			_, err := fmt.Fprintln(w, encoded)
			return err
		}
		fm := formatter.NewFormatterWithConfig(w, cfg)
		jsonText, err := fm.JSON(doc.Root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, fm.Section("JSON Format", jsonText)+"\n"+fm.Section("TOON Format", encoded))
		return err
	})
	if err != nil {
		return err
	}

	// 5. Statistics
	if c.Stats {
		stats, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(doc)
		if err != nil {
			return errors.NewEncodeError("failed to compute statistics", err)
		}
		fmt.Fprint(ctx.Stderr, formatter.NewFormatterWithConfig(ctx.Stderr, cfg).Stats(stats))
	}
	return nil
}

// parseInput reads the document from file or stdin
func (c *EncodeCmd) parseInput(ctx *Context, format models.Format) (models.Document, error) {
	if c.Input != "" {
		// Parse from file
		return parser.ParseFile(c.Input, format)
	}

	data, err := readStdin(ctx, c.Interactive)
	if err != nil {
		return models.Document{}, err
	}
	return parser.Parse(bytes.NewReader(data), format)
}

func (c *DecodeCmd) overrides() config.Overrides {
	return config.Overrides{
		DecodeIndent: c.Indent,
		Lenient:      c.Lenient,
		ExpandPaths:  c.ExpandPaths,
		JSONIndent:   c.JSONIndent,
	}
}

// Run decodes TOON input and writes it as JSON
func (c *DecodeCmd) Run(ctx *Context) error {
	cfg, logger, err := ctx.setup(c.overrides())
	if err != nil {
		return err
	}

	var data []byte
	if c.Input != "" {
		data, err = parser.ReadFile(c.Input)
	} else {
		data, err = readStdin(ctx, c.Interactive)
	}
	if err != nil {
		return err
	}

	progress := logging.NewProgress(logger)
	root, err := parser.ParseTOON(string(data), cfg.DecodeOptions())
	if err != nil {
		return err
	}
	progress.Done("decoded TOON", "strict", cfg.Decode.Strict, "expand_paths", cfg.Decode.ExpandPaths)

	return writeOutput(ctx, c.Output, logger, func(w io.Writer) error {
		jsonText, err := formatter.NewFormatterWithConfig(w, cfg).JSON(root)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, jsonText)
		return err
	})
}

// Run prints the sample document as JSON and TOON, optionally checking the round trip
func (c *DemoCmd) Run(ctx *Context) error {
	cfg, logger, err := ctx.setup(config.Overrides{})
	if err != nil {
		return err
	}

	data := samples.Demo()
	fm := formatter.NewFormatterWithConfig(ctx.Stdout, cfg)

	jsonText, err := fm.JSON(data)
	if err != nil {
		return errors.NewOutputError("failed to render JSON", err)
	}
	opts := cfg.EncodeOptions()
	encoded, err := toon.MarshalWithOptions(data, &opts)
	if err != nil {
		return errors.NewEncodeError("failed to encode sample data", err)
	}

	out := fm.Section("JSON Format", jsonText) + "\n" + fm.Section("TOON Format", string(encoded))
	if _, err := fmt.Fprint(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	if !c.Verify {
		return nil
	}

	// Decode with the indent the sample was encoded with
	verifyOpts := toon.DecodeOptions{Indent: cfg.Encode.Indent, Strict: true}
	decoded, err := parser.ParseTOON(string(encoded), verifyOpts)
	if err != nil {
		return err
	}
	decodedJSON, err := fm.JSON(decoded)
	if err != nil {
		return errors.NewOutputError("failed to render decoded data", err)
	}
	if _, err := fmt.Fprint(ctx.Stdout, "\n"+fm.Section("Decoded Data", decodedJSON)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}

	var roundTrip samples.Data
	if err := toon.UnmarshalWithOptions(encoded, &roundTrip, &verifyOpts); err != nil {
		return errors.NewVerifyError("decoded data does not fit the sample types", err)
	}
	if !reflect.DeepEqual(data, roundTrip) || decodedJSON != jsonText {
		return errors.NewVerifyError("original and decoded data do not match", errors.ErrVerificationFailed)
	}
	logger.Debug("round trip verified", "users", len(roundTrip.Users))

	if _, err := fmt.Fprintln(ctx.Stdout, "\nVerification successful: Original and decoded data match."); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readStdin reads all of stdin. A terminal stdin is only read in interactive mode.
func readStdin(ctx *Context, interactive bool) ([]byte, error) {
	if isTerminal(ctx.Stdin) {
		if interactive {
			return readInteractiveInput(ctx)
		}
		// No data provided on stdin and not in interactive mode
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return data, nil
}

// isTerminal reports whether r is an interactive terminal rather than a pipe or file
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readInteractiveInput lets users paste a document and signal completion
// with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context) ([]byte, error) {
	fmt.Fprintln(ctx.Stderr, "GoToon Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your document below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(ctx.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(line)
		if err == io.EOF {
			// End of input
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(builder.String()) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nProcessing...")
	return []byte(builder.String()), nil
}

// writeOutput runs render against stdout, or against a buffer that is then written to path
func writeOutput(ctx *Context, path string, logger *log.Logger, render func(w io.Writer) error) error {
	if path == "" {
		if err := render(ctx.Stdout); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return errors.NewOutputError("failed to render output", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	logger.Info("Output written", "path", path)
	return nil
}
