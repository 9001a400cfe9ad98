package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogo2464/LIEF/internal/binconfig"
	"github.com/gogo2464/LIEF/internal/binlog"
	"github.com/gogo2464/LIEF/internal/depsbom"
	"github.com/gogo2464/LIEF/internal/healthcheck"
	"github.com/gogo2464/LIEF/pefmt"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "binfmt-cli",
		Short:   "Parse and inspect PE binaries",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
	}
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newInspectCmd())
	return cmd
}

func newParseCmd() *cobra.Command {
	var (
		outputFormat string
		query        string
		sbomOut      string
		configFile   string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a PE file and print a health report",
		Long: `parse runs the top-level PE parsing pipeline against the given file and
reports the outcome of every recovered warn-and-continue step: header
decode, data directory dispatch, section tagging, and import table
coverage.

Exit codes:
  0 - parse succeeded, no failing checks
  1 - parse succeeded, at least one check failed
  2 - the file could not be parsed at all (fatal header error)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(args[0], outputFormat, query, sbomOut, configFile, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, json, yaml, markdown)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter the JSON report through a jq expression")
	cmd.Flags().StringVar(&sbomOut, "sbom", "", "Write a CycloneDX-shaped dependency inventory to this path")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func runParse(path, format, query, sbomOut, configFile string, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	mgr := binconfig.NewManager(nil)
	cfg, err := mgr.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := binlog.ParseLevel(cfg.LogLevel)
	if verbose {
		level = binlog.LevelDebug
	}
	logger := binlog.New(binlog.Config{Level: level, Format: binlog.Format(cfg.LogFormat), Output: os.Stderr})

	bin, err := pefmt.Parse(data, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(2)
	}

	if sbomOut != "" {
		if err := writeSBOM(bin, sbomOut); err != nil {
			logger.WithComponent("sbom").Warnf("dependency inventory failed: %v", err)
		}
	}

	report := healthcheck.NewRunner(healthcheck.Default()).RunAll(bin)

	if query != "" {
		return runQuery(os.Stdout, report, query)
	}

	if err := writeReport(report, format, os.Stdout); err != nil {
		return err
	}

	if report.Summary.Fail > 0 {
		os.Exit(1)
	}
	return nil
}

func writeSBOM(bin *pefmt.Binary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return depsbom.FromPE(bin).WriteJSON(f)
}

func writeReport(report *healthcheck.Report, format string, w io.Writer) error {
	switch format {
	case "json":
		return report.WriteJSON(w)
	case "yaml":
		return report.WriteYAML(w)
	case "markdown", "md":
		return report.WriteMarkdown(w)
	case "text", "":
		return report.WriteText(w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// runQuery filters the report's JSON form through a jq expression, the
// same role gojq plays inside fq itself, letting a caller pull one
// field out of the report without a separate `jq` binary on PATH.
func runQuery(w io.Writer, report *healthcheck.Report, expr string) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}

	query, err := gojqParse(expr)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	iter := query.Run(input)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Interactively walk a parsed PE file's sections and directories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
	return cmd
}

func runInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	cfg, err := binconfig.Default()
	if err != nil {
		return err
	}
	bin, err := pefmt.Parse(data, cfg, binlog.Discard())
	if err != nil {
		return fmt.Errorf("fatal parse error: %w", err)
	}

	colorize := term.IsTerminal(int(os.Stdout.Fd()))
	return runInspectShell(bin, colorize)
}
