// Command sebi inspects a Stylus WASM artifact and reports its execution
// boundary risk. The process exit code is the classification exit code:
// 0 SAFE, 1 RISK, 2 HIGH_RISK.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/0xphen/sebi"
	"github.com/0xphen/sebi/policy"
	"github.com/0xphen/sebi/report"
)

// version is stamped at build time via -ldflags.
var version = "0.1.0"

var (
	outputFormat string
	outputPath   string
	commitHash   string
	policyPath   string
	debugMode    bool
	noColor      bool
	interactive  bool
)

var rootCmd = &cobra.Command{
	Use:          "sebi <wasm-file>",
	Short:        "Static execution-boundary inspection for Stylus WASM",
	Long:         "sebi walks a WASM binary offline, extracts structural signals, and\nclassifies the artifact as SAFE, RISK, or HIGH_RISK under a fixed rule catalog.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, text, sarif)")
	rootCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Write output to a file instead of stdout")
	rootCmd.Flags().StringVar(&commitHash, "commit", "", "Git commit hash to embed in tool metadata")
	rootCmd.Flags().StringVar(&policyPath, "policy", "", "Path to a YAML policy file")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styled text output")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the report in an interactive viewer")
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(debugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	pol := policy.Default()
	if policyPath != "" {
		pol, err = policy.Load(policyPath)
		if err != nil {
			return err
		}
		logger.Sugar().Debugf("loaded policy %q from %s", pol.Name, policyPath)
	}

	tool := report.ToolInfo{Name: sebi.ToolName, Version: version}
	if commitHash != "" {
		tool.Commit = &commitHash
	}

	insp := sebi.New(sebi.WithPolicy(pol), sebi.WithLogger(logger))
	rep, err := insp.Inspect(args[0], tool)
	if err != nil {
		return err
	}

	if interactive {
		if err := runInteractive(rep); err != nil {
			return err
		}
		os.Exit(rep.Classification.ExitCode)
	}

	output, err := renderOutput(rep)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, output, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else {
		os.Stdout.Write(output)
	}

	os.Exit(rep.Classification.ExitCode)
	return nil
}

func renderOutput(rep *report.Report) ([]byte, error) {
	switch strings.ToLower(outputFormat) {
	case "json":
		raw, err := rep.EncodeJSON()
		if err != nil {
			return nil, err
		}
		return append(raw, '\n'), nil

	case "text":
		styled := !noColor && outputPath == "" && term.IsTerminal(int(os.Stdout.Fd()))
		return []byte(report.RenderText(rep, styled)), nil

	case "sarif":
		var buf strings.Builder
		if err := report.WriteSARIF(rep, &buf); err != nil {
			return nil, err
		}
		return []byte(buf.String()), nil

	default:
		return nil, fmt.Errorf("unknown output format %q (json, text, sarif)", outputFormat)
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	// Diagnostics go to stderr so report output stays clean on stdout.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
