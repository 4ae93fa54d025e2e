package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/slabkit/internal/logger"
	"github.com/joshuapare/slabkit/internal/printer"
)

// envLogLevel names the environment variable that sets the default log level.
const envLogLevel = "SLABKIT_LOG"

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "slabctl",
	Short: "Exercise and inspect the slab allocator",
	Long: `slabctl drives the slab allocator from user space. It runs the
startup self-test with configurable fault injection, prints per-class cache
statistics, and benchmarks the pipe object cache.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", os.Getenv(envLogLevel), "Log level (debug, info, warn, error); empty disables logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the package logger from --log-level and
// --verbose. Logs go to stderr so they never mix with command output.
func setupLogging() error {
	level := logLevel
	if level == "" && verbose {
		level = "debug"
	}
	if level == "" {
		logger.Init(logger.Options{})
		return nil
	}
	lvl, ok := logger.ParseLevel(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	logger.Init(logger.Options{
		Enabled: true,
		JSON:    logJSON,
		Writer:  os.Stderr,
		Level:   lvl,
	})
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// outputFormat maps --json to a printer format.
func outputFormat() printer.Format {
	if jsonOut {
		return printer.FormatJSON
	}
	return printer.FormatText
}

// newPrinter returns a printer on stdout honoring --json.
func newPrinter() *printer.Printer {
	opts := printer.DefaultOptions()
	opts.Format = outputFormat()
	return printer.New(os.Stdout, opts)
}

// cliLogger is the logger handed to library options.
func cliLogger() *slog.Logger {
	return logger.L
}

// closeInto runs a deferred teardown and joins its error into *err.
func closeInto(err *error, what string, fn func() error) {
	if closeErr := fn(); closeErr != nil {
		*err = errors.Join(*err, fmt.Errorf("%s: %w", what, closeErr))
	}
}
