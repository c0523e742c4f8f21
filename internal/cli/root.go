// Package cli implements the cortexhub command line interface. Every
// subcommand prints a single JSON document to stdout on success; failures
// are printed as a structured error object on stderr with a non-zero exit.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aryanrai97861/cortexhub/config"
	"github.com/aryanrai97861/cortexhub/logging"
	"github.com/aryanrai97861/cortexhub/orchestrator"
)

const version = "0.1.0"

var logLevel string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cortexhub",
	Short: "CortexHub - document-grounded AI agent",
	Long: `CortexHub runs a tool-using AI agent over persisted chat sessions.
It can embed documents into a local vector store, answer questions with
retrieval and web search, and extract knowledge graphs from text.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Errors have already been reported on stderr as
// structured JSON; the returned error only signals the exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// setup loads configuration and builds the process logger. Flag values
// override the environment.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := logging.New(func(o *logging.Options) {
		o.Level = cfg.LogLevel
		o.Pretty = cfg.LogPretty
	})
	return cfg, logger, nil
}

// emitJSON writes v to stdout as indented JSON.
func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints a structured error report on stderr and returns err so cobra
// exits non-zero.
func fail(err error, message string) error {
	report := orchestrator.ErrorReport{Error: err.Error(), Message: message}
	enc := json.NewEncoder(os.Stderr)
	if encodeErr := enc.Encode(report); encodeErr != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
