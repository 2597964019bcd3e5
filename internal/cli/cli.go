// Package cli parses command-line arguments and environment defaults into
// the application configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/vk/objforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envDefaults are process-environment fallbacks for flags, under the
// OBJFORGE_ prefix.
type envDefaults struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Parse processes command-line arguments. It returns a populated app config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var env envDefaults
	if err := envconfig.Process("objforge", &env); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("objforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
objforge - builds runtime objects from a declarative configuration tree.

Usage:
  objforge [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a tree file (.hcl, .yaml, .yml) or a directory of tree files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the tree file or directory.")
	cFlag := flagSet.String("c", "", "Path to the tree file or directory (shorthand).")
	defaultsFlag := flagSet.String("defaults", "", "Path to a defaults tree file or directory.")
	resolveNoneFlag := flagSet.Bool("resolve-none", false, "Resolve unset step arguments against sibling sections.")
	printFlag := flagSet.Bool("print", false, "Print resulting object ids and values.")
	logFormatFlag := flagSet.String("log-format", env.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Tree path determined.", "path", path)

	if path == "" {
		slog.Debug("No tree path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid log format %q", logFormat)}
	}

	return &app.Config{
		ConfigPath:   path,
		DefaultsPath: *defaultsFlag,
		ResolveNone:  *resolveNoneFlag,
		LogLevel:     strings.ToLower(*logLevelFlag),
		LogFormat:    logFormat,
		PrintResult:  *printFlag,
	}, false, nil
}
