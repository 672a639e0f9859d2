// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-roster is an interactive terminal view of an activity
// registry. Anyone can browse activities, their schedules, remaining
// seats, and participants. A teacher who logs in can enroll students
// and remove them; the roster is re-read from the registry after every
// change.
//
// The teacher token is kept in a per-user credentials file keyed by
// registry origin, so a login survives restarts. Use --ephemeral to
// keep it in memory only.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/roster/lib/cli"
	"github.com/bureau-foundation/roster/lib/config"
	"github.com/bureau-foundation/roster/lib/registry"
	"github.com/bureau-foundation/roster/lib/rosterui"
	"github.com/bureau-foundation/roster/lib/tokenstore"
	"github.com/bureau-foundation/roster/lib/version"
)

func main() {
	os.Exit(cli.Report(os.Stderr, run(os.Args[1:])))
}

// options holds the command-line flags. Empty values leave the
// configuration alone.
type options struct {
	configPath     string
	envFile        string
	server         string
	credentials    string
	identity       string
	ephemeral      bool
	logOutput      string
	logLevel       string
	formVisibility string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("bureau-roster", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to roster.yaml (default: $BUREAU_ROSTER_CONFIG)")
	flagSet.StringVar(&opts.envFile, "env-file", "", "load BUREAU_ROSTER_* variables from a dotenv file before reading the environment")
	flagSet.StringVar(&opts.server, "server", "", "registry base URL (default: http://localhost:8000)")
	flagSet.StringVar(&opts.credentials, "credentials", "", "credentials file (default: $XDG_STATE_HOME/bureau/roster-credentials.json)")
	flagSet.StringVar(&opts.identity, "credentials-identity", "", "age identity file; the credentials file is stored encrypted to it")
	flagSet.BoolVar(&opts.ephemeral, "ephemeral", false, "keep the teacher token in memory only")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status line)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "minimum level for the log file: debug, info, warn, error")
	flagSet.StringVar(&opts.formVisibility, "form-visibility", "", "when to show the enrollment form: logged-out or logged-in")
	flagSet.Bool("version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func run(args []string) error {
	var opts options
	flagSet := newFlagSet(&opts)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(os.Stderr, flagSet)
			return nil
		}
		return cli.Validation("%w", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(os.Stderr, flagSet)
		return nil
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		fmt.Printf("bureau-roster %s\n", version.Full())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return cli.Validation("unexpected argument: %s", rest[0])
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg.SlogLevel())

	if !cli.IsTerminal() {
		return cli.Validation("bureau-roster needs an interactive terminal").
			WithHint("Run it directly in a terminal; stdin and stdout must not be redirected.")
	}

	return runViewer(cfg, logger)
}

// resolveConfig layers defaults, the config file, environment
// overrides, and flags, in that order, then validates the result.
func resolveConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv("BUREAU_ROSTER_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if opts.envFile != "" {
		// godotenv.Load never overrides variables already set, so the
		// real environment still wins over the file.
		if err := godotenv.Load(opts.envFile); err != nil {
			return nil, cli.Validation("loading env file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, cli.Validation("%w", err)
	}

	if opts.server != "" {
		cfg.Server.URL = opts.server
	}
	if opts.credentials != "" {
		cfg.Credentials.Path = opts.credentials
	}
	if opts.identity != "" {
		cfg.Credentials.Identity = opts.identity
	}
	if opts.ephemeral {
		cfg.Credentials.Ephemeral = true
	}
	if opts.logOutput != "" {
		cfg.Log.Output = opts.logOutput
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.formVisibility != "" {
		cfg.UI.FormVisibility = config.FormVisibility(opts.formVisibility)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore returns the credential store for origin.
func openStore(cfg *config.Config, origin string) (tokenstore.Store, error) {
	if cfg.Credentials.Ephemeral {
		return tokenstore.NewMemory(""), nil
	}
	path := cfg.Credentials.Path
	if path == "" {
		path = tokenstore.DefaultPath()
	}
	var fileOptions []tokenstore.FileOption
	if cfg.Credentials.Identity != "" {
		identity, err := tokenstore.LoadIdentity(cfg.Credentials.Identity)
		if err != nil {
			return nil, cli.Validation("cannot load credentials identity: %w", err).
				WithHint("Create one with age-keygen, or drop credentials.identity to store the token unencrypted.")
		}
		fileOptions = append(fileOptions, tokenstore.WithIdentity(identity))
	}
	store, err := tokenstore.OpenFile(path, origin, fileOptions...)
	if err != nil {
		return nil, cli.Validation("cannot open credentials: %w", err).
			WithHint("Remove or fix %s, or run with --ephemeral.", path)
	}
	return store, nil
}

// runViewer builds the registry client and credential store and runs
// the terminal UI until the user quits.
//
// While the UI owns the screen, logging goes to the status line (warn
// and above) and, with --log-output, to a JSON file. Writing to stderr
// would corrupt the alternate screen.
func runViewer(cfg *config.Config, logger *slog.Logger) error {
	statusHandler := rosterui.NewLogHandler(slog.LevelWarn)
	var uiLogger *slog.Logger
	if cfg.Log.Output != "" {
		fileHandler, closeFile, err := openFileLogHandler(cfg.Log.Output, cfg.SlogLevel())
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", cfg.Log.Output, err)
		}
		defer closeFile()
		uiLogger = slog.New(fanoutHandler{statusHandler, fileHandler})
	} else {
		uiLogger = slog.New(statusHandler)
	}

	client, err := registry.NewClient(registry.ClientConfig{
		ServerURL:  cfg.Server.URL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     uiLogger,
	})
	if err != nil {
		return cli.Validation("%w", err)
	}

	store, err := openStore(cfg, client.Origin())
	if err != nil {
		return err
	}
	logger.Debug("starting roster viewer",
		"server", cfg.Server.URL,
		"origin", client.Origin(),
		"ephemeral", cfg.Credentials.Ephemeral,
	)

	model := rosterui.NewModel(rosterui.Config{
		Registry:       client,
		Store:          store,
		Logger:         uiLogger,
		FormVisibility: cfg.UI.FormVisibility,
		Origin:         client.Origin(),
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	statusHandler.SetProgram(program)

	if _, err := program.Run(); err != nil {
		return cli.Internal("terminal UI: %w", err)
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `bureau-roster — interactive view of an activity registry.

Lists every activity with its schedule, remaining seats, and
participants. Press "l" to log in as a teacher; while logged in,
"d" removes the selected participant. Signing a student up through
the enrollment form also requires a teacher login.

The form is shown while logged out by default, matching the registry's
web page. Use --form-visibility logged-in (or ui.form_visibility in
the config file) to show it only to a logged-in teacher.

Configuration is read from --config or $BUREAU_ROSTER_CONFIG when set.
Environment variables BUREAU_ROSTER_SERVER, BUREAU_ROSTER_CREDENTIALS,
BUREAU_ROSTER_IDENTITY, BUREAU_ROSTER_TIMEOUT, and BUREAU_ROSTER_LOG_LEVEL
override the file; flags override both. --env-file fills in variables
that are not already set.

Usage:
  bureau-roster [flags]

Examples:
  # Browse the local registry
  bureau-roster

  # Connect to another registry without saving the login
  bureau-roster --server https://activities.mergington.edu --ephemeral

  # Keep the saved login encrypted with an age key
  bureau-roster --credentials-identity ~/.config/bureau/roster-key.txt

  # Keep a debug log while the viewer runs
  bureau-roster --log-output /tmp/roster.jsonl --log-level debug

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
