// Package cli is the blocknote command line: the desktop editor by
// default, plus scriptable page commands and a stdio MCP server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blocknote/internal/config"
	"blocknote/internal/logging"
	"blocknote/internal/secret"
	"blocknote/internal/service"
	"blocknote/internal/storage"
)

// Env is what every command runs with once flags and config are resolved.
type Env struct {
	Config config.Config
	Log    *logging.Log

	configPath string
	dataDir    string
	logLevel   string
	ephemeral  bool
	pretty     bool
}

// newSecretStore is where store credentials are looked up.
var newSecretStore = func() secret.Store { return secret.NewKeychainStore() }

// GUIFunc runs the desktop editor. It lives in package main because the
// frontend assets are embedded there.
type GUIFunc func(ctx context.Context, env *Env) error

func NewRootCmd(runGUI GUIFunc) *cobra.Command {
	env := &Env{}

	cmd := &cobra.Command{
		Use:          "blocknote",
		Short:        "Block-based note editor",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the editor
  blocknote

  # List pages as JSON
  blocknote pages

  # Print a page in the terminal
  blocknote show

  # Write a page as markdown
  blocknote export <page-id> --format md --out notes.md

  # Serve pages to an AI agent over stdio
  blocknote mcp
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => desktop editor.
			return runGUI(cmd.Context(), env)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return env.load()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if env.Log != nil {
			return env.Log.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&env.configPath, "config", envOr("BLOCKNOTE_CONFIG", ""), "Path to config.yaml (default: $XDG_CONFIG_HOME/blocknote/config.yaml)")
	cmd.PersistentFlags().StringVar(&env.dataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&env.ephemeral, "ephemeral", false, "Keep pages in memory only")
	cmd.PersistentFlags().BoolVar(&env.pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newPagesCmd(env))
	cmd.AddCommand(newShowCmd(env))
	cmd.AddCommand(newExportCmd(env))
	cmd.AddCommand(newBackupCmd(env))
	cmd.AddCommand(newMCPCmd(env))
	cmd.AddCommand(newSecretCmd())

	return cmd
}

func (env *Env) load() error {
	cfg, err := config.Load(env.configPath)
	if err != nil {
		return err
	}
	if env.dataDir != "" {
		cfg.SetDataDir(env.dataDir)
	}
	if env.logLevel != "" {
		cfg.Log.Level = env.logLevel
	}
	if env.ephemeral {
		cfg.Store.Driver = storage.DriverMemory
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Store.Driver != storage.DriverMemory {
		if err := cfg.ResolveSecrets(newSecretStore()); err != nil {
			return err
		}
	}
	env.Config = cfg

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	env.Log = log
	return nil
}

// openPages opens the configured store and loads the pages for a
// one-shot command. The caller closes the returned store.
func (env *Env) openPages(ctx context.Context) (*service.PageService, func() error, error) {
	store, err := storage.Open(ctx, env.Config.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	pages := service.NewPageService(store, service.NoopEmitter{}, env.Log.Logger)
	pages.Load(ctx)
	return pages, store.Close, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, env *Env, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if env.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
