package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"blocknote/internal/app"
	"blocknote/internal/export"
	"blocknote/internal/service"
)

func newMCPCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve pages to AI agents over stdio (Model Context Protocol)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(cmd.Context(), env.Config, env.Log.Logger)
		},
	}
}

func newBackupCmd(env *Env) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export every page into a timestamped directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = env.Config.Backup.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			pages, closeStore, err := env.openPages(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			dir := filepath.Join(env.Config.Export.Dir, "backups")
			backup := service.NewBackupService(pages, dir, f, service.NoopEmitter{}, env.Log.Logger)
			res, err := backup.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			return writeOut(cmd, env, res)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (html|md); defaults to the configured backup format")
	return cmd
}
