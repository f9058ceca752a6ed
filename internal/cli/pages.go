package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"blocknote/internal/domain"
	"blocknote/internal/export"
	"blocknote/internal/service"
)

func newPagesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List pages as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, closeStore, err := env.openPages(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			return writeOut(cmd, env, pages.ListPages())
		},
	}
}

// pickPage returns the page named by args, or the active page.
func pickPage(pages *service.PageService, args []string) (domain.Page, error) {
	if len(args) > 0 {
		return pages.GetPage(args[0])
	}
	page, ok := pages.ActivePage()
	if !ok {
		return domain.Page{}, fmt.Errorf("no active page: %w", domain.ErrNotFound)
	}
	return page, nil
}

func newShowCmd(env *Env) *cobra.Command {
	var style string
	var width int

	cmd := &cobra.Command{
		Use:   "show [page-id]",
		Short: "Render a page in the terminal (defaults to the active page)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, closeStore, err := env.openPages(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			page, err := pickPage(pages, args)
			if err != nil {
				return err
			}
			md := export.Markdown(page.Title, page.Blocks)

			// A fixed style avoids the terminal background query WithAutoStyle makes.
			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("markdown renderer: %w", err)
			}
			out, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style: dark, light, notty, ascii")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	return cmd
}

func newExportCmd(env *Env) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export [page-id]",
		Short: "Write a page as HTML or markdown (defaults to the active page)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			pages, closeStore, err := env.openPages(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			page, err := pickPage(pages, args)
			if err != nil {
				return err
			}

			if out == "-" {
				data, err := export.Render(f, page)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if out != "" {
				data, err := export.Render(f, page)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			path, err := export.WriteFile(env.Config.Export.Dir, f, page)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "Output format (html|md)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; - for stdout (default: export dir)")
	return cmd
}
