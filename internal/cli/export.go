package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/movieloader/internal/core"
)

// NewExportCommand creates the export command.
func NewExportCommand(root *RootOptions) *cobra.Command {
	var (
		filter core.ExportFilter
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export movies as CSV",
		Long: `Export writes one CSV row per movie and actor pair. Filters are
case-sensitive substring matches and combine with AND.

Example:
  moviectl export
  moviectl export --director Nolan -o nolan.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, filter, output)
		},
	}

	cmd.Flags().StringVar(&filter.Title, "title", "", "match titles containing this text")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "match genres containing this text")
	cmd.Flags().StringVar(&filter.Director, "director", "", "match directors containing this text")
	cmd.Flags().StringVar(&filter.Actor, "actor", "", "match actors containing this text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, root *RootOptions, filter core.ExportFilter, output string) error {
	return root.withService(cmd.Context(), func(svc *core.Service) error {
		rows, err := svc.Export(cmd.Context(), filter)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		if err := core.WriteCSV(w, rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), output)
		}
		return nil
	})
}
