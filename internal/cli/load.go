package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/movieloader/internal/core"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(root *RootOptions) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a CSV or XLSX movie file",
		Long: `Load reconciles every row of a .csv or .xlsx file into the catalog.
Rows are committed one at a time; the first failing row stops the load and
rows before it stay committed.

Example:
  moviectl load movies.csv
  moviectl load movies.xlsx --profile snake`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, root, args[0], profile)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "column profile (default: INGEST_PROFILE)")

	return cmd
}

func runLoad(cmd *cobra.Command, root *RootOptions, path, profile string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return root.withService(cmd.Context(), func(svc *core.Service) error {
		result, err := svc.Load(cmd.Context(), path, f, profile)
		if result != nil {
			printLoadResult(cmd, result)
		}
		if err != nil {
			var rowErr *core.RowError
			if errors.As(err, &rowErr) {
				return fmt.Errorf("load stopped at line %d: %w", rowErr.Line, rowErr.Err)
			}
			if core.IsUserFacing(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
			}
			return err
		}
		return nil
	})
}

func printLoadResult(cmd *cobra.Command, r *core.IngestResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "load %s (profile %s): %d rows committed\n", r.LoadID, r.Profile, r.Rows)
	fmt.Fprintf(out, "  directors created: %d\n", r.DirectorsCreated)
	fmt.Fprintf(out, "  movies created:    %d\n", r.MoviesCreated)
	fmt.Fprintf(out, "  actors created:    %d\n", r.ActorsCreated)
	fmt.Fprintf(out, "  links created:     %d\n", r.LinksCreated)
}
