package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/movieloader/internal/core"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog entity counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withService(cmd.Context(), func(svc *core.Service) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "directors\t%d\n", stats.Directors)
				fmt.Fprintf(tw, "movies\t%d\n", stats.Movies)
				fmt.Fprintf(tw, "actors\t%d\n", stats.Actors)
				fmt.Fprintf(tw, "movie_actor\t%d\n", stats.MovieActors)
				return tw.Flush()
			})
		},
	}
}
