package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/api"
)

// newDataViewsCmd creates the 'data-views' command.
func newDataViewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "data-views",
		Aliases: []string{"dv"},
		Short:   "List existing data views",
		Long: `List the data views in the configured space. A job that creates a data
view cannot use a destination index whose name is already a data view title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			views, err := api.NewDataViewCache(client).List(GetContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list data views: %s", api.ExtractErrorMessage(err))
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No data views found")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TITLE\tID")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\n", v.Title, v.ID)
			}
			return tw.Flush()
		},
	}
	return cmd
}
