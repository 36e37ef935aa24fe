package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/api"
)

// newJobsCmd creates the 'jobs' command group.
func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Job operations (list, get)",
		Long:  `Commands for inspecting existing data frame analytics jobs.`,
	}

	jobsCmd.AddCommand(newJobsListCmd())
	jobsCmd.AddCommand(newJobsGetCmd())

	return jobsCmd
}

// newJobsListCmd creates the 'jobs list' command.
func newJobsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List data frame analytics jobs",
		Long: `List the data frame analytics jobs in the configured space.

Example:
  # List first 10 jobs
  dfa-wizard jobs list --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			GetLogger().Debug().Msg("Fetching jobs")
			jobs, err := client.ListJobs(GetContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list jobs: %s", api.ExtractErrorMessage(err))
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}

			displayCount := len(jobs)
			if limit > 0 && limit < len(jobs) {
				displayCount = limit
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSOURCE\tDESTINATION\tMEMORY")
			for _, job := range jobs[:displayCount] {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					job.ID, jobTypeLabel(job), strings.Join(job.Source.Index, ","), job.Dest.Index, job.ModelMemoryLimit)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if displayCount < len(jobs) {
				fmt.Fprintf(out, "(Showing %d of %d jobs. Use --limit to change)\n", displayCount, len(jobs))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of jobs displayed (0 = all)")

	return cmd
}

// newJobsGetCmd creates the 'jobs get' command.
func newJobsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <job-id>",
		Short: "Print a job's configuration",
		Long: `Print the configuration of a job as JSON. The output can be edited and
passed back to 'dfa-wizard create --file'.

Example:
  dfa-wizard jobs get ecommerce-outliers > job.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			job, err := client.GetJob(GetContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %s", api.ExtractErrorMessage(err))
			}

			raw, err := analytics.EncodeConfig(*job)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	return cmd
}

func jobTypeLabel(cfg analytics.Config) string {
	if t := cfg.Analysis.Type(); t != analytics.JobTypeNone {
		return string(t)
	}
	return "-"
}
