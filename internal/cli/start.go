package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/progress"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// newStartCmd creates the 'start' command.
func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <job-id>",
		Short: "Start a created job",
		Long: `Start a data frame analytics job that has been created but not started.

Example:
  dfa-wizard start ecommerce-outliers`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}

			s := newSession(client, cmd.OutOrStdout(), newReporter())
			defer s.close()

			jobID := args[0]
			s.ctrl.Dispatch(wizard.SetFormState{Patch: analytics.FormPatch{JobID: analytics.Set(jobID)}})

			var started bool
			progress.Run(s.reporter, "Starting "+jobID, func() {
				started = s.ctrl.StartAnalyticsJob(GetContext(cmd))
			})
			s.flush()
			if !started {
				return fmt.Errorf("job %s was not started", jobID)
			}
			return nil
		},
	}
	return cmd
}
