package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/api"
	"github.com/mlops-tools/dfa-wizard/internal/progress"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// newEstimateCmd creates the 'estimate' command.
func newEstimateCmd() *cobra.Command {
	var (
		file    string
		explain bool
		form    formFlags
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the model memory a job needs",
		Long: `Ask the cluster how much memory a job definition needs. The definition is
built the same way as for 'create' but does not need an ID or destination.

Example:
  dfa-wizard estimate -t regression -s flights --dependent-variable FlightDelayMin --explain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := getAPIClient()
			if err != nil {
				return err
			}
			patch, err := form.patch(cmd.Flags())
			if err != nil {
				return err
			}

			s := newSession(client, cmd.OutOrStdout(), newReporter())
			defer s.close()

			if file != "" {
				cfg, err := analytics.DecodeFile(file)
				if err != nil {
					return err
				}
				cfg.ID = ""
				if analytics.IsAdvancedConfig(cfg) {
					s.ctrl.Dispatch(wizard.SwitchToAdvancedEditor{})
				}
				s.ctrl.Dispatch(wizard.SetJobConfig{Config: cfg})
			}
			s.ctrl.Dispatch(wizard.SetFormState{Patch: patch})

			ctx := GetContext(cmd)
			var ok bool
			progress.Run(s.reporter, "Estimating model memory limit", func() {
				ok = s.ctrl.EstimateModelMemoryLimit(ctx)
			})
			s.flush()
			if !ok {
				return fmt.Errorf("no estimate available")
			}

			out := cmd.OutOrStdout()
			state := s.ctrl.State()
			fmt.Fprintf(out, "Estimated model memory limit: %s\n", state.EstimatedModelMemoryLimit)
			if !explain {
				return nil
			}

			cfg, err := state.Definition()
			if err != nil {
				return err
			}
			res, err := client.Explain(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to explain job: %s", api.ExtractErrorMessage(err))
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tINCLUDED\tREQUIRED\tTYPES\tREASON")
			for _, f := range res.FieldSelection {
				fmt.Fprintf(tw, "%s\t%t\t%t\t%v\t%s\n", f.Name, f.IsIncluded, f.IsRequired, f.MappingTypes, f.Reason)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Job configuration file (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Also show which fields the job would analyze")
	form.bind(cmd.Flags())

	return cmd
}
