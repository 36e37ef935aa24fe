package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/api"
	"github.com/mlops-tools/dfa-wizard/internal/progress"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// createOptions are the create flags that do not map to a form field.
type createOptions struct {
	file     string
	clone    string
	advanced bool
	edit     bool
	estimate bool
	start    bool
	dryRun   bool
	form     formFlags
}

// newCreateCmd creates the 'create' command.
func newCreateCmd() *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a data frame analytics job",
		Long: `Create a data frame analytics job from flags, a JSON/YAML file or an
existing job.

The definition is validated before anything is sent: the job ID must be
unique, the destination index name valid, and no data view may exist for the
destination index when one is to be created.

A configuration that uses settings the form has no flag for is submitted as
raw JSON (advanced mode). In advanced mode only --job-id, --create-data-view
and --time-field are taken from flags.

Examples:
  # Outlier detection over one index
  dfa-wizard create --job-id ecommerce-outliers -t outlier_detection \
      -s kibana_sample_data_ecommerce -d ecommerce-outliers

  # Regression from a YAML file, started right away
  dfa-wizard create -f flights.yaml --start

  # Copy an existing job under a new ID and review it in $EDITOR
  dfa-wizard create --clone flights-delay --job-id flights-delay-2 -d flights-delay-2 --edit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}
			patch, err := opts.form.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("create-data-view") {
				patch.CreateDataView = analytics.Set(cfg.CreateDataView)
			}
			if !cmd.Flags().Changed("start") {
				opts.start = cfg.StartAfterCreate
			}

			s := newSession(client, cmd.OutOrStdout(), newReporter())
			defer s.close()
			return runCreate(GetContext(cmd), s, opts, patch, ignoredInAdvanced(cmd.Flags()))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "Job configuration file (.json, .yaml or .yml)")
	flags.StringVar(&opts.clone, "clone", "", "Start from the configuration of an existing job")
	flags.BoolVar(&opts.advanced, "advanced", false, "Submit the configuration as raw JSON instead of through the form")
	flags.BoolVarP(&opts.edit, "edit", "e", false, "Edit the configuration in $EDITOR before submitting")
	flags.BoolVar(&opts.estimate, "estimate", true, "Estimate the model memory limit when none is set")
	flags.BoolVar(&opts.start, "start", false, "Start the job once it is created")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the configuration instead of creating the job")
	opts.form.bind(flags)

	cmd.MarkFlagsMutuallyExclusive("file", "clone")
	_ = cmd.MarkFlagFilename("file", "json", "yaml", "yml")

	return cmd
}

func runCreate(ctx context.Context, s *session, opts *createOptions, patch analytics.FormPatch, formOnly []string) error {
	log := GetLogger()

	if err := s.preload(ctx); err != nil {
		return err
	}
	if err := loadDefinition(ctx, s, opts, patch, formOnly); err != nil {
		return err
	}
	s.flush()

	if opts.edit {
		if err := editDefinition(s, opts.advanced); err != nil {
			return err
		}
	}

	state := s.ctrl.State()
	if opts.estimate && state.Mode == wizard.ModeSimple && state.Draft.ModelMemoryLimit == "" && state.Draft.JobType != analytics.JobTypeNone {
		var ok bool
		progress.Run(s.reporter, "Estimating model memory limit", func() {
			ok = s.ctrl.EstimateModelMemoryLimit(ctx)
		})
		if state = s.ctrl.State(); ok && state.EstimatedModelMemoryLimit != "" {
			log.Info().Str("model_memory_limit", state.EstimatedModelMemoryLimit).Msg("using estimated model memory limit")
			state = s.ctrl.Dispatch(wizard.SetFormState{Patch: analytics.FormPatch{
				ModelMemoryLimit: analytics.Set(state.EstimatedModelMemoryLimit),
			}})
		}
		s.flush()
	}

	if !state.Valid() {
		if state.Mode == wizard.ModeAdvanced {
			return errors.New("the job configuration is empty")
		}
		printProblems(s.out, state.Validation)
		return fmt.Errorf("job definition is not valid")
	}

	jobID := state.TargetJobID()
	if jobID == "" {
		return errors.New("a job ID is required (--job-id)")
	}

	if opts.dryRun {
		return printDefinition(s.out, state)
	}

	var created bool
	progress.Run(s.reporter, "Creating "+jobID, func() {
		created = s.ctrl.CreateAnalyticsJob(ctx)
	})
	s.flush()
	if !created {
		if jobIDTaken(s.ctrl.State()) {
			fmt.Fprintf(s.out, "\nA job named %s already exists, choose another --job-id\n", jobID)
		}
		return fmt.Errorf("job %s was not created", jobID)
	}

	if !opts.start {
		fmt.Fprintf(s.out, "\nStart it with: dfa-wizard start %s\n", jobID)
		return nil
	}

	var started bool
	progress.Run(s.reporter, "Starting "+jobID, func() {
		started = s.ctrl.StartAnalyticsJob(ctx)
	})
	s.flush()
	if !started {
		return fmt.Errorf("job %s was created but not started", jobID)
	}
	return nil
}

// loadDefinition seeds the wizard from --clone or --file and then applies
// the form flags. formOnly names the changed flags that have no effect once
// the definition is raw JSON.
func loadDefinition(ctx context.Context, s *session, opts *createOptions, patch analytics.FormPatch, formOnly []string) error {
	if opts.clone != "" {
		var src *analytics.Config
		var err error
		progress.Run(s.reporter, "Loading "+opts.clone, func() {
			src, err = s.client.GetJob(ctx, opts.clone)
		})
		if api.IsNotFound(err) {
			return fmt.Errorf("job %s not found: %s", opts.clone, api.ExtractErrorMessage(err))
		}
		if err != nil {
			return fmt.Errorf("failed to load job %s: %s", opts.clone, api.ExtractErrorMessage(err))
		}
		s.ctrl.Dispatch(wizard.SetJobClone{Source: *src})
	}

	var fileCfg *analytics.Config
	if opts.file != "" {
		cfg, err := analytics.DecodeFile(opts.file)
		if err != nil {
			return err
		}
		if cfg.ID != "" {
			patch = analytics.FormPatch{JobID: analytics.Set(cfg.ID)}.Merge(patch)
			cfg.ID = ""
		}
		fileCfg = &cfg
	}

	cloneAdvanced := s.ctrl.State().Mode == wizard.ModeAdvanced
	advanced := opts.advanced || cloneAdvanced
	if fileCfg != nil && analytics.IsAdvancedConfig(*fileCfg) {
		advanced = true
	}
	if len(formOnly) > 0 && (cloneAdvanced || (advanced && fileCfg != nil)) {
		GetLogger().Warn().Strs("flags", formOnly).Msg("flags ignored: the configuration is edited as raw JSON in advanced mode")
	}

	if fileCfg != nil && !advanced {
		s.ctrl.Dispatch(wizard.SetJobConfig{Config: *fileCfg})
	}
	s.ctrl.Dispatch(wizard.SetFormState{Patch: patch})

	if advanced {
		s.ctrl.Dispatch(wizard.SwitchToAdvancedEditor{})
		if fileCfg != nil {
			s.ctrl.Dispatch(wizard.SetJobConfig{Config: *fileCfg})
		}
		for _, m := range s.ctrl.State().AdvancedEditorMessages {
			printMessage(s.out, m)
		}
	}
	return nil
}

// editDefinition lets the user edit the raw configuration. Unless the
// session was already advanced, the result is loaded back into the form.
func editDefinition(s *session, keepAdvanced bool) error {
	wasAdvanced := s.ctrl.State().Mode == wizard.ModeAdvanced
	state := s.ctrl.Dispatch(wizard.SwitchToAdvancedEditor{})
	if state.Mode != wizard.ModeAdvanced {
		s.flush()
		return errors.New("the form could not be converted to JSON")
	}

	edited, err := editText(state.AdvancedEditorRawString)
	if err != nil {
		return err
	}
	s.ctrl.Dispatch(wizard.SetAdvancedEditorRawString{Raw: edited})

	if wasAdvanced || keepAdvanced {
		return nil
	}
	if !s.ctrl.SwitchToForm() {
		s.flush()
		return errors.New("the edited configuration cannot be used in the form; rerun with --advanced to submit it as is")
	}
	return nil
}

// jobIDTaken reports whether the last create failure says the job exists.
func jobIDTaken(state wizard.State) bool {
	msgs := state.RequestMessages
	if len(msgs) == 0 {
		return false
	}
	last := msgs[len(msgs)-1]
	return last.Kind == wizard.MessageError && api.IsJobExistsError(errors.New(last.Error))
}

func printDefinition(w io.Writer, state wizard.State) error {
	cfg, err := state.Definition()
	if err != nil {
		return err
	}
	cfg.ID = state.TargetJobID()
	raw, err := analytics.EncodeConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, raw)
	if state.Draft.CreateDataView {
		GetLogger().Info().Str("data_view", cfg.Dest.Index).Msg("a data view would be created for the destination index")
	}
	return nil
}
