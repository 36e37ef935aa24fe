// Package cli provides the command-line interface for dfa-wizard.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mlops-tools/dfa-wizard/internal/logging"
	"github.com/mlops-tools/dfa-wizard/internal/version"
)

var (
	// Global flags
	cfgFile   string
	envFile   string
	apiKey    string
	kibanaURL string
	space     string
	verbose   bool
	debug     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dfa-wizard",
		Short: "Create and start data frame analytics jobs in Kibana",
		Long: `dfa-wizard ` + version.Version + ` - Built: ` + version.BuildTime + `
Author data frame analytics jobs (outlier detection, regression,
classification) from flags, JSON/YAML files or an existing job, validate
them, and create and start them through the Kibana machine learning API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(cmd.ErrOrStderr(), nil)
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.config/dfa-wizard/config)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with DFA_* variables")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Kibana API key (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&kibanaURL, "kibana-url", "", "Kibana base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&space, "space", "", "Kibana space (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for dfa-wizard.

QUICK START:

  bash:
    source <(dfa-wizard completion bash)

  zsh:
    dfa-wizard completion zsh > "${fpath[1]}/_dfa-wizard"

  fish:
    dfa-wizard completion fish > ~/.config/fish/completions/dfa-wizard.fish

  PowerShell:
    dfa-wizard completion powershell | Out-String | Invoke-Expression`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletion(out)
			}
		},
	}
	return completionCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop so a second Ctrl+C does not block the sender.
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.ExecuteContext(rootContext)

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newJobsCmd())
	rootCmd.AddCommand(newDataViewsCmd())
	rootCmd.AddCommand(newEstimateCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the command's context, falling back to the signal
// context and then to context.Background.
func GetContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
