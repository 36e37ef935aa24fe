package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mlops-tools/dfa-wizard/internal/api"
	"github.com/mlops-tools/dfa-wizard/internal/config"
	"github.com/mlops-tools/dfa-wizard/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dfa-wizard configuration",
		Long: `Configuration management commands for dfa-wizard.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the Kibana connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// prompter reads answers from the command's input.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, _ := p.reader.ReadString('\n')
	if input = strings.TrimSpace(input); input != "" {
		return input
	}
	return def
}

// secret reads without echo when the input is a terminal.
func (p *prompter) secret(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
	input, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func (p *prompter) yes(label string) bool {
	answer := strings.ToLower(p.ask(label+" [y/N]", ""))
	return answer == "y" || answer == "yes"
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for dfa-wizard.

The configuration is saved to ~/.config/dfa-wizard/config (mode 0600).
Proxy passwords are never saved; set DFA_PROXY_PASSWORD instead.

Use --force to overwrite existing configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := config.Load(path)
			if err != nil {
				cfg = config.New()
			}

			p := newPrompter(cmd.InOrStdin(), out)
			fmt.Fprintln(out, "dfa-wizard Configuration Setup")
			fmt.Fprintln(out, "==============================")
			fmt.Fprintln(out)

			cfg.KibanaURL = p.ask("Kibana URL", cfg.KibanaURL)
			for {
				key := p.secret("API key (required)")
				if key != "" {
					cfg.APIKey = key
					break
				}
				if cfg.APIKey != "" {
					break
				}
				fmt.Fprintln(out, "  Error: API key is required")
			}
			cfg.Space = p.ask("Kibana space", defaultString(cfg.Space, "default"))

			fmt.Fprintln(out)
			if p.yes("Configure proxy?") {
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				cfg.ProxyMode = p.ask("Proxy mode", "system")
				if cfg.ProxyMode != "no-proxy" {
					cfg.ProxyHost = p.ask("Proxy host", cfg.ProxyHost)
					port := p.ask("Proxy port", strconv.Itoa(constants.DefaultProxyPort))
					if v, err := strconv.Atoi(port); err == nil && v > 0 {
						cfg.ProxyPort = v
					}
					cfg.ProxyUser = p.ask("Proxy user", cfg.ProxyUser)
					cfg.NoProxy = p.ask("Hosts that bypass the proxy", cfg.NoProxy)
				}
			} else {
				cfg.ProxyMode = "no-proxy"
			}

			fmt.Fprintln(out)
			cfg.CreateDataView = !strings.EqualFold(p.ask("Create a data view for new jobs by default? [Y/n]", ""), "n")
			cfg.StartAfterCreate = p.yes("Start jobs right after creating them?")

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Configuration saved to %s\n", path)
			fmt.Fprintln(out, "Run 'dfa-wizard config test' to check the connection.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/dfa-wizard/config)
  2. Environment variables (DFA_KIBANA_URL, DFA_API_KEY, DFA_SPACE, ...), .env included
  3. Command-line flags (--kibana-url, --api-key, --space)

Priority: flags > environment > config file > defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Kibana:")
			fmt.Fprintf(out, "  URL:     %s\n", cfg.KibanaURL)
			if cfg.APIKey != "" {
				fmt.Fprintf(out, "  API Key: %s\n", cfg.MaskedAPIKey())
			} else {
				fmt.Fprintln(out, "  API Key: <not set>")
			}
			fmt.Fprintf(out, "  Space:   %s\n", defaultString(cfg.Space, "default"))
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy:")
			fmt.Fprintf(out, "  Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  User: %s\n", cfg.ProxyUser)
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy: %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Wizard:")
			fmt.Fprintf(out, "  Create Data View:   %t\n", cfg.CreateDataView)
			fmt.Fprintf(out, "  Start After Create: %t\n", cfg.StartAfterCreate)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}
	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the Kibana connection",
		Long:  `Check that Kibana is reachable and accepts the configured API key.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := getAPIClient()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Testing connection to %s...\n", cfg.KibanaURL)
			if err := client.Ping(GetContext(cmd)); err != nil {
				return fmt.Errorf("connection test failed: %s", api.ExtractErrorMessage(err))
			}
			fmt.Fprintln(out, "✓ Connection successful")
			return nil
		},
	}
	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	return cmd
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
