package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskboard/internal/config"
	"github.com/felixgeelhaar/taskboard/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit taskboard configuration",
	Long: `Manage the taskboard configuration stored at <home>/config.yaml

Configuration includes:
  • Backend base URL and request timeout
  • Token file location
  • Logging and tracing settings
  • Default output format and page size

Environment variables TASKBOARD_API_URL, TASKBOARD_TIMEOUT and
TASKBOARD_LOG_LEVEL override the file; 'config view' shows the merged result.

Examples:
  # View current configuration
  taskboard config view

  # Edit configuration in $EDITOR
  taskboard config edit

  # Get a specific value
  taskboard config get api.base_url

  # Set a specific value
  taskboard config set api.base_url https://tasks.example.com/api

  # Show configuration file path
  taskboard config path
`,
	Annotations: map[string]string{standaloneAnnotation: "true"},
}

var configViewCmd = &cobra.Command{
	Use:         "view",
	Short:       "Display current configuration",
	Long:        `Display the effective configuration in the selected format.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit configuration in $EDITOR",
	Long:        `Open the configuration file in your default editor (from $EDITOR environment variable).`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runConfigEdit,
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Get a specific configuration value",
	Long:        `Retrieve the value of a configuration key using dot notation (e.g., api.base_url).`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Set a specific configuration value",
	Long:        `Set the value of a configuration key using dot notation (e.g., api.timeout 10s).`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show configuration file path",
	Long:        `Display the path to the configuration file.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// configView prints the file path above the YAML in text mode
type configView struct {
	path   string
	config *config.Config
}

func (v configView) RenderText(w io.Writer, s ux.Styles) error {
	data, err := yaml.Marshal(v.config)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %s\n\n%s", s.Key.Render("Configuration file:"), v.path, data)
	return err
}

// MarshalYAML exposes only the configuration
func (v configView) MarshalYAML() (interface{}, error) { return v.config, nil }

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := config.Load(cc.ConfigFile)
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if cc.Format == "json" {
		return renderStandalone(cmd, cc, cfg)
	}
	return renderStandalone(cmd, cc, configView{path: cc.ConfigFile, config: cfg})
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	// Ensure config exists
	if _, err := os.Stat(cc.ConfigFile); os.IsNotExist(err) {
		if err := config.Default().Save(cc.ConfigFile); err != nil {
			return ux.FormatError(err, "creating configuration")
		}
	}

	// Get editor from environment
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.CommandContext(cmd.Context(), editor, cc.ConfigFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	// Validate the edited config
	if _, err := config.Load(cc.ConfigFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Configuration may contain errors.\n")
		fmt.Fprintf(cmd.ErrOrStderr(), "Please check and fix the configuration file.\n")
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration updated successfully")
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := config.Load(cc.ConfigFile)
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	// Edit the file alone so environment overrides are not written back
	cfg, err := config.LoadFile(cc.ConfigFile)
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.Save(cc.ConfigFile); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s = %s\n", key, value)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cc.ConfigFile)
	return nil
}

// renderStandalone formats v for commands that run without an App
func renderStandalone(cmd *cobra.Command, cc *CommandContext, v any) error {
	format := cc.Format
	if format == "" {
		format = "text"
	}
	formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: cc.NoColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(v)
}
