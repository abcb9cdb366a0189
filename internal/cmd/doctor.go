package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/internal/auth"
	"github.com/felixgeelhaar/taskboard/internal/config"
	"github.com/felixgeelhaar/taskboard/internal/health"
	"github.com/felixgeelhaar/taskboard/internal/ux"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run client diagnostics",
	Long: `Run diagnostics to check that taskboard is set up correctly.

Checks include:
  • Configuration file loads and validates
  • Token file exists and is private
  • Gateway is reachable (GET /health at the base URL's origin)
  • Stored session is accepted by the backend

The command fails when any check is unhealthy. A missing login only
degrades the report. The session check revalidates the stored token like
any other command: if the backend rejects it or does not answer within
the 5s check timeout, the token is cleared and you need to log in again.

Examples:
  taskboard doctor
  taskboard doctor --format json`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{standaloneAnnotation: "true"},
	RunE:        runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorView struct {
	*health.Report
}

// MarshalYAML flattens the report
func (v doctorView) MarshalYAML() (interface{}, error) { return v.Report, nil }

func (v doctorView) RenderText(w io.Writer, s ux.Styles) error {
	for _, c := range v.Checks {
		icon, style := "✓", s.Success
		switch c.Status {
		case health.StatusDegraded:
			icon, style = "⚠", s.Warning
		case health.StatusUnhealthy:
			icon, style = "✗", s.Error
		}
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", style.Render(icon), c.Name, c.Message); err != nil {
			return err
		}
		if c.Suggestion != "" {
			if _, err := fmt.Fprintf(w, "      %s\n", s.Muted.Render(c.Suggestion)); err != nil {
				return err
			}
		}
	}

	summary := s.Success.Render("Everything looks good.")
	switch v.Status {
	case health.StatusDegraded:
		summary = s.Warning.Render("Usable, with warnings.")
	case health.StatusUnhealthy:
		summary = s.Error.Render("Some checks failed.")
	}
	_, err := fmt.Fprintf(w, "\n%s\n", summary)
	return err
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	manager := health.NewManager()
	manager.AddChecker(health.NewConfigChecker(cc.ConfigFile).WithLoader(func() (*config.Config, error) {
		return loadConfig(cc)
	}))

	// The remaining checks need a working configuration; the config check
	// reports why when it is not.
	app, appErr := NewApp(cmd.Context(), cc, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if appErr == nil {
		runStateFrom(cmd.Context()).app = app

		if fs, ok := app.Auth.Session().Store().(*auth.FileStore); ok {
			manager.AddChecker(health.NewTokenFileChecker(fs.Path()))
		}
		manager.AddChecker(health.NewGatewayChecker(app.Config.API.BaseURL,
			api.WithTimeout(app.Config.API.Timeout),
			api.WithLogger(app.Logger),
			api.WithMetrics(app.Metrics),
		))
		manager.AddChecker(health.NewSessionChecker(app.Auth))
	}

	report := manager.Run(cmd.Context())

	if appErr == nil {
		err = app.Render(doctorView{report})
	} else {
		err = renderStandalone(cmd, cc, doctorView{report})
	}
	if err != nil {
		return err
	}

	if !report.Healthy() {
		return fmt.Errorf("diagnostics failed")
	}
	return nil
}
