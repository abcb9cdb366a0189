package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/internal/telemetry"
)

// Command annotations
const (
	// routeAnnotation binds a command to a route path; ":id" style
	// segments are filled from the command's positional arguments in order.
	routeAnnotation = "taskboard/route"

	// standaloneAnnotation marks commands that never talk to the backend
	// and therefore skip session setup.
	standaloneAnnotation = "taskboard/standalone"
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Task management client",
	Long: `taskboard is a command line client for the task management platform.

Every command is a view bound to a route. Before a command runs, the route
gate checks the current session: protected views require a valid login, and
administrative views require the admin role. Refused navigations report
where the session would be sent instead.

Examples:
  taskboard auth login --email alice@example.com
  taskboard tasks list
  taskboard tasks create --title "Write report" --priority high --worker 3
  taskboard users list
  taskboard navigate /admin/users`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is <home>/config.yaml)")
	flags.String("home", "", "taskboard home directory (default is $TASKBOARD_HOME or ~/.taskboard)")
	flags.String("api-url", "", "backend base URL (overrides api.base_url)")
	flags.StringP("format", "o", "", "output format: text, json, yaml (default from config)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text, json")
	flags.Bool("ephemeral", false, "keep the session token in memory only")
	flags.String("metrics-file", "", "write Prometheus metrics to this file on exit")
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	run := &runState{}
	runCtx := withRunState(ctx, run)
	setContexts(rootCmd, runCtx)

	err := rootCmd.ExecuteContext(runCtx)
	run.finish(ctx, err)
	return err
}

// setContexts hands every command this run's context. Cobra only fills in
// a subcommand's context when it has none, so a context set by an earlier
// run would otherwise stick.
func setContexts(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContexts(child, ctx)
	}
}

// runState carries what setup created to the end of the run, since
// post-run hooks are skipped when a command fails.
type runState struct {
	command string
	start   time.Time
	app     *App
	span    trace.Span
}

type runStateKey struct{}

func withRunState(ctx context.Context, run *runState) context.Context {
	return context.WithValue(ctx, runStateKey{}, run)
}

func runStateFrom(ctx context.Context) *runState {
	if run, ok := ctx.Value(runStateKey{}).(*runState); ok {
		return run
	}
	return &runState{}
}

func (r *runState) finish(ctx context.Context, err error) {
	if r.command == "" {
		return
	}

	elapsed := time.Since(r.start)
	m := metrics.GetDefault()
	m.RecordCommand(r.command, err == nil, elapsed)

	if r.span != nil {
		if err != nil {
			telemetry.RecordError(r.span, err)
		} else {
			telemetry.RecordSuccess(r.span)
		}
		telemetry.RecordDuration(r.span, "command", elapsed)
		r.span.End()
	}

	if r.app == nil {
		return
	}
	if err != nil {
		r.app.Logger.WithError(err).DebugContext(ctx, "command failed", "command", r.command)
	}
	if closeErr := r.app.Close(ctx); closeErr != nil {
		r.app.Logger.WithError(closeErr).Warn("failed to shut down cleanly")
	}
}

// setup builds the App for the command about to run and enforces its route.
func setup(cmd *cobra.Command, args []string) error {
	run := runStateFrom(cmd.Context())
	run.command = cmd.CommandPath()
	run.start = time.Now()

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if cmd.Annotations[standaloneAnnotation] == "true" {
		return nil
	}

	app, err := NewApp(cmd.Context(), cc, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	run.app = app

	ctx, span := telemetry.StartCommandSpan(cmd.Context(), run.command)
	run.span = span
	cmd.SetContext(withApp(ctx, app))

	return guard(cmd, args, app)
}

// guard navigates to the command's route and refuses the command when the
// gate redirects.
func guard(cmd *cobra.Command, args []string, app *App) error {
	pattern, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}

	decision := app.Gate.Navigate(cmd.Context(), routePath(pattern, args))
	app.Logger.DebugContext(cmd.Context(), "route checked",
		"command", cmd.CommandPath(),
		"path", decision.Path,
		"action", string(decision.Action),
		"reason", decision.Reason,
	)
	return decision.Err()
}
