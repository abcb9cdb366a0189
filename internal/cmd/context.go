package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/internal/auth"
	"github.com/felixgeelhaar/taskboard/internal/config"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/internal/router"
	"github.com/felixgeelhaar/taskboard/internal/store"
	"github.com/felixgeelhaar/taskboard/internal/telemetry"
	"github.com/felixgeelhaar/taskboard/internal/ux"
	"github.com/felixgeelhaar/taskboard/internal/version"
)

// CommandContext holds the global command-line flags. Commands read it
// instead of package-level variables so that runs do not share state.
type CommandContext struct {
	// Output control
	Format  string
	NoColor bool

	// Configuration
	ConfigFile string
	Home       string
	APIURL     string
	LogLevel   string
	LogFormat  string

	// Session
	Ephemeral bool

	MetricsFile string
}

// NewCommandContext extracts command context from cobra.Command flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	home, err := flags.GetString("home")
	if err != nil {
		return nil, err
	}
	apiURL, err := flags.GetString("api-url")
	if err != nil {
		return nil, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}
	ephemeral, err := flags.GetBool("ephemeral")
	if err != nil {
		return nil, err
	}
	metricsFile, err := flags.GetString("metrics-file")
	if err != nil {
		return nil, err
	}

	if home == "" {
		home, err = config.DefaultHome()
		if err != nil {
			return nil, err
		}
	}
	if configFile == "" {
		configFile = config.Path(home)
	}

	return &CommandContext{
		Format:      format,
		NoColor:     noColor || os.Getenv("NO_COLOR") != "",
		ConfigFile:  configFile,
		Home:        home,
		APIURL:      apiURL,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Ephemeral:   ephemeral,
		MetricsFile: metricsFile,
	}, nil
}

// App is everything a command needs, wired once per run:
// config, logger, metrics, session, client, gate and stores.
type App struct {
	Options *CommandContext
	Config  *config.Config
	Logger  *log.Logger
	Metrics *metrics.Metrics

	Client *api.Client
	Auth   *auth.Manager
	Gate   *router.Gate

	Tasks    *store.Tasks
	Users    *store.Users
	Comments *store.Comments

	out      io.Writer
	format   string
	noColor  bool
	shutdown func(context.Context) error
}

// NewApp loads configuration and wires the client stack.
func NewApp(ctx context.Context, cc *CommandContext, out, errOut io.Writer) (*App, error) {
	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Logging.Level),
		Format:         log.ParseFormat(cfg.Logging.Format),
		Output:         log.NewOutput(errOut),
		ServiceName:    "taskboard",
		ServiceVersion: version.Version,
	})
	log.SetDefaultLogger(logger)

	shutdown, err := telemetry.InitProvider(ctx, telemetry.Config{
		ServiceName:    "taskboard",
		ServiceVersion: version.Version,
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		SampleRate:     1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	m := metrics.GetDefault()

	var tokens auth.TokenStore
	if cc.Ephemeral {
		tokens = auth.NewMemoryStore()
	} else {
		tokens = auth.NewFileStore(cfg.TokenFile(cc.Home))
	}
	session, err := auth.NewSession(ctx, tokens)
	if err != nil {
		// An unreadable token file leaves the user logged out.
		logger.WithError(err).Warn("ignoring stored session")
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTokenSource(session),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
	)
	manager := auth.NewManager(session, client, logger, auth.WithMetrics(m))

	var routes []router.Route
	if cfg.RoutesFile != "" {
		routes, err = router.LoadRoutes(cfg.RoutesFile)
		if err != nil {
			return nil, err
		}
	}
	gate, err := router.New(routes, manager, router.WithLogger(logger), router.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithLogger(logger), store.WithMetrics(m)}

	format := cc.Format
	if format == "" {
		format = cfg.Defaults.Format
	}

	return &App{
		Options:  cc,
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Client:   client,
		Auth:     manager,
		Gate:     gate,
		Tasks:    store.NewTasks(client, manager, storeOpts...),
		Users:    store.NewUsers(client, storeOpts...),
		Comments: store.NewComments(client, manager, storeOpts...),
		out:      out,
		format:   format,
		noColor:  cc.NoColor || cfg.Defaults.NoColor,
		shutdown: shutdown,
	}, nil
}

// loadConfig reads the config file and layers the flag overrides on top
func loadConfig(cc *CommandContext) (*config.Config, error) {
	cfg, err := config.Load(cc.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cc.APIURL != "" {
		cfg.API.BaseURL = cc.APIURL
	}
	if cc.LogLevel != "" {
		cfg.Logging.Level = cc.LogLevel
	}
	if cc.LogFormat != "" {
		cfg.Logging.Format = cc.LogFormat
	}
	if cc.Format != "" {
		cfg.Defaults.Format = cc.Format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Render writes v in the selected output format
func (a *App) Render(v any) error {
	formatter, err := ux.NewFormatter(a.format, &ux.FormatterOptions{
		Writer:  a.out,
		NoColor: a.noColor,
	})
	if err != nil {
		return err
	}
	return formatter.Format(v)
}

// Close flushes spans and writes the metrics file when requested
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	if a.Options.MetricsFile != "" {
		errs = append(errs, metrics.WriteTextfile(a.Options.MetricsFile))
	}
	return errors.Join(errs...)
}

type appKey struct{}

func withApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// appFrom returns the App that setup attached to the command
func appFrom(cmd *cobra.Command) (*App, error) {
	if app, ok := cmd.Context().Value(appKey{}).(*App); ok {
		return app, nil
	}
	return nil, fmt.Errorf("command %s ran without an application context", cmd.CommandPath())
}

// routePath fills the ":name" segments of pattern with args in order
func routePath(pattern string, args []string) string {
	segs := strings.Split(pattern, "/")
	next := 0
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") && next < len(args) {
			segs[i] = args[next]
			next++
		}
	}
	return strings.Join(segs, "/")
}
