package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/todoboard/internal/adapters/remote/todoapi"
	"github.com/evanschultz/todoboard/internal/app"
	"github.com/evanschultz/todoboard/internal/config"
	"github.com/evanschultz/todoboard/internal/platform"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fang.Execute(ctx, newRootCommand(os.Stdout, os.Stderr), fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs one command line without fang's presentation layer.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseURL    string
	appName    string
	devMode    bool
	stderr     io.Writer
}

// runtimeEnv is the resolved configuration for one command run.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := &globalOptions{stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv(platform.EnvDevMode); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv(platform.EnvAppName)); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:     "todoboard",
		Short:   "Kanban board for a remote to-do server",
		Long:    "todoboard shows tasks from a REST to-do server in three status columns. Drag cards between columns with the mouse or keyboard, or script the same actions with subcommands.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd, opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.baseURL, "base-url", "", "task server base URL (overrides config)")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev) and file logging")

	root.AddCommand(
		newListCommand(opts),
		newAddCommand(opts),
		newMoveCommand(opts),
		newShowCommand(opts),
		newEditCommand(opts),
		newRemoveCommand(opts),
		newServeCommand(opts),
		newPathsCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

func (o *globalOptions) resolvePaths() (platform.Paths, error) {
	return platform.Resolve(platform.Options{
		AppName:    o.appName,
		DevMode:    o.devMode,
		ConfigPath: o.configPath,
	})
}

// load resolves paths, config and the runtime logger. Callers must Close the logger.
func (o *globalOptions) load(command string) (*runtimeEnv, error) {
	paths, err := o.resolvePaths()
	if err != nil {
		return nil, err
	}
	configPath := paths.ConfigPath
	cfg, err := config.Load(configPath, config.Default(paths.LogDir))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}

	baseURL := strings.TrimSpace(o.baseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(platform.EnvBaseURL))
	}
	if baseURL != "" {
		cfg.Remote.BaseURL = baseURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Debug("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("configuration loaded", "config_path", configPath, "base_url", cfg.Remote.BaseURL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// close releases the runtime logger.
func (e *runtimeEnv) close(stderr io.Writer) {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// newClient builds the remote task store client from config.
func (e *runtimeEnv) newClient() (*todoapi.Client, error) {
	timeout, err := e.cfg.Remote.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	client, err := todoapi.New(todoapi.Config{
		BaseURL:   e.cfg.Remote.BaseURL,
		Timeout:   timeout,
		UserAgent: "todoboard/" + version,
	}, todoapi.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("configure task client: %w", err)
	}
	return client, nil
}

// newSession builds a board session over the remote task store.
func (e *runtimeEnv) newSession() (*app.Session, *todoapi.Client, error) {
	client, err := e.newClient()
	if err != nil {
		return nil, nil, err
	}
	return app.NewSession(client, app.SessionConfig{Logger: e.logger}), client, nil
}

// userError keeps the error chain while printing the one-line user message.
type userError struct {
	err error
}

func (e *userError) Error() string {
	return app.UserMessage(e.err)
}

func (e *userError) Unwrap() error {
	return e.err
}

func asUserError(err error) error {
	if err == nil {
		return nil
	}
	var already *userError
	if errors.As(err, &already) {
		return err
	}
	return &userError{err: err}
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
