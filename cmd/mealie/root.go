package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsclarke/mealie/internal/config"
	"github.com/rsclarke/mealie/internal/logging"
	"github.com/rsclarke/mealie/internal/session"
	"github.com/rsclarke/mealie/internal/telemetry"
)

type rootFlags struct {
	configPath string
	url        string
	apiKey     string
	username   string
	password   string
	sessionDB  string
	keyring    bool
	jq         string
	raw        bool
	trace      bool
	logLevel   string
}

// app is the state shared by every command of one invocation.
type app struct {
	flags  rootFlags
	cfg    *config.Config
	logger *zap.Logger

	store    session.Store
	shutdown func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mealie",
		Short: "Command line client for the Mealie recipe manager",
		Long: `mealie talks to a Mealie server's REST API. It can log in and keep
the session, browse and manage recipes, tags, meal plans and shopping lists,
and create or download backups.

Settings come from flags, MEALIE_* environment variables (a .env file is
read if present) and the config file, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", config.DefaultPath(), "config file path")
	f.StringVar(&a.flags.url, "url", "", "Mealie server URL (env: MEALIE_URL)")
	f.StringVar(&a.flags.apiKey, "api-key", "", "API key (env: MEALIE_API_KEY)")
	f.StringVar(&a.flags.username, "username", "", "username for password login (env: MEALIE_USERNAME)")
	f.StringVar(&a.flags.password, "password", "", "password for password login (env: MEALIE_PASSWORD)")
	f.StringVar(&a.flags.sessionDB, "session-db", "", "session database path (env: MEALIE_SESSION_DB)")
	f.BoolVar(&a.flags.keyring, "keyring", false, "keep sessions in the OS keyring instead of the session database")
	f.StringVar(&a.flags.jq, "jq", "", "filter JSON output with a jq expression")
	f.BoolVarP(&a.flags.raw, "raw", "r", false, "print string results without quotes")
	f.BoolVar(&a.flags.trace, "trace", false, "print OpenTelemetry spans for API calls to stderr")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug|info|warn|error")

	cmd.AddCommand(
		newAboutCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newRefreshCmd(a),
		newWhoamiCmd(a),
		newRecipesCmd(a),
		newTagsCmd(a),
		newCategoriesCmd(a),
		newMealPlansCmd(a),
		newShoppingListsCmd(a),
		newBackupsCmd(a),
		newDebugCmd(a),
	)
	return cmd
}

// setup loads configuration and applies flags given on the command line
// over it.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("url") {
		cfg.URL = a.flags.url
	}
	if f.Changed("api-key") {
		cfg.APIKey = a.flags.apiKey
	}
	if f.Changed("username") {
		cfg.Username = a.flags.username
	}
	if f.Changed("password") {
		cfg.Password = a.flags.password
	}
	if f.Changed("session-db") {
		cfg.SessionDB = a.flags.sessionDB
	}
	if f.Changed("keyring") {
		cfg.Keyring = a.flags.keyring
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	a.cfg = cfg

	a.logger, err = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	if a.flags.trace {
		a.shutdown, err = telemetry.Init(cmd.ErrOrStderr(), a.logger.Named("telemetry"))
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
	}
	return nil
}

// close releases what setup and the command opened.
func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil && a.logger != nil {
			a.logger.Warn("flush traces", zap.Error(err))
		}
	}
	if c, ok := a.store.(io.Closer); ok {
		_ = c.Close()
	}
	if a.logger != nil {
		logging.Sync(a.logger)
	}
}

// run executes the CLI with args, writing command output to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{logger: zap.NewNop()}
	defer a.close(ctx)

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
