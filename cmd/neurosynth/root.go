package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drblury/neurosynth/config"
	"github.com/drblury/neurosynth/store"
)

// app carries state shared by the subcommands once the root has resolved
// the configuration.
type app struct {
	v          *viper.Viper
	configFile string
	envFiles   []string

	cfg    config.Config
	logger *slog.Logger

	openStore func(cfg config.Database, logger *slog.Logger) (*store.Store, error)
}

func newApp() *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{
		v:         v,
		envFiles:  []string{".env"},
		openStore: openStore,
	}
}

func openStore(cfg config.Database, logger *slog.Logger) (*store.Store, error) {
	return store.Open(cfg.URL,
		store.WithSchema(cfg.Schema),
		store.WithLogger(logger),
		store.WithPool(cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime),
	)
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neurosynth",
		Short:         "Query API over a Neurosynth PostgreSQL/PostGIS database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML, TOML or JSON config file")
	flags.String("database-url", "", "Database connection string (overrides DB_URL and DATABASE_URL)")
	flags.String("schema", "", "Schema holding the Neurosynth tables")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: json or text")

	mustBind(a.v.BindPFlag("database.url", flags.Lookup("database-url")))
	mustBind(a.v.BindPFlag("database.schema", flags.Lookup("schema")))
	mustBind(a.v.BindPFlag("log.level", flags.Lookup("log-level")))
	mustBind(a.v.BindPFlag("log.format", flags.Lookup("log-format")))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.initialize(cmd)
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newSearchCommand(a),
	)
	return rootCmd
}

// initialize resolves the configuration in order of increasing precedence:
// defaults, config file, .env and environment, then flags.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return err
	}
	if err := config.BindEnv(a.v); err != nil {
		return err
	}
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// mustBind panics on a flag binding error, which only happens when a flag
// name is misspelled.
func mustBind(err error) {
	if err != nil {
		panic(fmt.Sprintf("bind flag: %v", err))
	}
}
