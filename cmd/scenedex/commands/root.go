package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/config"
	"github.com/scenedex/scenedex/internal/engine"
	"github.com/scenedex/scenedex/internal/logging"
	"github.com/scenedex/scenedex/pkg/types"
)

// Persistent flags shared by every subcommand
var (
	flagUser    string
	flagProject string
	flagDBPath  string
	flagLog     string
	jsonOutput  bool
)

// NewRootCmd creates the root command with persistent flags
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenedex",
		Short: "Index and search project content with graph context",
		Long: `scenedex indexes the text content of a project into semantically
searchable chunks and extracts a typed relationship graph between files
(who attaches, instantiates, or references what). Search results can be
enriched with connected files and a centrality ranking of the project.

All data is scoped to a tenant: pass --user and --project, or set
SCENEDEX_USER_ID and SCENEDEX_PROJECT_ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagUser, "user", "", "tenant user id (default $SCENEDEX_USER_ID)")
	cmd.PersistentFlags().StringVar(&flagProject, "project", "", "tenant project id (default $SCENEDEX_PROJECT_ID)")
	cmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "database path (default $SCENEDEX_DB_PATH or ~/.scenedex/index.db)")
	cmd.PersistentFlags().StringVar(&flagLog, "log-level", "", "log verbosity: debug, info, warn, error (default $SCENEDEX_LOG_LEVEL or info)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewConnectionsCmd())
	cmd.AddCommand(NewCentralCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the CLI
func Execute() error {
	// Environment files carry provider keys and tenant defaults.
	_ = godotenv.Load()

	return NewRootCmd().Execute()
}

// loadConfig builds the engine configuration from the environment with
// flag overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.DatabasePath = flagDBPath
	}
	if flagLog != "" {
		cfg.LogLevel = flagLog
	}
	return cfg, nil
}

// tenantFromFlags resolves the tenant from flags, falling back to the
// environment.
func tenantFromFlags() (types.Tenant, error) {
	tenant := types.Tenant{
		UserID:    stringOrEnv(flagUser, "SCENEDEX_USER_ID"),
		ProjectID: stringOrEnv(flagProject, "SCENEDEX_PROJECT_ID"),
	}
	if err := tenant.Validate(); err != nil {
		return types.Tenant{}, err
	}
	return tenant, nil
}

// newService wires an engine for one command invocation. The caller must
// Close it.
func newService() (*engine.Service, *zap.SugaredLogger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	svc, err := engine.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}
