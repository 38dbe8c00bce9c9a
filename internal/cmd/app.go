package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhollis/agentbench/internal/audit"
	"github.com/mhollis/agentbench/internal/catalog"
	"github.com/mhollis/agentbench/internal/config"
	"github.com/mhollis/agentbench/internal/executor"
	"github.com/mhollis/agentbench/internal/logger"
	"github.com/mhollis/agentbench/internal/models"
	"github.com/mhollis/agentbench/internal/orchestrator"
	"github.com/mhollis/agentbench/internal/platform"
	"github.com/mhollis/agentbench/internal/results"
)

// nativeRecordPool is the size of the seeded local contact pool the native
// platform and the fallback substitution path draw samples from.
const nativeRecordPool = 25

// app holds the wired engine components behind a single CLI invocation.
type app struct {
	cfg      *config.Config
	log      *logger.ConsoleLogger
	catalog  *catalog.Catalog
	registry *platform.Registry
	prober   platform.Prober
	manager  *results.Manager
	orch     *orchestrator.Orchestrator
	audit    *audit.Store
}

// Close releases resources held by the app.
func (a *app) Close() error {
	if a.audit != nil {
		return a.audit.Close()
	}
	return nil
}

// loadAppConfig loads configuration honoring the --config flag, falling back
// to .agentbench/config.yaml in the working directory.
func loadAppConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyRunFlags overlays run/sweep flag values onto the loaded config.
// Only flags the caller actually set take effect.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("user") {
		user, _ := cmd.Flags().GetString("user")
		cfg.UserID = user
	}
	if cmd.Flags().Changed("timeout") {
		timeoutStr, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", timeoutStr, err)
		}
		cfg.Timeout = timeout
	}
	if cmd.Flags().Changed("sample-size") {
		sampleSize, _ := cmd.Flags().GetInt("sample-size")
		cfg.SampleSize = sampleSize
	}
	if cmd.Flags().Changed("disable-fallback") {
		disable, _ := cmd.Flags().GetBool("disable-fallback")
		cfg.DisableFallback = disable
	}
	if cmd.Flags().Changed("store") {
		store, _ := cmd.Flags().GetString("store")
		cfg.StorePath = store
	}
	return cfg.Validate()
}

// newLogger builds the console logger from config, with --verbose forcing
// debug verbosity.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.ConsoleLogger {
	logLevel := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = "debug"
	}
	return logger.NewConsoleLogger(os.Stdout, logLevel)
}

// configProber reports connection state from configuration: the native
// platform is always connected with the local pool, a live integration is
// connected when an analysis endpoint is configured for it.
func configProber(cfg *config.Config, pool int) platform.Prober {
	return platform.ProberFunc(func(_ context.Context, p models.Platform) (bool, int, error) {
		if p == models.PlatformNative {
			return true, pool, nil
		}
		_, ok := cfg.Endpoints[string(p)]
		return ok, 0, nil
	})
}

// newViewApp wires only the components read-only commands need: config,
// logger, platform registry, and the result manager. Viewing state never
// opens the audit log or builds the execution engine.
func newViewApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadAppConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return nil, err
	}

	log := newLogger(cmd, cfg)

	prober := configProber(cfg, nativeRecordPool)
	registry := platform.NewRegistry()
	if err := registry.Check(cmd.Context(), prober); err != nil {
		return nil, fmt.Errorf("platform check failed: %w", err)
	}

	manager, err := results.NewManager(results.NewFileStore(cfg.StorePath))
	if err != nil {
		return nil, fmt.Errorf("failed to load result store: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		prober:   prober,
		manager:  manager,
	}, nil
}

// newApp wires the full engine for one CLI invocation: everything
// newViewApp builds plus the catalog, executor, audit log, and
// orchestrator. sweepMode selects the platform-agnostic comparison catalog
// instead of the fixed-platform production catalog.
func newApp(cmd *cobra.Command, sweepMode bool) (*app, error) {
	a, err := newViewApp(cmd)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	cat := catalog.Default()
	if sweepMode {
		cat, err = catalog.Sweep(models.AllPlatforms())
		if err != nil {
			return nil, fmt.Errorf("failed to build sweep catalog: %w", err)
		}
	}

	records := executor.NewSeededSource(nativeRecordPool)

	invokers := make(map[models.Platform]executor.Invoker)
	for name, endpoint := range cfg.Endpoints {
		invokers[models.Platform(name)] = executor.NewHTTPInvoker(endpoint)
	}

	var auditStore *audit.Store
	var sink executor.AuditSink
	if cfg.AuditDBPath != "" {
		auditStore, err = audit.NewStore(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		sink = auditStore
	}

	exec := executor.New(executor.Params{
		Invokers:        invokers,
		Records:         records,
		Simulation:      cfg.Simulation,
		SampleSize:      cfg.SampleSize,
		DisableFallback: cfg.DisableFallback,
		Audit:           sink,
		Log:             a.log,
	})

	a.catalog = cat
	a.audit = auditStore
	a.orch = orchestrator.New(orchestrator.Params{
		Catalog:   cat,
		Executor:  exec,
		Platforms: a.registry,
		Results:   a.manager,
		UserID:    cfg.UserID,
		Timeout:   cfg.Timeout,
		Pacer:     orchestrator.DelayPacer(cfg.PacingDelay),
		Log:       a.log,
	})

	return a, nil
}

// addConfigFlags registers the flags every subcommand shares.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .agentbench/config.yaml)")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")
}

// addRunFlags registers the flags shared by run and sweep.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "User context to execute under (overrides config)")
	cmd.Flags().String("timeout", "", "Per-platform-call timeout (e.g. 30s, 2m)")
	cmd.Flags().Int("sample-size", 0, "Records to analyze per run (max 10)")
	cmd.Flags().Bool("disable-fallback", false, "Fail live calls instead of degrading to simulation")
	cmd.Flags().String("store", "", "Path to the results store file")
}
