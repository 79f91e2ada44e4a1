package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stakevest/config"
	"stakevest/core"
	"stakevest/core/state"
	"stakevest/indexer"
	"stakevest/native/vesting"
	"stakevest/observability/logging"
	telemetry "stakevest/observability/otel"
	"stakevest/oracle"
	"stakevest/rpc"
	"stakevest/storage"
)

const (
	serviceName = "stakevestd"
	envVar      = "STAKEVEST_ENV"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "stakevestd: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	addrs, err := cfg.Validate()
	if err != nil {
		return err
	}

	env := strings.TrimSpace(os.Getenv(envVar))
	if env == "" {
		env = cfg.Logging.Env
	}
	logger := logging.Setup(serviceName, env, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    env,
		Deployment: telemetry.Deployment{
			RewardToken:   addrs.RewardToken.String(),
			VestingToken:  addrs.VestingToken.String(),
			Owner:         addrs.Owner.String(),
			BlockInterval: cfg.BlockInterval(),
		},
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	clock := core.NewChainClock(cfg.Genesis(), cfg.BlockInterval())
	proc, err := core.NewProcessor(state.NewManager(db), clock, core.Params{
		Owner:        addrs.Owner,
		RewardToken:  addrs.RewardToken,
		VestingToken: addrs.VestingToken,
	})
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}
	proc.SetLogger(logger)
	proc.SetPauses(cfg.Pauses.View())

	allocOracle, reload, err := openOracle(cfg.Oracle)
	if err != nil {
		return err
	}
	if allocOracle != nil {
		proc.SetOracle(allocOracle)
	}
	if reload != nil {
		go reloadOnHangup(ctx, logger, reload)
	}

	var events rpc.EventSource
	if cfg.Indexer.Enabled {
		idx, err := indexer.Open(cfg.Indexer.DSN, logger)
		if err != nil {
			return fmt.Errorf("open indexer: %w", err)
		}
		defer idx.Close()
		proc.Subscribe(idx)
		events = idx
	}

	if err := proc.Init(ctx); err != nil {
		return fmt.Errorf("init ledger roles: %w", err)
	}
	logger.Info("engines ready",
		slog.String("network", cfg.NetworkName),
		slog.String("owner", addrs.Owner.String()),
		slog.String("reward_token", addrs.RewardToken.String()),
		slog.Uint64("height", clock.Height()))

	server := rpc.NewServer(proc, rpc.Config{
		Auth: rpc.AuthConfig{
			HMACSecret: cfg.Auth.HMACSecret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
		},
		Events: events,
		Logger: logger,
	})
	if err := server.Start(ctx, cfg.RPCAddress); err != nil {
		return fmt.Errorf("rpc server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// openOracle builds the allocation source for the externally sourced
// categories. The returned reload func is non-nil for file snapshots.
func openOracle(cfg config.Oracle) (vesting.AllocationOracle, func() error, error) {
	switch cfg.Mode {
	case config.OracleModeFile:
		file, err := oracle.LoadFile(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("load oracle snapshot: %w", err)
		}
		return file, file.Reload, nil
	case config.OracleModeHTTP:
		remote, err := oracle.NewHTTP(oracle.HTTPConfig{
			BaseURL:           cfg.URL,
			APIKey:            cfg.APIKey,
			Timeout:           time.Duration(cfg.TimeoutMs) * time.Millisecond,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("configure oracle: %w", err)
		}
		return remote, nil, nil
	default:
		return nil, nil, nil
	}
}

func reloadOnHangup(ctx context.Context, logger *slog.Logger, reload func() error) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := reload(); err != nil {
				logger.Error("oracle snapshot reload failed", slog.Any("error", err))
				continue
			}
			logger.Info("oracle snapshot reloaded")
		}
	}
}
