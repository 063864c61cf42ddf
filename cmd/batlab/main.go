package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"codeberg.org/mutker/batlab/internal/analysis"
	"codeberg.org/mutker/batlab/internal/config"
	"codeberg.org/mutker/batlab/internal/errors"
	"codeberg.org/mutker/batlab/internal/logger"
	"codeberg.org/mutker/batlab/internal/observability"
	"codeberg.org/mutker/batlab/internal/pid"
	"codeberg.org/mutker/batlab/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

// result is the document printed on stdout for the report renderer.
type result struct {
	BatchID   string                `json:"batch_id"`
	Summaries []analysis.RunSummary `json:"summaries"`
	Groups    []analysis.GroupStats `json:"groups"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}

		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.FatalWithCode(appErr).Msg("batlab failed")
		}
		logger.Fatal().Err(err).Msg("batlab failed")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	errFactory := errors.New()

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Init(level, logger.IsService())
	logger.Debug().
		Str("data_dir", cfg.DataDir).
		Int("min_samples", cfg.MinSamples).
		Int("workers", cfg.Workers).
		Msg("Config loaded")

	obs, err := observability.New(prometheus.NewRegistry())
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	loader := analysis.NewLoader(cfg.MinSamples,
		analysis.WithWorkers(cfg.Workers),
		analysis.WithObserver(obs),
	)

	summaries, err := loader.Load(ctx, cfg.DataDir)
	if err != nil {
		return errFactory.Wrap(errors.ErrLoadCorpus, err)
	}

	groups := analysis.GroupBy(summaries, analysis.GroupKey(cfg.GroupBy), cfg.Baseline)
	batch := store.NewBatch(cfg.DataDir, cfg.MinSamples, summaries)

	// The batch is stored only once the result and metrics are known to be
	// writable; stdout is flushed last.
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result{
		BatchID:   batch.ID,
		Summaries: summaries,
		Groups:    groups,
	}); err != nil {
		return errFactory.Wrap(errors.ErrWriteResult, err)
	}

	if cfg.MetricsFile != "" {
		if err := obs.WriteTextfile(cfg.MetricsFile); err != nil {
			return errFactory.Wrap(errors.ErrWriteMetrics, err)
		}
	}

	if err := persist(ctx, cfg, batch); err != nil {
		return err
	}

	if _, err := out.WriteTo(stdout); err != nil {
		return errFactory.Wrap(errors.ErrWriteResult, err)
	}

	logger.Info().
		Str("batch_id", batch.ID).
		Int("runs", len(summaries)).
		Int("groups", len(groups)).
		Msg("Analysis complete")

	return nil
}

func persist(ctx context.Context, cfg *config.Config, batch *store.Batch) error {
	errFactory := errors.New()

	// One writer per database directory.
	if cfg.Store.Enabled {
		lockDir := filepath.Dir(cfg.Store.DBPath)
		if err := pid.Write(lockDir); err != nil {
			return errFactory.Wrap(errors.ErrStoreCorpus, err)
		}
		defer func() {
			if err := pid.Remove(lockDir); err != nil {
				logger.Warn().Err(err).Msg("failed to remove PID file")
			}
		}()
	}

	storeCfg := store.DefaultConfig()
	storeCfg.Enabled = cfg.Store.Enabled
	if cfg.Store.DBPath != "" {
		storeCfg.DBPath = cfg.Store.DBPath
	}

	repo, err := store.NewService(storeCfg, logger.Get())
	if err != nil {
		return errFactory.Wrap(errors.ErrStoreCorpus, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := repo.SaveBatch(ctx, batch); err != nil {
		return errFactory.Wrap(errors.ErrStoreCorpus, err)
	}

	if repo.IsEnabled() {
		logger.Info().Str("db_path", cfg.Store.DBPath).Msg("Batch stored")
	}
	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
