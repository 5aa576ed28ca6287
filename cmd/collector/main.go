package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_reputation/internal/adapters/fetch"
	"hotel_reputation/internal/adapters/observability"
	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
	"hotel_reputation/internal/shared"
	"hotel_reputation/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	observability.RegisterDefault()
	observability.Serve()

	date := domain.DateColumnOf(time.Now())
	if cfg.RunDate != "" {
		d, err := domain.ParseDateColumn(cfg.RunDate)
		if err != nil {
			log.Error().Err(err).Msg("invalid RUN_DATE")
			return 2
		}
		date = d
	}

	cat, err := shared.LoadCatalog(cfg.SourcesFile)
	if err != nil {
		log.Error().Err(err).Msg("load sources catalog failed")
		return 2
	}
	sources, err := shared.Select(cat, cfg.Sources)
	if err != nil {
		log.Error().Err(err).Msg("invalid SOURCES")
		return 2
	}

	history, closeHistory, err := storage.OpenHistory(ctx, cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		// history is optional for a collection run
		log.Warn().Err(err).Str("driver", cfg.HistoryDriver).Msg("run history disabled")
	}
	defer closeHistory()

	log.Info().
		Str("date", string(date)).
		Int("sources", len(sources)).
		Int("hotels", len(cat.Hotels)).
		Int("workers", cfg.Workers).
		Msg("collector starting")

	svc := app.NewCollectService(fetch.New(cfg.FetchRPS, cfg.FetchTimeout), history, cat.Hotels, cfg.DataDir)
	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var wg sync.WaitGroup
	statuses := make([]domain.RunStatus, len(sources))

	for i, src := range sources {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			statuses[i] = domain.RunFailed
			continue
		}

		wg.Add(1)
		go func(i int, src domain.Source) {
			defer wg.Done()
			defer sem.Release(1)

			rep, err := svc.CollectSource(ctx, src, date)
			if err != nil {
				log.Error().Str("source", src.Name).Err(err).Msg("source run failed")
				statuses[i] = domain.RunFailed
				return
			}
			statuses[i] = rep.Status
		}(i, src)
	}

	wg.Wait()
	code := ledger.ExitCode(statuses)
	log.Info().Str("date", string(date)).Int("exit_code", code).Msg("collection completed")
	return code
}
