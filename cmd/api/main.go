package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	server "hotel_reputation/internal/adapters/http_server"
	"hotel_reputation/internal/adapters/observability"
	redisad "hotel_reputation/internal/adapters/redis"
	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/shared"
	"hotel_reputation/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	cat, err := shared.LoadCatalog(cfg.SourcesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load sources catalog failed")
	}

	history, closeHistory, err := storage.OpenHistory(ctx, cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.HistoryDriver).Msg("open run history failed")
	}
	defer closeHistory()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving uncached")
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	// deps
	q := app.NewQueryService(cat, cfg.DataDir, history, cache, cfg.CacheTTL)
	e := app.NewEditService(cat, cfg.DataDir, q)

	// http
	reg := observability.InitRegistry()
	srv := server.New(server.Options{Metrics: observability.MetricsHandler(reg)})
	srv.MountHandlers(&server.Handlers{Q: q, E: e})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Int("sources", len(cat.Sources)).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
