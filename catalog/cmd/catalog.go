package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercadito/catalog/catalog/internal/cache"
	"github.com/mercadito/catalog/catalog/internal/controller"
	catalogOtel "github.com/mercadito/catalog/catalog/internal/otel"
	"github.com/mercadito/catalog/catalog/internal/service"
	"github.com/mercadito/catalog/catalog/internal/upstream"
	"github.com/mercadito/catalog/internal/config"
	"github.com/mercadito/catalog/internal/constants"
	"github.com/mercadito/catalog/internal/infra"
	"github.com/mercadito/catalog/internal/log"
	"github.com/mercadito/catalog/internal/otel"
	"github.com/mercadito/catalog/internal/pacer"
)

func RunCatalogService(c context.Context) {
	c, span := catalogOtel.Tracer.Start(c, "RunCatalogService")
	defer span.End()

	logger := log.InitLogger(fmt.Sprintf("/var/log/%s.log", constants.AppCatalogService)).
		With().
		Str(log.KeyAppName, constants.AppCatalogService).
		Str(log.KeyTag, "main RunCatalogService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppCatalogService)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppCatalogService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("initialized otel sdk")
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(c, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cacheClient := infra.NewCacheClient(c, cfg.Cache)
	logger.Info().Msg("initialized cache")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "shutting down cache connection").Logger()
		logger.Info().Msg("shutting down cache connection")
		span.AddEvent("shutting down cache connection")
		if err := cacheClient.Close(); err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		span.AddEvent("shutdown cache connection")
		logger.Info().Msg("shutdown cache connection")
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing catalogService").Logger()
	logger.Info().Msg("initializing catalogService")
	upstreamClient := upstream.NewClient(cfg.Upstream)
	fetcher := upstream.NewFetcher(upstreamClient, cfg.Catalog.FetchPageSize)
	enrichPacer := pacer.New(time.Duration(cfg.Catalog.EnrichDelayMillis) * time.Millisecond)
	enricher := upstream.NewEnricher(upstreamClient, enrichPacer, cfg.Upstream.PriceInCents)
	snapshotStore := cache.NewSnapshotStore(
		cacheClient,
		time.Duration(cfg.Catalog.SnapshotTTLSeconds)*time.Second,
	)
	catalogService := service.NewCatalogService(
		upstreamClient,
		fetcher,
		enricher,
		snapshotStore,
		cfg.Upstream.PriceInCents,
	)
	logger.Info().Msg("initialized catalogService")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.Handle("/metrics", promhttp.Handler())
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "attach catalog controller").Logger()
	logger.Info().Msg("attaching catalog controller")
	controller.AttachCatalogController(
		router,
		catalogService,
		cfg.Application.Env,
		cfg.Catalog.DefaultLimit,
		cfg.Catalog.MaxLimit,
	)
	logger.Info().Msg("attached catalog controller")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context { return c },
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// Writes span a full upstream refetch on a cold cache, so the write
		// timeout has to cover the paced enrichment sequence.
		WriteTimeout: 15 * time.Minute,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	c = logger.WithContext(context.WithoutCancel(c))
	shutdownCtx, cancel := context.WithTimeout(c, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("server completely shutdown")
}
