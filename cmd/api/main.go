package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"estately/agent"
	"estately/agentreg"
	"estately/background"
	"estately/cache"
	"estately/category"
	"estately/config"
	"estately/db"
	"estately/geocode"
	"estately/httpapi"
	"estately/insight"
	"estately/llm"
	"estately/logging"
	"estately/metrics"
	"estately/notify"
	"estately/outbox"
	"estately/portal"
	"estately/property"
	"estately/propertyreg"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("bootstrap logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("bootstrap database pool", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, view counters write through", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	notifier := notify.NewLogNotifier(logger)
	geocoder := geocode.NewClient(cfg.GeocodeBaseURL)
	completions := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	agentRepo := agent.NewRepository()
	portalRepo := portal.NewRepository()
	agentRegRepo := agentreg.NewRepository()
	propertyRepo := property.NewRepository()
	propertyRegRepo := propertyreg.NewRepository()
	categoryRepo := category.NewRepository()
	insightStore := insight.NewStore()

	identity := portal.NewService(portalRepo, cfg.JWTSecret)
	agents := agent.NewService(pool, agentRepo, identity, notifier, logger)
	agentRegs := agentreg.NewService(pool, agentRegRepo, agentRepo, identity, notifier, m, logger)
	listings := property.NewService(pool, propertyRepo, geocoder, cfg.GeocodeCountry, cfg.RegistrationChargePercent, m, logger)
	propRegs := propertyreg.NewService(pool, propertyRegRepo, categoryRepo, listings, notifier, m, logger)
	insights := insight.NewService(pool, propertyRepo, insightStore, completions, m, logger)
	viewCounter := property.NewViewCounter(rdb, pool, propertyRepo, logger)

	server := httpapi.NewServer(httpapi.Deps{
		Logger:         logger,
		Pool:           pool,
		AgentRegs:      agentRegs,
		PropRegs:       propRegs,
		Listings:       listings,
		Agents:         agents,
		Identity:       identity,
		Insights:       insights,
		Views:          viewCounter,
		MetricsHandler: promhttp.Handler(),
	})

	runner := background.NewRunner(
		outbox.NewSweeper(pool, logger),
		viewCounter,
		logger,
		cfg.OutboxSweepInterval,
		cfg.ViewFlushInterval,
	)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("background runner stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("estately api listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
