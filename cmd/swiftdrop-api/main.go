// README: Entry point; loads config, wires services, starts the HTTP server.
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

	"go.uber.org/zap"

	"swiftdrop/internal/config"
	httptransport "swiftdrop/internal/http"
	"swiftdrop/internal/infra"
	gmaps "swiftdrop/internal/maps"
	"swiftdrop/internal/modules/dispatch"
	"swiftdrop/internal/modules/identity"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/modules/pricing"
	"swiftdrop/internal/modules/proof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool))
	orderSvc := order.NewService(order.NewPGStore(dbPool), pricingSvc)

	pool := dispatch.NewPool(redisClient)
	scheduler := dispatch.NewScheduler(orderSvc, pool, cfg.Dispatch, logger)
	orderSvc.AttachScheduler(scheduler)

	identitySvc := identity.NewService(redisClient, identity.NewLogSender(logger),
		cfg.Identity.CodeTTL, cfg.Identity.SessionTTL)
	uploader := proof.NewLocalUploader(cfg.Proof.BaseURL)

	places, err := gmaps.NewPlacesService(cfg.Maps.APIKey)
	if err != nil {
		logger.Fatal("places init", zap.Error(err))
	}
	route, err := gmaps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		logger.Fatal("route init", zap.Error(err))
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Order:    orderSvc,
		Pricing:  pricingSvc,
		Identity: identitySvc,
		Pool:     pool,
		Uploader: uploader,
		Places:   places,
		Route:    route,
		Verifier: identitySvc,
		Log:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("swiftdrop api listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
}
