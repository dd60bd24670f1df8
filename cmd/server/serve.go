package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rideconnect/internal/cache"
	"rideconnect/internal/config"
	"rideconnect/internal/controllers"
	"rideconnect/internal/middleware"
	"rideconnect/internal/realtime"
	"rideconnect/internal/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, db, accessLog, err := openDB()
	if err != nil {
		return err
	}

	rdb, err := config.InitializeRedisClient(cfg.Redis)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, not sharing the announcement feed cache")
	}
	switch {
	case rdb != nil:
		defer rdb.Close()
		controllers.UseFeedCache(cache.NewRedisFeedCache(rdb, cfg.Redis.FeedTTL))
	case !cfg.Realtime.PGNotify:
		// Other instances could not invalidate an in-process cache.
		controllers.UseFeedCache(cache.NewMemoryFeedCache(cfg.Redis.FeedTTL))
	}

	hub := realtime.NewHub()
	defer hub.Close()

	// With PG_NOTIFY every instance hears every announcement through
	// Postgres; otherwise posts go straight to this instance's hub.
	var notifier realtime.Notifier = hub
	if cfg.Realtime.PGNotify {
		notifier = realtime.NewPGNotifier(db, cfg.Realtime.Channel)
	}
	controllers.UseRealtime(hub, notifier)
	controllers.UseAllowedOrigins(cfg.CORSOrigins)

	router := routes.SetupRouter(routes.Options{AccessLog: accessLog})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.EnableCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("Server running at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Realtime.PGNotify {
		listener := realtime.NewPGListener(cfg.Database.DSN(), cfg.Realtime.Channel, hub)
		g.Go(func() error {
			return listener.Run(gctx)
		})
	}

	return g.Wait()
}
