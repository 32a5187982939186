package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orbitaledge/internal/handlers"
	"orbitaledge/internal/repository"
	"orbitaledge/internal/service"
	"orbitaledge/pkg/database"
	"orbitaledge/pkg/redis"
)

type serveOptions struct {
	port    string
	migrate bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog API",
		Example: `  # Start on PORT (default 4000)
  orbital serve

  # Start on a custom port without running migrations
  orbital serve --port 8080 --migrate=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "run database migrations before serving")

	return cmd
}

func runServe(ctx context.Context, a *app, opts serveOptions) error {
	cfg, log := a.cfg, a.log
	if opts.port != "" {
		cfg.App.Port = opts.port
	}

	log.Info("Orbital Edge API starting",
		zap.String("env", cfg.App.Env),
		zap.Bool("debug", cfg.App.Debug),
	)

	db, err := database.Connect(cfg.DB, log, cfg.App.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	if opts.migrate {
		if err := database.Migrate(db, log); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	redisClient, err := redis.Connect(cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	imageRepo := repository.NewImageRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	imageService := service.NewImageService(imageRepo, cacheRepo, cfg.Cache.ImageTTL, log)
	orderService := service.NewOrderService(orderRepo, imageRepo, log)
	healthService := service.NewHealthService(database.NewPinger(db), 5*time.Second, cfg.IsDevelopment(), log)

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Services{
		Images: imageService,
		Orders: orderService,
		Health: healthService,
	}, handlers.RouterConfig{
		Debug:       cfg.IsDevelopment(),
		FrontendURL: cfg.App.FrontendURL,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return listenAndShutdown(ctx, server, cfg.App.ShutdownTimeout, log)
}

// listenAndShutdown serves until ctx is cancelled, then drains in-flight
// requests for at most timeout.
func listenAndShutdown(ctx context.Context, server *http.Server, timeout time.Duration, log *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}
