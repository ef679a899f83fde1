package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/apiserver/handler"
	"github.com/staylinehq/stayline/internal/auth/jwt"
	"github.com/staylinehq/stayline/internal/common/config"
	"github.com/staylinehq/stayline/internal/notifier"
	"github.com/staylinehq/stayline/pkg/logger"
	"github.com/staylinehq/stayline/pkg/metrics"
	"github.com/staylinehq/stayline/pkg/version"
)

var (
	configFile string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Stayline API Server",
		Long:  `Stayline API Server provides the hotel sales pipeline REST API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	store, err := database.NewStore(zapLogger, &cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if err := store.SeedSuperAdmin(context.Background(), cfg.SuperAdmin); err != nil {
		zapLogger.Fatal("failed to seed super admin", zap.Error(err))
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("failed to initialize jwt service", zap.Error(err))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	var publisher notifier.Publisher
	if cfg.Notifier.Redis.Addr != "" {
		redisPublisher, err := notifier.NewRedisPublisher(zapLogger, cfg.Notifier.Redis)
		if err != nil {
			zapLogger.Fatal("failed to connect notification stream", zap.Error(err))
		}
		defer func() { _ = redisPublisher.Close() }()
		publisher = redisPublisher
	}
	dispatcher := notifier.NewDispatcher(zapLogger, store, publisher, m, cfg.Notifier)

	h := handler.NewHandler(store, jwtService, cfg, zapLogger)
	router := buildRouter(h, store, jwtService, m, cfg, zapLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("server exited with error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
