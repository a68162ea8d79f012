package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"inspectroom/internal/auth"
	"inspectroom/internal/config"
	"inspectroom/internal/draft"
	"inspectroom/internal/httpserver"
	"inspectroom/internal/imagegen"
	"inspectroom/internal/kvstore"
	"inspectroom/internal/logger"
	"inspectroom/internal/models"
	"inspectroom/internal/session"
	"inspectroom/internal/store"
	"inspectroom/internal/tasks"
)

func main() {
	root := &cobra.Command{
		Use:          "inspectroom",
		Short:        "Collaborative dimensional inspection service",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the default accounts and sample inspections",
		RunE:  runSeed,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB(url string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if path, ok := strings.CutPrefix(url, "sqlite://"); ok {
		dial = sqlite.Open(path)
	} else {
		dial = postgres.Open(url)
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}

func setup() (config.Config, *gorm.DB, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	lg := logger.New(cfg.LogLevel)
	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, db, lg, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, db, lg, err := setup()
	if err != nil {
		return err
	}
	defer lg.Sync()
	return store.Seed(cmd.Context(), store.NewUserStore(db), store.NewReportStore(db), cfg.SeedPassword, lg)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, db, lg, err := setup()
	if err != nil {
		return err
	}
	defer lg.Sync()

	kv, err := kvstore.Open(cfg.DraftDir, lg)
	if err != nil {
		return err
	}
	defer kv.Close()

	users := store.NewUserStore(db)
	reports := store.NewReportStore(db)
	if err := store.Seed(cmd.Context(), users, reports, cfg.SeedPassword, lg); err != nil {
		lg.Warnw("seed failed", "error", err)
	}
	if cfg.ImageServiceURL == "" {
		lg.Warnw("IMAGE_SERVICE_URL is empty, GD&T image generation will fail")
	}
	mgr := session.NewManager(reports, draft.NewCache(kv),
		imagegen.New(cfg.ImageServiceURL, cfg.ImageServiceTimeout), lg)

	router := httpserver.NewRouter(httpserver.Deps{
		DB:              db,
		Users:           users,
		Reports:         reports,
		Audit:           store.NewAuditStore(db),
		Tokens:          auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn),
		Sessions:        mgr,
		Tasks:           tasks.NewList(kv),
		RequiredSigners: cfg.RequiredSigners,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          lg,
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	mgr.Wait()
	return nil
}
