package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/calebmorton/tradedocs-backend/api/routes"
	"github.com/calebmorton/tradedocs-backend/internal/businesses"
	"github.com/calebmorton/tradedocs-backend/internal/customers"
	"github.com/calebmorton/tradedocs-backend/internal/documents"
	"github.com/calebmorton/tradedocs-backend/internal/render"
	"github.com/calebmorton/tradedocs-backend/internal/sequencer"
	"github.com/calebmorton/tradedocs-backend/pkg/config"
	"github.com/calebmorton/tradedocs-backend/pkg/db"
	"github.com/calebmorton/tradedocs-backend/pkg/logger"
	"github.com/calebmorton/tradedocs-backend/pkg/migrate"
	"github.com/calebmorton/tradedocs-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	renderer, err := buildRenderer(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to build renderer", err)
		os.Exit(1)
	}

	sequencerService, err := sequencer.NewService(sequencer.NewRepository(dbClient.DB()), cfg.Sequencer.MaxRetries)
	if err != nil {
		logg.Error(context.Background(), "failed to create sequencer service", err)
		os.Exit(1)
	}

	documentsService, err := documents.NewService(
		dbClient,
		documents.NewRepository(dbClient.DB()),
		businesses.NewRepository(dbClient.DB()),
		customers.NewRepository(dbClient.DB()),
		sequencerService,
		renderer,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create documents service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"engine": cfg.Render.Engine,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, documentsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildRenderer(cfg *config.Config) (render.Renderer, error) {
	html, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(cfg.Render.Engine, "pdf") {
		return render.NewPDFRenderer(html, cfg.Render), nil
	}
	return html, nil
}
