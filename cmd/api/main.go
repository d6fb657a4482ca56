package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"skipcorr/adapters/postgres"
	"skipcorr/adapters/robust"
	"skipcorr/adapters/stats/engine"
	"skipcorr/app"
	"skipcorr/internal"
	"skipcorr/internal/api"
	"skipcorr/internal/config"
	"skipcorr/internal/rng"
	"skipcorr/ports"
)

func main() {
	_ = godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	mcd := robust.NewMCD(500, cfg.Analysis.Seed)
	quartiles := robust.IdealFourths{}
	calibrator := engine.NewMonteCarloCalibrator(mcd, quartiles, logger)
	eng := engine.New(mcd, quartiles, calibrator, rng.New(cfg.Analysis.Seed), logger)

	var repo ports.RunRepository
	if cfg.Database.URL != "" {
		ctx := context.Background()
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database: %v", err)
			os.Exit(1)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Error("failed to migrate database: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewRunRepository(db)
		logger.Info("run persistence enabled")
	}

	service := app.NewCorrelationService(eng, repo, logger)
	server := api.NewServer(service, logger)

	logger.Info("skipcorr API listening on :%s", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, server.Router()); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
