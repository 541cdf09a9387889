package main

import (
	"context"
	"os"

	"blsearch/config"
	"blsearch/internal/app"
	"blsearch/internal/lib/logger"
	"blsearch/internal/lib/logger/sl"
	"blsearch/internal/services/cui"
)

func main() {
	cfg := config.MustLoad()

	ctx := context.Background()

	log := logger.Setup(cfg.Env)

	log.Info("blsearch", "env", cfg.Env, "collection", cfg.Collection)

	application, err := app.New(log, cfg)
	if err != nil {
		log.Error("Failed to load metadata", "error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Table loaded", "records", application.Table.Len())

	browser := cui.New(ctx, log, application.Engine, application.Table, cfg.Search.PageSize)
	defer browser.Close()

	if err := browser.Start(); err != nil {
		log.Error("Browser exited with error", "error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Gracefully stopped")
}
