package main

import (
	"context"
	"encoding/csv"
	"os"
	"os/signal"
	"syscall"

	"blsearch/config"
	"blsearch/internal/app"
	"blsearch/internal/domain/models"
	"blsearch/internal/lib/logger"
	"blsearch/internal/lib/logger/sl"
	"blsearch/internal/services/wayback"
	"blsearch/internal/workers"
)

// wayback walks the whole table and tries to recover every missing
// attachment from the Internet Archive. Progress is persisted, so an
// interrupted run picks up where it stopped.
func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(log, cfg)
	if err != nil {
		log.Error("Failed to load metadata", "error", sl.Err(err))
		os.Exit(1)
	}

	storageApp, err := app.NewStorageApp(cfg.Wayback.LogDBPath)
	if err != nil {
		log.Error("Failed to open attempt log", "error", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := storageApp.Stop(); err != nil {
			log.Error("Failed to close attempt log", "error", sl.Err(err))
		}
	}()

	if err := os.MkdirAll(cfg.Wayback.OutputDir, 0o755); err != nil {
		log.Error("Failed to create output directory", "error", sl.Err(err))
		os.Exit(1)
	}

	client := wayback.NewClient(log)
	service := wayback.New(log, client, storageApp.Storage(), cfg.Wayback.OutputDir)

	pool := workers.New(log, cfg.Wayback.Workers)
	go pool.Run(ctx)

	go func() {
		for i := range application.Table.Records {
			rec := application.Table.Records[i]
			pool.AddJob(workers.Job{
				Description: workers.NewDescriptor(rec.Bibcode, "wayback-retrieval"),
				ExecFn:      service.ProcessRecord,
				Args:        rec,
			})
		}
		pool.Finish()
	}()

	var downloaded, missing int
	for result := range pool.Results {
		if result.Err != nil {
			continue
		}
		if result.Attempt.Downloaded {
			downloaded++
		} else {
			missing++
		}
	}

	notFound, err := storageApp.Storage().ListNotFound(context.Background())
	if err != nil {
		log.Error("Failed to list not-found records", "error", sl.Err(err))
		os.Exit(1)
	}
	if len(notFound) > 0 {
		if err := writeNotFound(cfg.Wayback.NotFoundCSV, notFound); err != nil {
			log.Error("Failed to write not-found report", "error", sl.Err(err))
			os.Exit(1)
		}
	}

	log.Info("Retrieval finished",
		"downloaded", downloaded,
		"missing", missing,
		"not_found_report", cfg.Wayback.NotFoundCSV,
	)
}

func writeNotFound(path string, attempts []models.RetrievalAttempt) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"bibcode", "url", "reason"}); err != nil {
		return err
	}
	for _, attempt := range attempts {
		if err := w.Write([]string{attempt.Bibcode, attempt.URL, attempt.Reason}); err != nil {
			return err
		}
	}

	return w.Error()
}
