package app

import (
	"log/slog"

	"blsearch/config"
	"blsearch/internal/domain/models"
	"blsearch/internal/services/attachments"
	"blsearch/internal/services/loader"
	"blsearch/internal/services/query"
)

// App wires the loaded record table, the query engine and the
// attachment store together for the presentation commands.
type App struct {
	Engine      *query.Engine
	Table       *models.Table
	Attachments *attachments.Store
}

func New(log *slog.Logger, cfg *config.Config) (*App, error) {
	store := attachments.NewStore(cfg.PDFDir)

	tableLoader := loader.NewLoader(log, cfg.MetadataPath, cfg.Collection, store)
	table, err := tableLoader.LoadTable()
	if err != nil {
		return nil, err
	}

	engine := query.New(log, query.FreeTextPolicy(cfg.Search.FreeTextPolicy))

	return &App{
		Engine:      engine,
		Table:       table,
		Attachments: store,
	}, nil
}
