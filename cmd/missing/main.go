package main

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"blsearch/config"
	"blsearch/internal/app"
	"blsearch/internal/domain/models"
	"blsearch/internal/lib/logger"
	"blsearch/internal/lib/logger/sl"
)

const reportPath = "missing_pdfs_report.csv"

// missing lists the records that have no attachment on disk and writes
// the report CSV for the retrieval job.
func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env)

	application, err := app.New(log, cfg)
	if err != nil {
		log.Error("Failed to load metadata", "error", sl.Err(err))
		os.Exit(1)
	}

	missing := application.Engine.Evaluate(application.Table, "no_pdf:*")

	renderTable(missing)

	if err := writeReport(reportPath, missing); err != nil {
		log.Error("Failed to write report", "error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("Report saved", "path", reportPath, "records", missing.Len())
}

func renderTable(missing *models.Table) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Bibcode", "Title", "Authors", "Pubdate", "URL"})
	table.SetAutoWrapText(false)

	for _, rec := range missing.Records {
		table.Append([]string{
			rec.Bibcode,
			rec.Title,
			strings.Join(rec.Authors, "; "),
			rec.PubDate,
			rec.URL,
		})
	}

	table.Render()
}

func writeReport(path string, missing *models.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"bibcode", "title", "author", "pubdate", "url", "abstract", "keywords"}); err != nil {
		return err
	}
	for _, rec := range missing.Records {
		row := []string{
			rec.Bibcode,
			rec.Title,
			strings.Join(rec.Authors, ";"),
			rec.PubDate,
			rec.URL,
			rec.Abstract,
			strings.Join(rec.Keywords, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
