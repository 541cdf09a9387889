package wayback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blsearch/internal/domain/models"
	"blsearch/internal/storage/leveldb"
)

// AttemptStore persists per-record retrieval outcomes between runs.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt *models.RetrievalAttempt) error
	GetAttempt(ctx context.Context, bibcode string) (*models.RetrievalAttempt, error)
}

// Service recovers missing attachments from the Internet Archive. Per
// record it tries, in order: every Wayback snapshot of the broken URL,
// snapshots of the URL with a .pdf suffix, the broken URL itself, and
// finally an archive search by bibcode then title. Best effort: a
// record that stays missing is logged, never an error.
type Service struct {
	log       *slog.Logger
	client    *Client
	store     AttemptStore
	outputDir string
}

func New(log *slog.Logger, client *Client, store AttemptStore, outputDir string) *Service {
	return &Service{
		log:       log,
		client:    client,
		store:     store,
		outputDir: outputDir,
	}
}

// ProcessRecord runs the retrieval pipeline for one record and persists
// the attempt log. Records already downloaded (per the log or the
// output directory) are skipped.
func (s *Service) ProcessRecord(ctx context.Context, rec models.Record) (*models.RetrievalAttempt, error) {
	const op = "wayback.ProcessRecord"

	bibcode := rec.Bibcode
	if bibcode == "" {
		bibcode = "unknown"
	}
	outPath := filepath.Join(s.outputDir, bibcode+".pdf")

	attempt := &models.RetrievalAttempt{
		Bibcode: rec.Bibcode,
		URL:     rec.URL,
	}

	if s.alreadyDownloaded(ctx, rec.Bibcode, outPath) {
		attempt.Downloaded = true
		attempt.Attempts = append(attempt.Attempts, "Already downloaded")
		s.log.Info("Already downloaded, skipping", "bibcode", rec.Bibcode)
		return s.finish(ctx, attempt, op)
	}

	s.runPipeline(ctx, rec, outPath, attempt)

	if attempt.Downloaded {
		attempt.Reason = ""
	} else {
		attempt.Reason = strings.Trim(attempt.Reason, "; ")
		s.log.Info("PDF not found", "bibcode", rec.Bibcode, "reason", attempt.Reason)
	}

	return s.finish(ctx, attempt, op)
}

func (s *Service) finish(ctx context.Context, attempt *models.RetrievalAttempt, op string) (*models.RetrievalAttempt, error) {
	attempt.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveAttempt(ctx, attempt); err != nil {
		return attempt, fmt.Errorf("%s: %w", op, err)
	}
	return attempt, nil
}

func (s *Service) alreadyDownloaded(ctx context.Context, bibcode, outPath string) bool {
	if _, err := os.Stat(outPath); err == nil {
		return true
	}
	prev, err := s.store.GetAttempt(ctx, bibcode)
	if err != nil {
		if !errors.Is(err, leveldb.ErrAttemptNotFound) {
			s.log.Warn("Failed to read attempt log", "bibcode", bibcode, "error", err)
		}
		return false
	}
	return prev.Downloaded
}

func (s *Service) runPipeline(ctx context.Context, rec models.Record, outPath string, attempt *models.RetrievalAttempt) {
	// 1. Every Wayback snapshot of the original URL.
	if s.trySnapshots(ctx, rec.URL, "Wayback snapshot", outPath, attempt) {
		return
	}

	// 2. Snapshots of the .pdf variant of the URL.
	if !strings.HasSuffix(strings.ToLower(rec.URL), ".pdf") {
		pdfURL := strings.TrimRight(rec.URL, "/") + ".pdf"
		if s.trySnapshots(ctx, pdfURL, "Wayback snapshot (.pdf)", outPath, attempt) {
			return
		}
	}

	// 3. The original URL directly.
	attempt.Attempts = append(attempt.Attempts, "Tried original URL directly")
	if err := s.client.DownloadPDF(ctx, rec.URL, outPath); err == nil {
		attempt.Downloaded = true
		s.log.Info("PDF downloaded from original URL", "bibcode", rec.Bibcode)
		return
	} else {
		attempt.Reason += fmt.Sprintf("; Original URL not PDF: %v", err)
	}

	// 4. Internet Archive search by bibcode, then title.
	for _, query := range []string{rec.Bibcode, rec.Title} {
		if query == "" {
			continue
		}
		attempt.Attempts = append(attempt.Attempts, fmt.Sprintf("Searched IA for %q", query))
		pdfURL, err := s.client.SearchArchive(ctx, query)
		if err != nil {
			s.log.Warn("Archive search failed", "query", query, "error", err)
			continue
		}
		if pdfURL == "" {
			continue
		}
		if err := s.client.DownloadPDF(ctx, pdfURL, outPath); err == nil {
			attempt.Downloaded = true
			attempt.WaybackURL = pdfURL
			s.log.Info("PDF downloaded from archive search", "bibcode", rec.Bibcode)
			return
		} else {
			attempt.Reason += fmt.Sprintf("; IA search not PDF: %v", err)
		}
	}
	attempt.Reason += "; No PDF found in IA search"
}

func (s *Service) trySnapshots(ctx context.Context, target, label, outPath string, attempt *models.RetrievalAttempt) bool {
	snapshots, err := s.client.Snapshots(ctx, target)
	if err != nil {
		s.log.Warn("CDX query failed", "url", target, "error", err)
	}
	if len(snapshots) == 0 {
		attempt.Attempts = append(attempt.Attempts, "No "+label+"s found")
		attempt.Reason += "; No " + label + "s found"
		return false
	}

	for _, snapURL := range snapshots {
		attempt.Attempts = append(attempt.Attempts, label+": "+snapURL)
		if err := s.client.DownloadPDF(ctx, snapURL, outPath); err != nil {
			attempt.Reason = fmt.Sprintf("%s not PDF: %v", label, err)
			continue
		}
		attempt.Downloaded = true
		attempt.WaybackURL = snapURL
		s.log.Info("PDF downloaded", "source", label, "bibcode", attempt.Bibcode)
		return true
	}
	return false
}
