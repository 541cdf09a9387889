package workers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"blsearch/internal/domain/models"
)

func TestPoolRunsAllJobs(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := New(log, 3)

	go pool.Run(context.Background())

	execFn := func(ctx context.Context, rec models.Record) (*models.RetrievalAttempt, error) {
		if rec.Bibcode == "bad" {
			return nil, errors.New("boom")
		}
		return &models.RetrievalAttempt{Bibcode: rec.Bibcode, Downloaded: true}, nil
	}

	go func() {
		for _, bibcode := range []string{"A", "B", "bad", "C"} {
			pool.AddJob(Job{
				Description: NewDescriptor(bibcode, "test"),
				ExecFn:      execFn,
				Args:        models.Record{Bibcode: bibcode},
			})
		}
		pool.Finish()
	}()

	var ok, failed int
	for result := range pool.Results {
		if result.Err != nil {
			failed++
			continue
		}
		if !result.Attempt.Downloaded {
			t.Errorf("Expected downloaded attempt for %s", result.Attempt.Bibcode)
		}
		ok++
	}

	if ok != 3 || failed != 1 {
		t.Fatalf("Expected 3 successes and 1 failure, got %d/%d", ok, failed)
	}
}

func TestPoolCancellation(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := New(log, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	<-done
	if got := pool.ActiveWorkersCount(); got != 0 {
		t.Fatalf("Expected no active workers after cancel, got %d", got)
	}
}
