package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"blsearch/internal/domain/models"
)

const attemptPrefix = "attempt:"

var ErrAttemptNotFound = errors.New("retrieval attempt not found")

// Storage keeps per-bibcode retrieval attempt logs in LevelDB so the
// wayback job can resume without repeating finished work.
type Storage struct {
	db *leveldb.DB
}

func NewStorage(path string) (*Storage, error) {
	const op = "storage.leveldb.NewStorage"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func attemptKey(bibcode string) []byte {
	return []byte(attemptPrefix + bibcode)
}

func (s *Storage) SaveAttempt(ctx context.Context, attempt *models.RetrievalAttempt) error {
	const op = "storage.leveldb.SaveAttempt"

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.Put(attemptKey(attempt.Bibcode), data, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) GetAttempt(ctx context.Context, bibcode string) (*models.RetrievalAttempt, error) {
	const op = "storage.leveldb.GetAttempt"

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := s.db.Get(attemptKey(bibcode), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrAttemptNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var attempt models.RetrievalAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &attempt, nil
}

// ListNotFound returns the attempts that ended without a download, in
// key order.
func (s *Storage) ListNotFound(ctx context.Context) ([]models.RetrievalAttempt, error) {
	const op = "storage.leveldb.ListNotFound"

	var out []models.RetrievalAttempt

	iter := s.db.NewIterator(util.BytesPrefix([]byte(attemptPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var attempt models.RetrievalAttempt
		if err := json.Unmarshal(iter.Value(), &attempt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !attempt.Downloaded {
			out = append(out, attempt)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
