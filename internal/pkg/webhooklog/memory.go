package webhooklog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/giftcraft/ingest/app/models"
)

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu   sync.Mutex
	rows []models.WebhookLog

	// FailAppend makes Append return this error.
	FailAppend error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e Entry) (*models.WebhookLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return nil, s.FailAppend
	}
	row, err := newRow(e)
	if err != nil {
		return nil, err
	}
	row.ID = uint(len(s.rows) + 1)
	row.CreatedAt = time.Now()
	s.rows = append(s.rows, *row)
	return row, nil
}

func (s *MemoryStore) MarkProcessed(_ context.Context, id uint, outcome string, processingErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || int(id) > len(s.rows) {
		return errors.New("webhook log id is required")
	}
	row := &s.rows[id-1]
	if row.ProcessedAt != nil {
		return nil
	}
	now := time.Now()
	row.Outcome = outcome
	row.ProcessingError = errorText(processingErr)
	row.ProcessedAt = &now
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]models.WebhookLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	provider := normalizeProvider(f.Provider)
	limit := clampLimit(f.Limit)
	out := make([]models.WebhookLog, 0, limit)
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if provider == "" || s.rows[i].Provider == provider {
			out = append(out, s.rows[i])
		}
	}
	return out, nil
}

// Rows returns every stored row in insertion order.
func (s *MemoryStore) Rows() []models.WebhookLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WebhookLog, len(s.rows))
	copy(out, s.rows)
	return out
}
