// Package webhooklog keeps the append-only record of accepted webhook calls.
package webhooklog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/giftcraft/ingest/app/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Entry is the input for Append.
type Entry struct {
	Provider   string
	DeliveryID string
	EventType  string
	Payload    []byte
	Verdict    string
}

// Filter narrows List.
type Filter struct {
	Provider string
	Limit    int
}

// Store persists webhook calls. The payload column is written once by Append;
// MarkProcessed only fills in the processing columns.
type Store interface {
	Append(ctx context.Context, e Entry) (*models.WebhookLog, error)
	MarkProcessed(ctx context.Context, id uint, outcome string, processingErr error) error
	List(ctx context.Context, f Filter) ([]models.WebhookLog, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a webhook log store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Append(ctx context.Context, e Entry) (*models.WebhookLog, error) {
	row, err := newRow(e)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (s *gormStore) MarkProcessed(ctx context.Context, id uint, outcome string, processingErr error) error {
	if id == 0 {
		return errors.New("webhook log id is required")
	}
	now := time.Now()
	updates := map[string]interface{}{
		"outcome":          outcome,
		"processing_error": errorText(processingErr),
		"processed_at":     &now,
	}
	return s.db.WithContext(ctx).
		Model(&models.WebhookLog{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(updates).Error
}

func (s *gormStore) List(ctx context.Context, f Filter) ([]models.WebhookLog, error) {
	q := s.db.WithContext(ctx).Model(&models.WebhookLog{})
	if p := normalizeProvider(f.Provider); p != "" {
		q = q.Where("provider = ?", p)
	}
	var rows []models.WebhookLog
	err := q.Order("created_at DESC").Order("id DESC").Limit(clampLimit(f.Limit)).Find(&rows).Error
	return rows, err
}

func newRow(e Entry) (*models.WebhookLog, error) {
	provider := normalizeProvider(e.Provider)
	if provider == "" {
		return nil, errors.New("provider is required")
	}
	deliveryID := strings.TrimSpace(e.DeliveryID)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	return &models.WebhookLog{
		Provider:         provider,
		DeliveryID:       deliveryID,
		EventType:        strings.TrimSpace(e.EventType),
		Payload:          string(e.Payload),
		SignatureVerdict: e.Verdict,
	}, nil
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
