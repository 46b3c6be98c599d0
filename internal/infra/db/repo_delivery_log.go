package db

import (
	"context"
	"time"

	"herald/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryLogRepository struct {
	db *gorm.DB
}

func NewDeliveryLogRepository(db *gorm.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

var _ domain.DeliveryLogRepository = (*DeliveryLogRepository)(nil)

func (r *DeliveryLogRepository) Append(ctx context.Context, rec domain.DeliveryRecord) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	model := DeliveryLogModel{
		ID:        rec.ID,
		Medium:    string(rec.Medium),
		Archetype: string(rec.Archetype),
		Recipient: rec.Recipient,
		Provider:  rec.Provider,
		Attempts:  rec.Attempts,
		Success:   rec.Success,
		ErrorCode: rec.ErrorCode,
		CreatedAt: rec.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *DeliveryLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DeliveryRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 {
		limit = 50
	}
	var models []DeliveryLogModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]domain.DeliveryRecord, 0, len(models))
	for _, m := range models {
		records = append(records, domain.DeliveryRecord{
			ID:        m.ID,
			Medium:    domain.Medium(m.Medium),
			Archetype: domain.Archetype(m.Archetype),
			Recipient: m.Recipient,
			Provider:  m.Provider,
			Attempts:  m.Attempts,
			Success:   m.Success,
			ErrorCode: m.ErrorCode,
			CreatedAt: m.CreatedAt,
		})
	}
	return records, nil
}
