package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"local-yield/internal/domain"
)

// AuditRepo 只有 Append 和查询，没有 Update/Delete —— 账本只增不改
type AuditRepo struct{ db *gorm.DB }

func NewAuditRepo(db *gorm.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Append(ctx context.Context, rec *domain.AuditRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AuditRepo) ListByTarget(ctx context.Context, targetID string) ([]domain.AuditRecord, error) {
	var recs []domain.AuditRecord
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at asc").
		Find(&recs).Error
	return recs, err
}

func (r *AuditRepo) ListByTimeRange(ctx context.Context, from, to time.Time, offset, limit int) ([]domain.AuditRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.AuditRecord{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []domain.AuditRecord
	if err := q.Order("created_at asc").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
