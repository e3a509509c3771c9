package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"local-yield/internal/domain"
)

type ReportRepo struct{ db *gorm.DB }

func NewReportRepo(db *gorm.DB) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) Create(ctx context.Context, rp *domain.Report) error {
	return r.db.WithContext(ctx).Create(rp).Error
}

func (r *ReportRepo) FindByID(ctx context.Context, id string) (*domain.Report, error) {
	var rp domain.Report
	err := r.db.WithContext(ctx).First(&rp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rp, err
}

func (r *ReportRepo) List(ctx context.Context, status domain.ReportStatus, offset, limit int) ([]domain.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rps []domain.Report
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&rps).Error; err != nil {
		return nil, 0, err
	}
	return rps, total, nil
}

func (r *ReportRepo) ListByReporter(ctx context.Context, reporterID string) ([]domain.Report, error) {
	var rps []domain.Report
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at desc").
		Find(&rps).Error
	return rps, err
}

func (r *ReportRepo) Save(ctx context.Context, rp *domain.Report) error {
	return r.db.WithContext(ctx).Save(rp).Error
}

func (r *ReportRepo) CountByStatus(ctx context.Context, status domain.ReportStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Report{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
