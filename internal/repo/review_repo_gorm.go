package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"local-yield/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

// ExistsForOrder / ExistsForBooking 幂等键：同一买家对同一订单/托管只评一次
func (r *ReviewRepo) ExistsForOrder(ctx context.Context, reviewerID, orderID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("reviewer_id = ? AND order_id = ?", reviewerID, orderID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepo) ExistsForBooking(ctx context.Context, reviewerID, bookingID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("reviewer_id = ? AND care_booking_id = ?", reviewerID, bookingID).
		Count(&n).Error
	return n > 0, err
}

// Save 整行写回（状态位变更都是单行 RMW）
func (r *ReviewRepo) Save(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Save(rv).Error
}

// ListPublicByProducer 公开列表：PUBLIC 且未被管理员隐藏
func (r *ReviewRepo) ListPublicByProducer(ctx context.Context, producerID string, offset, limit int) ([]domain.Review, error) {
	var rvs []domain.Review
	err := r.db.WithContext(ctx).
		Where("producer_id = ? AND status = ? AND hidden_by_admin = ?",
			producerID, domain.ReviewPublic, false).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&rvs).Error
	return rvs, err
}

// ListPendingByProducer 生产者后台：待审批 + 已标记的都能看到
func (r *ReviewRepo) ListPendingByProducer(ctx context.Context, producerID string) ([]domain.Review, error) {
	var rvs []domain.Review
	err := r.db.WithContext(ctx).
		Where("producer_id = ? AND status IN ?",
			producerID, []domain.ReviewStatus{domain.ReviewPendingApproval, domain.ReviewFlagged}).
		Order("created_at desc").
		Find(&rvs).Error
	return rvs, err
}

// ListFlagged 管理端待处理队列
func (r *ReviewRepo) ListFlagged(ctx context.Context, offset, limit int) ([]domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Where("status = ?", domain.ReviewFlagged)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rvs []domain.Review
	if err := q.Order("updated_at asc").Offset(offset).Limit(limit).Find(&rvs).Error; err != nil {
		return nil, 0, err
	}
	return rvs, total, nil
}
