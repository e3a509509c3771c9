package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"local-yield/internal/domain"
)

// CatalogRepo feed 三路集合各自独立查询，互不影响
type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// UpcomingEvents 未开始的活动，按开始时间正序
func (r *CatalogRepo) UpcomingEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	var evs []domain.Event
	err := r.db.WithContext(ctx).
		Where("starts_at >= ?", time.Now()).
		Order("starts_at asc").Limit(limit).
		Find(&evs).Error
	return evs, err
}

// OpenPostings 仅 OPEN 状态的互助帖
func (r *CatalogRepo) OpenPostings(ctx context.Context, limit int) ([]domain.HelpPosting, error) {
	var ps []domain.HelpPosting
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.HelpPostingOpen).
		Order("created_at desc").Limit(limit).
		Find(&ps).Error
	return ps, err
}

// RecentProducts 窗口期内上架的在售新品
func (r *CatalogRepo) RecentProducts(ctx context.Context, since time.Time, limit int) ([]domain.Product, error) {
	var prods []domain.Product
	err := r.db.WithContext(ctx).
		Where("available = ? AND created_at >= ?", true, since).
		Order("created_at desc").Limit(limit).
		Find(&prods).Error
	return prods, err
}

func (r *CatalogRepo) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *CatalogRepo) FindBooking(ctx context.Context, id string) (*domain.CareBooking, error) {
	var b domain.CareBooking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *CatalogRepo) CreateBooking(ctx context.Context, b *domain.CareBooking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *CatalogRepo) SaveBooking(ctx context.Context, b *domain.CareBooking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *CatalogRepo) ListBookingsByOwner(ctx context.Context, ownerID string) ([]domain.CareBooking, error) {
	var bs []domain.CareBooking
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&bs).Error
	return bs, err
}

func (r *CatalogRepo) ListBookingsByCaregiver(ctx context.Context, caregiverID string) ([]domain.CareBooking, error) {
	var bs []domain.CareBooking
	err := r.db.WithContext(ctx).
		Where("caregiver_id = ?", caregiverID).
		Order("created_at desc").
		Find(&bs).Error
	return bs, err
}

func (r *CatalogRepo) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.CareBooking{}).Count(&n).Error
	return n, err
}
