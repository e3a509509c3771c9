package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"local-yield/internal/domain"
)

type ZipRepo struct{ db *gorm.DB }

func NewZipRepo(db *gorm.DB) *ZipRepo { return &ZipRepo{db: db} }

// Find 查不到返回 nil（zip 无质心不是错误，feed 会退化为不过滤）
func (r *ZipRepo) Find(ctx context.Context, zip string) (*domain.ZipCentroid, error) {
	var c domain.ZipCentroid
	err := r.db.WithContext(ctx).First(&c, "zip = ?", zip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

// CentroidsFor 批量取一组 zip 的质心，缺失的 zip 不在结果里
func (r *ZipRepo) CentroidsFor(ctx context.Context, zips []string) (map[string]domain.ZipCentroid, error) {
	out := make(map[string]domain.ZipCentroid, len(zips))
	if len(zips) == 0 {
		return out, nil
	}
	var cs []domain.ZipCentroid
	if err := r.db.WithContext(ctx).Where("zip IN ?", zips).Find(&cs).Error; err != nil {
		return nil, err
	}
	for _, c := range cs {
		out[c.Zip] = c
	}
	return out, nil
}
