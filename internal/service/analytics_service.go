package service

import (
	"context"
	"time"

	"local-yield/internal/core/cache"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
)

const analyticsCacheKey = "analytics:summary"

type AnalyticsService struct {
	users    *repo.UserRepo
	orders   *repo.OrderRepo
	catalog  *repo.CatalogRepo
	reports  *repo.ReportRepo
	cache    *cache.Cache // 可为 nil
	cacheTTL time.Duration
}

func NewAnalyticsService(users *repo.UserRepo, orders *repo.OrderRepo, catalog *repo.CatalogRepo, reports *repo.ReportRepo, c *cache.Cache) *AnalyticsService {
	return &AnalyticsService{
		users: users, orders: orders, catalog: catalog, reports: reports,
		cache: c, cacheTTL: 30 * time.Second,
	}
}

// Summary 平台只读汇总，仅 admin 可见
func (s *AnalyticsService) Summary(ctx context.Context, actor *domain.Identity) (*domain.Analytics, error) {
	if _, err := domain.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return s.compute(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, analyticsCacheKey, s.cacheTTL, s.compute)
}

func (s *AnalyticsService) compute(ctx context.Context) (*domain.Analytics, error) {
	var a domain.Analytics
	var err error
	if a.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	// 订单口径：paid 或已进入 PAID/FULFILLED，每单计一次
	if a.TotalOrders, a.GMVCents, err = s.orders.CountAndGMV(ctx); err != nil {
		return nil, err
	}
	if a.TotalBookings, err = s.catalog.CountBookings(ctx); err != nil {
		return nil, err
	}
	if a.ReportsPending, err = s.reports.CountByStatus(ctx, domain.ReportPending); err != nil {
		return nil, err
	}
	return &a, nil
}
