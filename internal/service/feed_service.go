package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"local-yield/internal/core/cache"
	"local-yield/internal/core/config"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
)

const feedSectionLimit = 50

type FeedService struct {
	catalog *repo.CatalogRepo
	zips    *repo.ZipRepo
	cache   *cache.Cache // 可为 nil，测试环境直查库
	cfg     config.Feed
}

func NewFeedService(catalog *repo.CatalogRepo, zips *repo.ZipRepo, c *cache.Cache, cfg config.Feed) *FeedService {
	return &FeedService{catalog: catalog, zips: zips, cache: c, cfg: cfg}
}

// Get 聚合 feed。zip 为空或无法解析时返回不过滤的全量结果，不报错
func (s *FeedService) Get(ctx context.Context, zip string, radiusMiles float64) (*domain.Feed, error) {
	if radiusMiles <= 0 {
		radiusMiles = s.cfg.DefaultRadiusMiles
	}
	// 半径夹到 [1, max]
	radiusMiles = math.Min(math.Max(radiusMiles, 1), s.cfg.MaxRadiusMiles)

	if s.cache == nil {
		return s.build(ctx, zip, radiusMiles)
	}
	key := fmt.Sprintf("feed:%s:%s", zip, strconv.FormatFloat(radiusMiles, 'f', 1, 64))
	return cache.GetOrLoadJSON(s.cache, ctx, key, time.Duration(s.cfg.CacheTTLSec)*time.Second,
		func(ctx context.Context) (*domain.Feed, error) {
			return s.build(ctx, zip, radiusMiles)
		})
}

func (s *FeedService) build(ctx context.Context, zip string, radiusMiles float64) (*domain.Feed, error) {
	var origin *domain.ZipCentroid
	if zip != "" {
		c, err := s.zips.Find(ctx, zip)
		if err != nil {
			return nil, err
		}
		origin = c // 查不到质心就退化为不过滤
	}

	var (
		events   []domain.Event
		postings []domain.HelpPosting
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.catalog.UpcomingEvents(gctx, feedSectionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		postings, err = s.catalog.OpenPostings(gctx, feedSectionLimit)
		return err
	})
	g.Go(func() error {
		since := time.Now().AddDate(0, 0, -s.cfg.NewProductWindowDay)
		var err error
		products, err = s.catalog.RecentProducts(gctx, since, feedSectionLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feed := &domain.Feed{
		Zip:      zip,
		Radius:   radiusMiles,
		Filtered: origin != nil,
		Events:   []domain.FeedEvent{},
		Postings: []domain.FeedPosting{},
		Products: []domain.FeedProduct{},
	}
	feedRequestsTotal.WithLabelValues(strconv.FormatBool(feed.Filtered)).Inc()

	if origin == nil {
		for _, e := range events {
			feed.Events = append(feed.Events, domain.FeedEvent{Event: e})
		}
		for _, p := range postings {
			feed.Postings = append(feed.Postings, domain.FeedPosting{HelpPosting: p})
		}
		for _, p := range products {
			feed.Products = append(feed.Products, domain.FeedProduct{Product: p})
		}
		return feed, nil
	}

	// 批量取候选条目的 zip 质心，缺失质心的条目在过滤模式下整体剔除
	seen := map[string]struct{}{}
	var zips []string
	collect := func(z string) {
		if z == "" {
			return
		}
		if _, ok := seen[z]; ok {
			return
		}
		seen[z] = struct{}{}
		zips = append(zips, z)
	}
	for _, e := range events {
		collect(e.ZipCode)
	}
	for _, p := range postings {
		collect(p.ZipCode)
	}
	for _, p := range products {
		collect(p.ZipCode)
	}
	centroids, err := s.zips.CentroidsFor(ctx, zips)
	if err != nil {
		return nil, err
	}

	tag := func(z string) (domain.FeedTag, bool) {
		c, ok := centroids[z]
		if !ok {
			return domain.FeedTag{}, false
		}
		d := haversineMiles(origin.Lat, origin.Lng, c.Lat, c.Lng)
		if d > radiusMiles {
			return domain.FeedTag{}, false
		}
		t := domain.FeedTag{DistanceMiles: &d, Proximity: domain.ProximityFartherOut}
		if d <= s.cfg.NearbyMiles {
			t.Proximity = domain.ProximityNearby
		}
		return t, true
	}

	for _, e := range events {
		if t, ok := tag(e.ZipCode); ok {
			feed.Events = append(feed.Events, domain.FeedEvent{Event: e, FeedTag: t})
		}
	}
	for _, p := range postings {
		if t, ok := tag(p.ZipCode); ok {
			feed.Postings = append(feed.Postings, domain.FeedPosting{HelpPosting: p, FeedTag: t})
		}
	}
	for _, p := range products {
		if t, ok := tag(p.ZipCode); ok {
			feed.Products = append(feed.Products, domain.FeedProduct{Product: p, FeedTag: t})
		}
	}
	return feed, nil
}

const earthRadiusMiles = 3958.8

// haversineMiles 大圆距离，单位英里
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
