package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"local-yield/internal/core/auth"
	"local-yield/internal/core/config"
	"local-yield/internal/core/database"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/internal/service"
)

func newTestEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewGorm(database.Opts{
		Driver: "sqlite", DSN: ":memory:",
		// :memory: 是按连接隔离的，必须钉死单连接
		MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetimeMin: 5,
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Product{}, &domain.Event{}, &domain.HelpPosting{},
		&domain.CareBooking{}, &domain.ZipCentroid{}, &domain.Order{},
		&domain.OrderStatusHistory{}, &domain.Review{}, &domain.Report{},
		&domain.AuditRecord{},
	))

	jwter := &auth.JWTer{Secret: []byte("router-test"), Issuer: "local-yield-test", TTL: time.Hour}

	users := repo.NewUserRepo(db)
	orders := repo.NewOrderRepo(db)
	catalog := repo.NewCatalogRepo(db)
	reviews := repo.NewReviewRepo(db)
	reports := repo.NewReportRepo(db)
	zips := repo.NewZipRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db))

	feedCfg := config.Feed{DefaultRadiusMiles: 25, MaxRadiusMiles: 100, NearbyMiles: 10, NewProductWindowDay: 30, CacheTTLSec: 60}
	svc := Services{
		Users:     service.NewUserService(users, jwter, auditor),
		Orders:    service.NewOrderService(orders, catalog, auditor),
		Reviews:   service.NewReviewService(reviews, orders, catalog, auditor),
		Reports:   service.NewReportService(reports, orders, auditor),
		Bookings:  service.NewBookingService(catalog, users),
		Feed:      service.NewFeedService(catalog, zips, nil, feedCfg),
		Analytics: service.NewAnalyticsService(users, orders, catalog, reports, nil),
		Auditor:   auditor,
	}
	return NewAPIEngine(zap.NewNop(), db, jwter, svc), db
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, e *gin.Engine, method, path, token string, body any) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	e, _ := newTestEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	e, _ := newTestEngine(t)

	reg := do(t, e, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "pat@example.com", "name": "Pat", "password": "longenough", "role": "producer", "zipCode": "94110",
	})
	require.Equal(t, 200, reg.Code, reg.Msg)

	var authData struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(reg.Data, &authData))
	assert.NotEmpty(t, authData.Token)
	assert.Equal(t, "pat@example.com", authData.User.Email)

	t.Run("login returns a fresh token", func(t *testing.T) {
		env := do(t, e, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email": "pat@example.com", "password": "longenough",
		})
		assert.Equal(t, 200, env.Code)
	})

	t.Run("bad credential maps to 401 envelope", func(t *testing.T) {
		env := do(t, e, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email": "pat@example.com", "password": "wrong-password",
		})
		assert.Equal(t, 401, env.Code)
	})

	t.Run("me requires the token", func(t *testing.T) {
		env := do(t, e, http.MethodGet, "/api/v1/me", "", nil)
		assert.Equal(t, 401, env.Code)

		env = do(t, e, http.MethodGet, "/api/v1/me", authData.Token, nil)
		require.Equal(t, 200, env.Code)
		var me domain.User
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, authData.User.ID, me.ID)
	})

	t.Run("producer group gated by capability", func(t *testing.T) {
		buyerEnv := do(t, e, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email": "shopper@example.com", "password": "longenough", "role": "buyer",
		})
		require.Equal(t, 200, buyerEnv.Code)
		var buyerAuth struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(buyerEnv.Data, &buyerAuth))

		env := do(t, e, http.MethodPost, "/api/v1/producer/products", buyerAuth.Token, gin.H{
			"name": "eggs", "priceCents": 600,
		})
		assert.Equal(t, 403, env.Code)

		env = do(t, e, http.MethodPost, "/api/v1/producer/products", authData.Token, gin.H{
			"name": "eggs", "priceCents": 600, "zipCode": "94110", "available": true,
		})
		assert.Equal(t, 200, env.Code, env.Msg)
	})
}

func TestPublicFeed(t *testing.T) {
	e, db := newTestEngine(t)

	require.NoError(t, db.Create(&domain.ZipCentroid{Zip: "94110", Lat: 37.7485, Lng: -122.4184}).Error)
	require.NoError(t, db.Create(&domain.Product{
		ID: "p1", ProducerID: "u1", Name: "honey", PriceCents: 900,
		ZipCode: "94110", Available: true,
	}).Error)

	t.Run("no zip means unfiltered", func(t *testing.T) {
		env := do(t, e, http.MethodGet, "/api/v1/feed", "", nil)
		require.Equal(t, 200, env.Code)
		var feed domain.Feed
		require.NoError(t, json.Unmarshal(env.Data, &feed))
		assert.False(t, feed.Filtered)
		require.Len(t, feed.Products, 1)
	})

	t.Run("zip filters and tags distance", func(t *testing.T) {
		env := do(t, e, http.MethodGet, fmt.Sprintf("/api/v1/feed?zip=%s&radius=50", "94110"), "", nil)
		require.Equal(t, 200, env.Code)
		var feed domain.Feed
		require.NoError(t, json.Unmarshal(env.Data, &feed))
		assert.True(t, feed.Filtered)
		require.Len(t, feed.Products, 1)
		require.NotNil(t, feed.Products[0].DistanceMiles)
		assert.Equal(t, domain.ProximityNearby, feed.Products[0].Proximity)
	})
}
