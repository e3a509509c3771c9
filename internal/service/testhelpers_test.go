package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"local-yield/internal/core/database"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

// newTestDB 内存 sqlite；MaxOpenConns 必须是 1，:memory: 按连接隔离
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:             "sqlite",
		DSN:                ":memory:",
		MaxOpenConns:       1,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: 5,
		LogLevel:           "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Event{},
		&domain.HelpPosting{},
		&domain.CareBooking{},
		&domain.ZipCentroid{},
		&domain.Order{},
		&domain.OrderStatusHistory{},
		&domain.Review{},
		&domain.Report{},
		&domain.AuditRecord{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        utils.NewID() + "@example.com",
		Name:         "test " + string(role),
		PasswordHash: utils.HashPassword("password123"),
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func ident(u *domain.User) *domain.Identity {
	return &domain.Identity{ID: u.ID, Role: u.Role}
}

func seedProduct(t *testing.T, db *gorm.DB, producerID string, priceCents int64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:         utils.NewID(),
		ProducerID: producerID,
		Name:       "eggs dozen",
		PriceCents: priceCents,
		ZipCode:    "94110",
		Available:  true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID, producerID string, status domain.OrderStatus, paid bool, totalCents int64) *domain.Order {
	t.Helper()
	o := &domain.Order{
		ID:         utils.NewID(),
		BuyerID:    buyerID,
		ProducerID: producerID,
		ProductID:  utils.NewID(),
		Quantity:   1,
		TotalCents: totalCents,
		Status:     status,
		Paid:       paid,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func newAuditor(db *gorm.DB) *Auditor {
	return NewAuditor(repo.NewAuditRepo(db))
}
