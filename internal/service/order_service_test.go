package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
)

func newOrderFixture(t *testing.T) (*gorm.DB, *OrderService, *Auditor) {
	t.Helper()
	db := newTestDB(t)
	auditor := newAuditor(db)
	svc := NewOrderService(repo.NewOrderRepo(db), repo.NewCatalogRepo(db), auditor)
	return db, svc, auditor
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	db, svc, _ := newOrderFixture(t)
	buyer := seedUser(t, db, domain.RoleBuyer)
	producer := seedUser(t, db, domain.RoleProducer)
	product := seedProduct(t, db, producer.ID, 450)

	t.Run("happy path", func(t *testing.T) {
		o, err := svc.Place(ctx, ident(buyer), PlaceOrderInput{ProductID: product.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, o.Status)
		assert.Equal(t, int64(1350), o.TotalCents)
		assert.Equal(t, producer.ID, o.ProducerID)

		// 下单即有一条 PENDING 历史
		hs, err := repo.NewOrderRepo(db).History(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, hs, 1)
		assert.Equal(t, domain.OrderPending, hs[0].ToStatus)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		_, err := svc.Place(ctx, ident(buyer), PlaceOrderInput{ProductID: product.ID, Quantity: 0})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.Place(ctx, ident(buyer), PlaceOrderInput{ProductID: "nope", Quantity: 1})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unavailable product", func(t *testing.T) {
		off := seedProduct(t, db, producer.ID, 100)
		require.NoError(t, db.Model(off).Update("available", false).Error)
		_, err := svc.Place(ctx, ident(buyer), PlaceOrderInput{ProductID: off.ID, Quantity: 1})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestOrderStatusTransitions(t *testing.T) {
	ctx := context.Background()
	db, svc, auditor := newOrderFixture(t)
	buyer := seedUser(t, db, domain.RoleBuyer)
	producer := seedUser(t, db, domain.RoleProducer)
	admin := seedUser(t, db, domain.RoleAdmin)

	t.Run("full lifecycle with single fulfillment stamp", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 1000)

		paid, err := svc.UpdateStatus(ctx, ident(producer), o.ID, domain.OrderPaid, "cash at pickup")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPaid, paid.Status)
		assert.True(t, paid.Paid)

		done, err := svc.UpdateStatus(ctx, ident(producer), o.ID, domain.OrderFulfilled, "")
		require.NoError(t, err)
		require.NotNil(t, done.FulfilledAt)
		stamp := *done.FulfilledAt

		// 同态重入：无错、时间戳不变、不追加历史
		again, err := svc.UpdateStatus(ctx, ident(producer), o.ID, domain.OrderFulfilled, "")
		require.NoError(t, err)
		require.NotNil(t, again.FulfilledAt)
		assert.True(t, stamp.Equal(*again.FulfilledAt), "fulfillment stamp must not move")

		hs, err := repo.NewOrderRepo(db).History(ctx, o.ID)
		require.NoError(t, err)
		assert.Len(t, hs, 2)
	})

	t.Run("illegal transition rejected", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 500)
		_, err := svc.UpdateStatus(ctx, ident(producer), o.ID, domain.OrderFulfilled, "")
		require.ErrorIs(t, err, domain.ErrValidation)

		done := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderFulfilled, true, 500)
		_, err = svc.UpdateStatus(ctx, ident(producer), done.ID, domain.OrderRefunded, "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 500)
		_, err := svc.UpdateStatus(ctx, ident(producer), o.ID, domain.OrderStatus("SHIPPED"), "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("buyer may cancel own pending order only", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 700)
		got, err := svc.UpdateStatus(ctx, ident(buyer), o.ID, domain.OrderCanceled, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCanceled, got.Status)

		paidOrder := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPaid, true, 700)
		_, err = svc.UpdateStatus(ctx, ident(buyer), paidOrder.ID, domain.OrderCanceled, "")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("stranger cannot move the order", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 700)
		other := seedUser(t, db, domain.RoleProducer)
		_, err := svc.UpdateStatus(ctx, ident(other), o.ID, domain.OrderPaid, "")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin override is audited", func(t *testing.T) {
		o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPaid, true, 900)
		got, err := svc.UpdateStatus(ctx, ident(admin), o.ID, domain.OrderRefunded, "chargeback")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderRefunded, got.Status)

		logs, err := auditor.ByTarget(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, domain.AuditOrderForceStatus, logs[0].Action)
		assert.Equal(t, admin.ID, logs[0].AdminID)
	})
}

func TestOrderVisibility(t *testing.T) {
	ctx := context.Background()
	db, svc, _ := newOrderFixture(t)
	buyer := seedUser(t, db, domain.RoleBuyer)
	producer := seedUser(t, db, domain.RoleProducer)
	o := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPending, false, 100)

	for _, u := range []*domain.User{buyer, producer} {
		got, _, err := svc.Get(ctx, ident(u), o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	}

	stranger := seedUser(t, db, domain.RoleBuyer)
	_, _, err := svc.Get(ctx, ident(stranger), o.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := svc.ListForBuyer(ctx, ident(buyer), 0, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := svc.ListForProducer(ctx, ident(producer), "", 0, 10)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}
