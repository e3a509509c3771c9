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

func newReviewFixture(t *testing.T) (*gorm.DB, *ReviewService, *Auditor) {
	t.Helper()
	db := newTestDB(t)
	auditor := newAuditor(db)
	svc := NewReviewService(repo.NewReviewRepo(db), repo.NewOrderRepo(db), repo.NewCatalogRepo(db), auditor)
	return db, svc, auditor
}

func TestReviewCreateValidation(t *testing.T) {
	ctx := context.Background()
	db, svc, _ := newReviewFixture(t)
	buyer := seedUser(t, db, domain.RoleBuyer)
	producer := seedUser(t, db, domain.RoleProducer)
	order := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderFulfilled, true, 1200)

	t.Run("requires authentication", func(t *testing.T) {
		_, err := svc.Create(ctx, nil, CreateReviewInput{OrderID: order.ID, Rating: 5})
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("rating must be 1..5", func(t *testing.T) {
		_, err := svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, Rating: 0})
		require.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, Rating: 6})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("exactly one target", func(t *testing.T) {
		_, err := svc.Create(ctx, ident(buyer), CreateReviewInput{Rating: 4})
		require.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, CareBookingID: "b1", Rating: 4})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("order must be fulfilled", func(t *testing.T) {
		pending := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderPaid, true, 900)
		_, err := svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: pending.ID, Rating: 4})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("order must belong to the reviewer", func(t *testing.T) {
		other := seedUser(t, db, domain.RoleBuyer)
		_, err := svc.Create(ctx, ident(other), CreateReviewInput{OrderID: order.ID, Rating: 4})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("one review per order", func(t *testing.T) {
		rv, err := svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, Rating: 5, Comment: "great eggs"})
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPendingApproval, rv.Status)
		assert.Equal(t, producer.ID, rv.ProducerID)

		_, err = svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, Rating: 1})
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestReviewModerationFlow(t *testing.T) {
	ctx := context.Background()
	db, svc, auditor := newReviewFixture(t)
	buyer := seedUser(t, db, domain.RoleBuyer)
	producer := seedUser(t, db, domain.RoleProducer)
	admin := seedUser(t, db, domain.RoleAdmin)
	order := seedOrder(t, db, buyer.ID, producer.ID, domain.OrderFulfilled, true, 2500)

	rv, err := svc.Create(ctx, ident(buyer), CreateReviewInput{OrderID: order.ID, Rating: 2, Comment: "wilted greens"})
	require.NoError(t, err)

	// 未发布不出现在公开列表
	public, err := svc.ListPublic(ctx, producer.ID, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, public)

	t.Run("producer approve publishes", func(t *testing.T) {
		got, err := svc.ApproveByProducer(ctx, ident(producer), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPublic, got.Status)

		// 重复审批是幂等空操作
		again, err := svc.ApproveByProducer(ctx, ident(producer), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPublic, again.Status)

		public, err := svc.ListPublic(ctx, producer.ID, 0, 20)
		require.NoError(t, err)
		require.Len(t, public, 1)
	})

	t.Run("stranger producer cannot touch it", func(t *testing.T) {
		other := seedUser(t, db, domain.RoleProducer)
		_, err := svc.FlagByProducer(ctx, ident(other), rv.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		got, err := repo.NewReviewRepo(db).FindByID(ctx, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPublic, got.Status)
	})

	t.Run("flag then dismiss restores prior status", func(t *testing.T) {
		flagged, err := svc.FlagByProducer(ctx, ident(producer), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewFlagged, flagged.Status)
		assert.Equal(t, domain.ReviewPublic, flagged.StatusBeforeFlag)

		// 旗标后公开列表不再可见
		public, err := svc.ListPublic(ctx, producer.ID, 0, 20)
		require.NoError(t, err)
		assert.Empty(t, public)

		// 生产者不能对已旗标的直接审批
		_, err = svc.ApproveByProducer(ctx, ident(producer), rv.ID)
		require.ErrorIs(t, err, domain.ErrValidation)

		restored, err := svc.DismissFlagByAdmin(ctx, ident(admin), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPublic, restored.Status)
		assert.Empty(t, restored.StatusBeforeFlag)
	})

	t.Run("flag then approve-flag forces public and audits", func(t *testing.T) {
		_, err := svc.FlagByProducer(ctx, ident(producer), rv.ID)
		require.NoError(t, err)

		// 非 admin 无法仲裁
		_, err = svc.ApproveFlagByAdmin(ctx, ident(producer), rv.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		got, err := svc.ApproveFlagByAdmin(ctx, ident(admin), rv.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewPublic, got.Status)

		logs, err := auditor.ByTarget(ctx, rv.ID)
		require.NoError(t, err)
		var approvals, dismissals int
		for _, l := range logs {
			switch l.Action {
			case domain.AuditReviewApproveFlag:
				approvals++
			case domain.AuditReviewDismissFlag:
				dismissals++
			}
			assert.Equal(t, admin.ID, l.AdminID)
		}
		assert.Equal(t, 1, approvals)
		assert.Equal(t, 1, dismissals)
	})

	t.Run("admin hide overrides public status", func(t *testing.T) {
		hidden, err := svc.SetHiddenByAdmin(ctx, ident(admin), rv.ID, true)
		require.NoError(t, err)
		assert.True(t, hidden.HiddenByAdmin)
		assert.False(t, hidden.PubliclyVisible())

		public, err := svc.ListPublic(ctx, producer.ID, 0, 20)
		require.NoError(t, err)
		assert.Empty(t, public)

		// 隐藏中的评价不能回应
		_, err = svc.RespondByProducer(ctx, ident(producer), rv.ID, "sorry about that")
		require.ErrorIs(t, err, domain.ErrValidation)

		shown, err := svc.SetHiddenByAdmin(ctx, ident(admin), rv.ID, false)
		require.NoError(t, err)
		assert.True(t, shown.PubliclyVisible())
	})

	t.Run("producer responds to a public review", func(t *testing.T) {
		got, err := svc.RespondByProducer(ctx, ident(producer), rv.ID, "we replanted this season")
		require.NoError(t, err)
		assert.Equal(t, "we replanted this season", got.ProducerResponse)
	})
}

func TestReviewForCareBooking(t *testing.T) {
	ctx := context.Background()
	db, svc, _ := newReviewFixture(t)
	owner := seedUser(t, db, domain.RoleBuyer)
	caregiver := seedUser(t, db, domain.RoleProducer)

	booking := &domain.CareBooking{
		ID:          "bk-1",
		OwnerID:     owner.ID,
		CaregiverID: caregiver.ID,
		Status:      domain.CareBookingCompleted,
	}
	require.NoError(t, db.Create(booking).Error)

	rv, err := svc.Create(ctx, ident(owner), CreateReviewInput{CareBookingID: booking.ID, Rating: 5, Comment: "goats came back happy"})
	require.NoError(t, err)
	assert.Equal(t, caregiver.ID, rv.ProducerID)
	require.NotNil(t, rv.CareBookingID)

	// 同一托管只能评一次
	_, err = svc.Create(ctx, ident(owner), CreateReviewInput{CareBookingID: booking.ID, Rating: 4})
	require.ErrorIs(t, err, domain.ErrValidation)
}
