package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
)

func newBookingFixture(t *testing.T) (*BookingService, *gorm.DB, *domain.User, *domain.User) {
	t.Helper()
	db := newTestDB(t)
	svc := NewBookingService(repo.NewCatalogRepo(db), repo.NewUserRepo(db))
	owner := seedUser(t, db, domain.RoleBuyer)
	caregiver := seedUser(t, db, domain.RoleProducer)
	return svc, db, owner, caregiver
}

func bookingDates() (time.Time, time.Time) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	return start, start.Add(72 * time.Hour)
}

func TestBookingRequest(t *testing.T) {
	ctx := context.Background()
	svc, db, owner, caregiver := newBookingFixture(t)
	start, end := bookingDates()

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := svc.Request(ctx, ident(owner), RequestBookingInput{StartDate: start, EndDate: end})
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: owner.ID, StartDate: start, EndDate: end,
		})
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: caregiver.ID, StartDate: end, EndDate: start,
		})
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: "no-such-user", StartDate: start, EndDate: end,
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("caregiver must offer care", func(t *testing.T) {
		// buyer 角色没有托管能力
		plainBuyer := seedUser(t, db, domain.RoleBuyer)
		_, err := svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: plainBuyer.ID, StartDate: start, EndDate: end,
		})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("happy path starts in REQUESTED", func(t *testing.T) {
		b, err := svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: caregiver.ID, AnimalDesc: "two goats", StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CareBookingRequested, b.Status)
		assert.Equal(t, owner.ID, b.OwnerID)
		assert.Equal(t, caregiver.ID, b.CaregiverID)
	})
}

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, db, owner, caregiver := newBookingFixture(t)
	start, end := bookingDates()

	b, err := svc.Request(ctx, ident(owner), RequestBookingInput{
		CaregiverID: caregiver.ID, AnimalDesc: "one donkey", StartDate: start, EndDate: end,
	})
	require.NoError(t, err)

	t.Run("owner may only cancel", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, ident(owner), b.ID, domain.CareBookingConfirmed)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("caregiver confirms then completes", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, ident(caregiver), b.ID, domain.CareBookingConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.CareBookingConfirmed, got.Status)

		// 同状态重放幂等
		again, err := svc.UpdateStatus(ctx, ident(caregiver), b.ID, domain.CareBookingConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.CareBookingConfirmed, again.Status)

		// 已确认不能回到 REQUESTED
		_, err = svc.UpdateStatus(ctx, ident(caregiver), b.ID, domain.CareBookingRequested)
		require.ErrorIs(t, err, domain.ErrValidation)

		done, err := svc.UpdateStatus(ctx, ident(caregiver), b.ID, domain.CareBookingCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.CareBookingCompleted, done.Status)

		// 终态后不可再取消
		_, err = svc.UpdateStatus(ctx, ident(caregiver), b.ID, domain.CareBookingCanceled)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("owner cancels a fresh request", func(t *testing.T) {
		b2, err := svc.Request(ctx, ident(owner), RequestBookingInput{
			CaregiverID: caregiver.ID, StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		got, err := svc.UpdateStatus(ctx, ident(owner), b2.ID, domain.CareBookingCanceled)
		require.NoError(t, err)
		assert.Equal(t, domain.CareBookingCanceled, got.Status)
	})

	t.Run("visibility is limited to the parties", func(t *testing.T) {
		stranger := seedUser(t, db, domain.RoleBuyer)
		_, err := svc.Get(ctx, ident(stranger), b.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		owned, caring, err := svc.ListMine(ctx, ident(owner))
		require.NoError(t, err)
		assert.Len(t, owned, 2)
		assert.Empty(t, caring)

		owned, caring, err = svc.ListMine(ctx, ident(caregiver))
		require.NoError(t, err)
		assert.Empty(t, owned)
		assert.Len(t, caring, 2)
	})
}
