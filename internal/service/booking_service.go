package service

import (
	"context"
	"time"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

// bookingTransitions 托管预约状态机
var bookingTransitions = map[domain.CareBookingStatus][]domain.CareBookingStatus{
	domain.CareBookingRequested: {domain.CareBookingConfirmed, domain.CareBookingCanceled},
	domain.CareBookingConfirmed: {domain.CareBookingCompleted, domain.CareBookingCanceled},
	domain.CareBookingCompleted: {},
	domain.CareBookingCanceled:  {},
}

func canBookingTransition(from, to domain.CareBookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type BookingService struct {
	catalog *repo.CatalogRepo
	users   *repo.UserRepo
}

func NewBookingService(catalog *repo.CatalogRepo, users *repo.UserRepo) *BookingService {
	return &BookingService{catalog: catalog, users: users}
}

type RequestBookingInput struct {
	CaregiverID string    `json:"caregiverId"`
	AnimalDesc  string    `json:"animalDesc"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

// Request 由动物主人发起，caregiver 必须具备托管能力
func (s *BookingService) Request(ctx context.Context, actor *domain.Identity, in RequestBookingInput) (*domain.CareBooking, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	if in.CaregiverID == "" {
		return nil, domain.Invalid("caregiverId is required")
	}
	if in.CaregiverID == actor.ID {
		return nil, domain.Invalid("cannot book care with yourself")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, domain.Invalid("endDate must be after startDate")
	}
	cg, err := s.users.FindByID(ctx, in.CaregiverID)
	if err != nil {
		return nil, err
	}
	if cg == nil {
		return nil, domain.ErrNotFound
	}
	if !domain.ResolveCapabilities(cg.Role).CanOfferCare {
		return nil, domain.Invalid("selected user does not offer care")
	}
	b := &domain.CareBooking{
		ID:          utils.NewID(),
		OwnerID:     actor.ID,
		CaregiverID: cg.ID,
		AnimalDesc:  in.AnimalDesc,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      domain.CareBookingRequested,
	}
	if err := s.catalog.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateStatus 确认/完成由 caregiver 操作，取消双方皆可，admin 不受限
func (s *BookingService) UpdateStatus(ctx context.Context, actor *domain.Identity, bookingID string, to domain.CareBookingStatus) (*domain.CareBooking, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	b, err := s.catalog.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}

	caps := actor.Capabilities()
	switch {
	case caps.CanAdmin:
	case b.CaregiverID == actor.ID:
	case b.OwnerID == actor.ID && to == domain.CareBookingCanceled:
	default:
		return nil, domain.Forbid("not allowed to update this booking")
	}

	if b.Status == to {
		return b, nil
	}
	if !canBookingTransition(b.Status, to) {
		return nil, domain.Invalid("invalid transition " + string(b.Status) + " -> " + string(to))
	}
	b.Status = to
	if err := s.catalog.SaveBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, actor *domain.Identity, bookingID string) (*domain.CareBooking, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	b, err := s.catalog.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Capabilities().CanAdmin && b.OwnerID != actor.ID && b.CaregiverID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

func (s *BookingService) ListMine(ctx context.Context, actor *domain.Identity) (owned, caring []domain.CareBooking, err error) {
	actor, err = domain.RequireAuth(actor)
	if err != nil {
		return nil, nil, err
	}
	if owned, err = s.catalog.ListBookingsByOwner(ctx, actor.ID); err != nil {
		return nil, nil, err
	}
	if caring, err = s.catalog.ListBookingsByCaregiver(ctx, actor.ID); err != nil {
		return nil, nil, err
	}
	return owned, caring, nil
}
