package service

import (
	"context"
	"strings"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

type ReportService struct {
	reports *repo.ReportRepo
	orders  *repo.OrderRepo
	auditor *Auditor
}

func NewReportService(reports *repo.ReportRepo, orders *repo.OrderRepo, auditor *Auditor) *ReportService {
	return &ReportService{reports: reports, orders: orders, auditor: auditor}
}

type CreateReportInput struct {
	EntityType domain.ReportEntityType `json:"entityType"`
	EntityID   string                  `json:"entityId"`
	Reason     string                  `json:"reason"`
}

func (s *ReportService) Create(ctx context.Context, actor *domain.Identity, in CreateReportInput) (*domain.Report, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	if !domain.ValidReportEntityType(in.EntityType) {
		return nil, domain.Invalid("unknown entity type: " + string(in.EntityType))
	}
	if in.EntityID == "" {
		return nil, domain.Invalid("entityId is required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.Invalid("reason is required")
	}
	rp := &domain.Report{
		ID:         utils.NewID(),
		ReporterID: actor.ID,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     domain.ReportPending,
	}
	if err := s.reports.Create(ctx, rp); err != nil {
		return nil, err
	}
	return rp, nil
}

// Get 可见性：admin、举报人本人；订单类举报再放行该订单的生产者
func (s *ReportService) Get(ctx context.Context, actor *domain.Identity, id string) (*domain.Report, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	rp, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, domain.ErrNotFound
	}
	if actor.Capabilities().CanAdmin || rp.ReporterID == actor.ID {
		return rp, nil
	}
	if rp.EntityType == domain.ReportEntityOrder {
		o, err := s.orders.FindByID(ctx, rp.EntityID)
		if err != nil {
			return nil, err
		}
		if o != nil && o.ProducerID == actor.ID {
			return rp, nil
		}
	}
	return nil, domain.ErrForbidden
}

func (s *ReportService) ListMine(ctx context.Context, actor *domain.Identity) ([]domain.Report, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	return s.reports.ListByReporter(ctx, actor.ID)
}

func (s *ReportService) ListForAdmin(ctx context.Context, actor *domain.Identity, status domain.ReportStatus, offset, limit int) ([]domain.Report, int64, error) {
	if _, err := domain.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.reports.List(ctx, status, offset, limit)
}

// Resolve admin 结案：RESOLVED 或 DISMISSED，写审计
func (s *ReportService) Resolve(ctx context.Context, actor *domain.Identity, id string, status domain.ReportStatus, note string) (*domain.Report, error) {
	actor, err := domain.RequireAdmin(actor)
	if err != nil {
		return nil, err
	}
	if status != domain.ReportResolved && status != domain.ReportDismissed {
		return nil, domain.Invalid("resolution must be RESOLVED or DISMISSED")
	}
	rp, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, domain.ErrNotFound
	}
	if rp.Status != domain.ReportPending {
		if rp.Status == status {
			return rp, nil
		}
		return nil, domain.Invalid("report already closed")
	}
	rp.Status = status
	rp.AdminNote = note
	if err := s.reports.Save(ctx, rp); err != nil {
		return nil, err
	}
	if err := s.auditor.Record(ctx, actor.ID, domain.AuditReportResolve, rp.ID,
		reportResolveMeta{Status: status, Note: note}); err != nil {
		return nil, err
	}
	return rp, nil
}
