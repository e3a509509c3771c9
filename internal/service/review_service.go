package service

import (
	"context"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

type ReviewService struct {
	reviews *repo.ReviewRepo
	orders  *repo.OrderRepo
	catalog *repo.CatalogRepo
	auditor *Auditor
}

func NewReviewService(reviews *repo.ReviewRepo, orders *repo.OrderRepo, catalog *repo.CatalogRepo, auditor *Auditor) *ReviewService {
	return &ReviewService{reviews: reviews, orders: orders, catalog: catalog, auditor: auditor}
}

type CreateReviewInput struct {
	OrderID       string `json:"orderId"`
	CareBookingID string `json:"careBookingId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// Create 买家对已完成订单/托管创建评价；永不自动发布，初始即 PENDING_APPROVAL
func (s *ReviewService) Create(ctx context.Context, actor *domain.Identity, in CreateReviewInput) (*domain.Review, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	if !actor.Capabilities().CanBuy {
		return nil, domain.ErrForbidden
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.Invalid("rating must be between 1 and 5")
	}
	if (in.OrderID == "") == (in.CareBookingID == "") {
		return nil, domain.Invalid("exactly one of orderId or careBookingId is required")
	}

	rv := &domain.Review{
		ID:         utils.NewID(),
		ReviewerID: actor.ID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		Status:     domain.ReviewPendingApproval,
	}

	switch {
	case in.OrderID != "":
		o, err := s.orders.FindByID(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, domain.ErrNotFound
		}
		if o.BuyerID != actor.ID {
			return nil, domain.Forbid("order does not belong to you")
		}
		if o.Status != domain.OrderFulfilled {
			return nil, domain.Invalid("order is not fulfilled yet")
		}
		exists, err := s.reviews.ExistsForOrder(ctx, actor.ID, o.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.Invalid("order already reviewed")
		}
		rv.OrderID = &o.ID
		rv.ProducerID = o.ProducerID

	default:
		b, err := s.catalog.FindBooking(ctx, in.CareBookingID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, domain.ErrNotFound
		}
		if b.OwnerID != actor.ID {
			return nil, domain.Forbid("booking does not belong to you")
		}
		if b.Status != domain.CareBookingCompleted {
			return nil, domain.Invalid("booking is not completed yet")
		}
		exists, err := s.reviews.ExistsForBooking(ctx, actor.ID, b.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.Invalid("booking already reviewed")
		}
		rv.CareBookingID = &b.ID
		rv.ProducerID = b.CaregiverID
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	moderationActionsTotal.WithLabelValues("create").Inc()
	return rv, nil
}

// loadOwned 先鉴权后取实体再核对归属；admin 跳过归属核对
func (s *ReviewService) loadOwned(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	actor, err := domain.RequireProducerOrAdmin(actor)
	if err != nil {
		return nil, err
	}
	rv, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Capabilities().CanAdmin && rv.ProducerID != actor.ID {
		return nil, domain.Forbid("review is not about you")
	}
	return rv, nil
}

// ApproveByProducer PENDING_APPROVAL → PUBLIC；重复审批是幂等空操作
func (s *ReviewService) ApproveByProducer(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	rv, err := s.loadOwned(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	switch rv.Status {
	case domain.ReviewPublic:
		return rv, nil
	case domain.ReviewFlagged:
		return nil, domain.Invalid("review is awaiting moderation")
	}
	rv.Status = domain.ReviewPublic
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	moderationActionsTotal.WithLabelValues("producer_approve").Inc()
	return rv, nil
}

// FlagByProducer 标记送审；自身不改变对外可见性
func (s *ReviewService) FlagByProducer(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	rv, err := s.loadOwned(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.Status == domain.ReviewFlagged {
		return rv, nil
	}
	rv.StatusBeforeFlag = rv.Status
	rv.FlaggedByID = actor.ID
	rv.Status = domain.ReviewFlagged
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	moderationActionsTotal.WithLabelValues("producer_flag").Inc()
	return rv, nil
}

func (s *ReviewService) loadForAdmin(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	if _, err := domain.RequireAdmin(actor); err != nil {
		return nil, err
	}
	rv, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, domain.ErrNotFound
	}
	return rv, nil
}

// ApproveFlagByAdmin 清掉标记并强制公开；写一条审计
func (s *ReviewService) ApproveFlagByAdmin(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	rv, err := s.loadForAdmin(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.Status != domain.ReviewFlagged {
		return nil, domain.Invalid("review is not flagged")
	}
	meta := reviewFlagMeta{PriorStatus: rv.StatusBeforeFlag, FlaggedBy: rv.FlaggedByID}
	rv.Status = domain.ReviewPublic
	rv.HiddenByAdmin = false
	rv.StatusBeforeFlag = ""
	rv.FlaggedByID = ""
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	if err := s.auditor.Record(ctx, actor.ID, domain.AuditReviewApproveFlag, rv.ID, meta); err != nil {
		return nil, err
	}
	moderationActionsTotal.WithLabelValues("admin_approve_flag").Inc()
	return rv, nil
}

// DismissFlagByAdmin 驳回标记，评价回到标记前的状态，可见性结果不变
func (s *ReviewService) DismissFlagByAdmin(ctx context.Context, actor *domain.Identity, reviewID string) (*domain.Review, error) {
	rv, err := s.loadForAdmin(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.Status != domain.ReviewFlagged {
		return nil, domain.Invalid("review is not flagged")
	}
	meta := reviewFlagMeta{PriorStatus: rv.StatusBeforeFlag, FlaggedBy: rv.FlaggedByID}
	prior := rv.StatusBeforeFlag
	if prior == "" {
		prior = domain.ReviewPendingApproval
	}
	rv.Status = prior
	rv.StatusBeforeFlag = ""
	rv.FlaggedByID = ""
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	if err := s.auditor.Record(ctx, actor.ID, domain.AuditReviewDismissFlag, rv.ID, meta); err != nil {
		return nil, err
	}
	moderationActionsTotal.WithLabelValues("admin_dismiss_flag").Inc()
	return rv, nil
}

// SetHiddenByAdmin 隐藏/恢复；hiddenByAdmin 压过其它一切状态位
func (s *ReviewService) SetHiddenByAdmin(ctx context.Context, actor *domain.Identity, reviewID string, hidden bool) (*domain.Review, error) {
	rv, err := s.loadForAdmin(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.HiddenByAdmin == hidden {
		return rv, nil
	}
	rv.HiddenByAdmin = hidden
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	action := domain.AuditReviewHide
	if !hidden {
		action = domain.AuditReviewUnhide
	}
	if err := s.auditor.Record(ctx, actor.ID, action, rv.ID, nil); err != nil {
		return nil, err
	}
	return rv, nil
}

// RespondByProducer 生产者对公开评价附一条回应
func (s *ReviewService) RespondByProducer(ctx context.Context, actor *domain.Identity, reviewID, response string) (*domain.Review, error) {
	rv, err := s.loadOwned(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if !rv.PubliclyVisible() {
		return nil, domain.Invalid("review is not public")
	}
	rv.ProducerResponse = response
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// ListPublic 任何人可见的列表，隐藏与未发布的一律排除
func (s *ReviewService) ListPublic(ctx context.Context, producerID string, offset, limit int) ([]domain.Review, error) {
	return s.reviews.ListPublicByProducer(ctx, producerID, offset, limit)
}

// ListPendingForProducer 生产者后台的待办（含已标记未裁决的）
func (s *ReviewService) ListPendingForProducer(ctx context.Context, actor *domain.Identity) ([]domain.Review, error) {
	actor, err := domain.RequireProducerOrAdmin(actor)
	if err != nil {
		return nil, err
	}
	return s.reviews.ListPendingByProducer(ctx, actor.ID)
}

// ListFlagged 管理端审核队列
func (s *ReviewService) ListFlagged(ctx context.Context, actor *domain.Identity, offset, limit int) ([]domain.Review, int64, error) {
	if _, err := domain.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListFlagged(ctx, offset, limit)
}
