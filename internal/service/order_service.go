package service

import (
	"context"
	"time"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

// orderTransitions 订单状态机：PENDING → PAID → FULFILLED，
// CANCELED/REFUNDED 可从 PENDING/PAID 到达；终态无出边
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:   {domain.OrderPaid, domain.OrderCanceled, domain.OrderRefunded},
	domain.OrderPaid:      {domain.OrderFulfilled, domain.OrderCanceled, domain.OrderRefunded},
	domain.OrderFulfilled: {},
	domain.OrderCanceled:  {},
	domain.OrderRefunded:  {},
}

func canTransition(from, to domain.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type OrderService struct {
	orders  *repo.OrderRepo
	catalog *repo.CatalogRepo
	auditor *Auditor
}

func NewOrderService(orders *repo.OrderRepo, catalog *repo.CatalogRepo, auditor *Auditor) *OrderService {
	return &OrderService{orders: orders, catalog: catalog, auditor: auditor}
}

type PlaceOrderInput struct {
	ProductID  string     `json:"productId"`
	Quantity   int        `json:"quantity"`
	PickupDate *time.Time `json:"pickupDate"`
}

func (s *OrderService) Place(ctx context.Context, actor *domain.Identity, in PlaceOrderInput) (*domain.Order, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	if !actor.Capabilities().CanBuy {
		return nil, domain.ErrForbidden
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity must be positive")
	}
	p, err := s.catalog.FindProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !p.Available {
		return nil, domain.Invalid("product is not available")
	}

	o := &domain.Order{
		ID:         utils.NewID(),
		BuyerID:    actor.ID,
		ProducerID: p.ProducerID,
		ProductID:  p.ID,
		Quantity:   in.Quantity,
		TotalCents: p.PriceCents * int64(in.Quantity),
		Status:     domain.OrderPending,
		PickupDate: in.PickupDate,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	// 初始历史行：下单即 PENDING
	_ = s.orders.AppendHistory(ctx, &domain.OrderStatusHistory{
		ID:        utils.NewID(),
		OrderID:   o.ID,
		ToStatus:  domain.OrderPending,
		ChangedBy: actor.ID,
		Note:      "order placed",
	})
	return o, nil
}

// UpdateStatus 统一的状态迁移入口
// 鉴权顺序：先认证 → 状态值合法性 → 取单 → 归属/角色 → 状态机
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.Identity, orderID string, to domain.OrderStatus, note string) (*domain.Order, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	if !domain.ValidOrderStatus(to) {
		return nil, domain.Invalid("unknown order status: " + string(to))
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}

	caps := actor.Capabilities()
	switch {
	case caps.CanAdmin:
	case caps.CanSellAsProducer && o.ProducerID == actor.ID:
	case caps.CanBuy && o.BuyerID == actor.ID && to == domain.OrderCanceled && o.Status == domain.OrderPending:
		// 买家只能取消自己的待处理订单
	default:
		return nil, domain.Forbid("not allowed to update this order")
	}

	// 同态重入是幂等空操作；FULFILLED 不重打时间戳
	if o.Status == to {
		return o, nil
	}
	if !canTransition(o.Status, to) {
		return nil, domain.Invalid("invalid transition " + string(o.Status) + " -> " + string(to))
	}

	if err := s.orders.Transition(ctx, o, to, actor.ID, note); err != nil {
		return nil, err
	}
	orderTransitionsTotal.WithLabelValues(string(to)).Inc()

	// admin 越过归属时记审计
	if caps.CanAdmin && o.ProducerID != actor.ID {
		if err := s.auditor.Record(ctx, actor.ID, domain.AuditOrderForceStatus, o.ID,
			orderForceMeta{From: o.Status, To: to, Note: note}); err != nil {
			return nil, err
		}
	}
	return s.orders.FindByID(ctx, orderID)
}

func (s *OrderService) Get(ctx context.Context, actor *domain.Identity, orderID string) (*domain.Order, []domain.OrderStatusHistory, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, domain.ErrNotFound
	}
	caps := actor.Capabilities()
	if !caps.CanAdmin && o.BuyerID != actor.ID && o.ProducerID != actor.ID {
		return nil, nil, domain.ErrForbidden
	}
	hs, err := s.orders.History(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return o, hs, nil
}

func (s *OrderService) ListForBuyer(ctx context.Context, actor *domain.Identity, offset, limit int) ([]domain.Order, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByBuyer(ctx, actor.ID, offset, limit)
}

func (s *OrderService) ListForProducer(ctx context.Context, actor *domain.Identity, status domain.OrderStatus, offset, limit int) ([]domain.Order, error) {
	actor, err := domain.RequireProducerOrAdmin(actor)
	if err != nil {
		return nil, err
	}
	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, domain.Invalid("unknown order status: " + string(status))
	}
	return s.orders.ListByProducer(ctx, actor.ID, status, offset, limit)
}
