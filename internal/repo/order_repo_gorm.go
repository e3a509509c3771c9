package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"local-yield/internal/domain"
	"local-yield/pkg/utils"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string, offset, limit int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepo) ListByProducer(ctx context.Context, producerID string, status domain.OrderStatus, offset, limit int) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Where("producer_id = ?", producerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []domain.Order
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, err
}

// Transition 状态 + 履约时间戳一次写入；进入 FULFILLED 用 COALESCE 保证只打一次戳
// 同时追加一行状态历史（同事务）
func (r *OrderRepo) Transition(ctx context.Context, o *domain.Order, to domain.OrderStatus, actorID, note string) error {
	from := o.Status
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to, "updated_at": now}
		if to == domain.OrderPaid {
			updates["paid"] = true
		}
		if to == domain.OrderFulfilled {
			updates["fulfilled_at"] = gorm.Expr("COALESCE(fulfilled_at, ?)", now)
		}
		if err := tx.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return err
		}
		h := domain.OrderStatusHistory{
			ID:         utils.NewID(),
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actorID,
			Note:       note,
		}
		return tx.Create(&h).Error
	})
}

func (r *OrderRepo) AppendHistory(ctx context.Context, h *domain.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *OrderRepo) History(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error) {
	var hs []domain.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&hs).Error
	return hs, err
}

// CountAndGMV 统计口径：paid=true 或 status ∈ {PAID, FULFILLED} 的并集，每单只计一次
func (r *OrderRepo) CountAndGMV(ctx context.Context) (int64, int64, error) {
	type agg struct {
		N   int64
		Sum int64
	}
	var a agg
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COUNT(*) AS n, COALESCE(SUM(total_cents), 0) AS sum").
		Where("paid = ? OR status IN ?", true, []domain.OrderStatus{domain.OrderPaid, domain.OrderFulfilled}).
		Scan(&a).Error
	return a.N, a.Sum, err
}
