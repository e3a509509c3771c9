package domain

import "time"

// OrderStatus 订单全部合法状态
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCanceled  OrderStatus = "CANCELED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderPaid, OrderFulfilled, OrderCanceled, OrderRefunded:
		return true
	}
	return false
}

type Order struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	BuyerID    string      `gorm:"size:36;index" json:"buyerId"`
	ProducerID string      `gorm:"size:36;index" json:"producerId"`
	ProductID  string      `gorm:"size:36;index" json:"productId"`
	Quantity   int         `json:"quantity"`
	TotalCents int64       `json:"totalCents"`
	Status     OrderStatus `gorm:"size:16;default:'PENDING';index" json:"status"`
	Paid       bool        `gorm:"default:false" json:"paid"`
	PickupDate *time.Time  `json:"pickupDate,omitempty"`
	// FulfilledAt 仅在进入 FULFILLED 时打一次时间戳，重复调用不重打
	FulfilledAt *time.Time `json:"fulfilledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// OrderStatusHistory 每次状态迁移追加一行，只增不改
type OrderStatusHistory struct {
	ID         string      `gorm:"primaryKey;size:36" json:"id"`
	OrderID    string      `gorm:"size:36;index" json:"orderId"`
	FromStatus OrderStatus `gorm:"size:16" json:"fromStatus"`
	ToStatus   OrderStatus `gorm:"size:16" json:"toStatus"`
	ChangedBy  string      `gorm:"size:36" json:"changedBy"`
	Note       string      `gorm:"size:256" json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
