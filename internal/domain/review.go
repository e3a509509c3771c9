package domain

import "time"

// ReviewStatus 评价可见性状态机：
// PENDING_APPROVAL →(producer approve) PUBLIC
// PENDING_APPROVAL/PUBLIC →(producer flag) FLAGGED
// FLAGGED →(admin approve-flag) PUBLIC / (admin dismiss-flag) 回到标记前状态
type ReviewStatus string

const (
	ReviewPendingApproval ReviewStatus = "PENDING_APPROVAL"
	ReviewPublic          ReviewStatus = "PUBLIC"
	ReviewFlagged         ReviewStatus = "FLAGGED"
)

// Review 买家对完成订单/托管的评价；只改状态位，从不物理删除
type Review struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	ReviewerID string `gorm:"size:36;index:idx_reviews_reviewer_order,unique;index:idx_reviews_reviewer_booking,unique" json:"reviewerId"`
	ProducerID string `gorm:"size:36;index" json:"producerId"`
	// 最多引用 OrderID / CareBookingID 其一（Market 或 Care 来源）
	OrderID          *string      `gorm:"size:36;index:idx_reviews_reviewer_order,unique" json:"orderId,omitempty"`
	CareBookingID    *string      `gorm:"size:36;index:idx_reviews_reviewer_booking,unique" json:"careBookingId,omitempty"`
	Rating           int          `json:"rating"`
	Comment          string       `gorm:"size:2048" json:"comment"`
	ProducerResponse string       `gorm:"size:2048" json:"producerResponse,omitempty"`
	Status           ReviewStatus `gorm:"size:24;default:'PENDING_APPROVAL';index" json:"status"`
	// StatusBeforeFlag 标记时记录的前态，dismiss 时恢复
	StatusBeforeFlag ReviewStatus `gorm:"size:24" json:"-"`
	FlaggedByID      string       `gorm:"size:36" json:"-"`
	HiddenByAdmin    bool         `gorm:"default:false" json:"hiddenByAdmin"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

func (Review) TableName() string { return "reviews" }

// PubliclyVisible 对外可见判定的唯一出口
// hiddenByAdmin 优先于其它任何状态位
func (r *Review) PubliclyVisible() bool {
	return r.Status == ReviewPublic && !r.HiddenByAdmin
}
