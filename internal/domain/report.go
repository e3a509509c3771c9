package domain

import "time"

// ReportStatus 举报处理状态
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// ReportEntityType 可被举报的实体类型
type ReportEntityType string

const (
	ReportEntityUser    ReportEntityType = "user"
	ReportEntityProduct ReportEntityType = "product"
	ReportEntityReview  ReportEntityType = "review"
	ReportEntityOrder   ReportEntityType = "order"
	ReportEntityPosting ReportEntityType = "posting"
)

func ValidReportEntityType(t ReportEntityType) bool {
	switch t {
	case ReportEntityUser, ReportEntityProduct, ReportEntityReview, ReportEntityOrder, ReportEntityPosting:
		return true
	}
	return false
}

// Report 举报；读取仅限 admin、举报人本人，entityType=order 时再加该订单的生产者
type Report struct {
	ID         string           `gorm:"primaryKey;size:36" json:"id"`
	ReporterID string           `gorm:"size:36;index" json:"reporterId"`
	EntityType ReportEntityType `gorm:"size:24;index" json:"entityType"`
	EntityID   string           `gorm:"size:36;index" json:"entityId"`
	Reason     string           `gorm:"size:512" json:"reason"`
	Status     ReportStatus     `gorm:"size:16;default:'PENDING';index" json:"status"`
	AdminNote  string           `gorm:"size:512" json:"adminNote,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func (Report) TableName() string { return "reports" }
