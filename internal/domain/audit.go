package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction 管理端动作标签，metadata 的结构按标签约定
type AuditAction string

const (
	AuditReviewApproveFlag AuditAction = "REVIEW_APPROVE_FLAG"
	AuditReviewDismissFlag AuditAction = "REVIEW_DISMISS_FLAG"
	AuditReviewHide        AuditAction = "REVIEW_HIDE"
	AuditReviewUnhide      AuditAction = "REVIEW_UNHIDE"
	AuditOrderForceStatus  AuditAction = "ORDER_FORCE_STATUS"
	AuditReportResolve     AuditAction = "REPORT_RESOLVE"
	AuditUserBan           AuditAction = "USER_BAN"
)

// AuditRecord 管理端操作的 append-only 审计账本
// 写入后永不修改，是 “谁在什么时候做了什么” 的唯一事实来源
type AuditRecord struct {
	ID       string         `gorm:"primaryKey;size:36" json:"id"`
	AdminID  string         `gorm:"size:36;index" json:"adminId"`
	Action   AuditAction    `gorm:"size:36;index" json:"action"`
	TargetID string         `gorm:"size:36;index" json:"targetId"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	// 按时间范围查询走这个索引
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (AuditRecord) TableName() string { return "admin_audit_logs" }
