package service

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

// 每类动作一份结构化 metadata，不用无类型字段袋
type reviewFlagMeta struct {
	PriorStatus domain.ReviewStatus `json:"priorStatus"`
	FlaggedBy   string              `json:"flaggedBy,omitempty"`
}

type orderForceMeta struct {
	From domain.OrderStatus `json:"from"`
	To   domain.OrderStatus `json:"to"`
	Note string             `json:"note,omitempty"`
}

type reportResolveMeta struct {
	Status domain.ReportStatus `json:"status"`
	Note   string              `json:"note,omitempty"`
}

type userBanMeta struct {
	Email string `json:"email,omitempty"`
}

// Auditor 管理端动作审计：一次管理端变更恰好一条记录，写入后不再触碰
type Auditor struct {
	audits *repo.AuditRepo
}

func NewAuditor(audits *repo.AuditRepo) *Auditor { return &Auditor{audits: audits} }

func (a *Auditor) Record(ctx context.Context, adminID string, action domain.AuditAction, targetID string, meta any) error {
	rec := &domain.AuditRecord{
		ID:        utils.NewID(),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		CreatedAt: time.Now(),
	}
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		rec.Metadata = datatypes.JSON(b)
	}
	return a.audits.Append(ctx, rec)
}

func (a *Auditor) ByTarget(ctx context.Context, targetID string) ([]domain.AuditRecord, error) {
	return a.audits.ListByTarget(ctx, targetID)
}

func (a *Auditor) ByTimeRange(ctx context.Context, from, to time.Time, offset, limit int) ([]domain.AuditRecord, int64, error) {
	return a.audits.ListByTimeRange(ctx, from, to, offset, limit)
}
