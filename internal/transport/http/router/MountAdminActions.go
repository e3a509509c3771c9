package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"local-yield/internal/domain"
	httpez "local-yield/internal/transport/http/ez"
	mdw "local-yield/internal/transport/http/middleware"
)

// 把管理端接口集中在这里注册
func MountAdminActions(admin *gin.RouterGroup, svc Services) {
	ez := httpez.New(admin)

	// --- 平台汇总 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Analytics]{
		Method: http.MethodGet,
		Path:   "/analytics",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Analytics, error) {
			return svc.Analytics.Summary(c, mdw.Identity(c))
		},
	})

	// --- 用户列表 / 封禁 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			us, total, err := svc.Users.ListForAdmin(c, mdw.Identity(c), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": us, "total": total}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := svc.Users.Ban(c, mdw.Identity(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	// --- 旗标评价仲裁队列 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/reviews/flagged",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			rs, total, err := svc.Reviews.ListFlagged(c, mdw.Identity(c), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs, "total": total}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/approve-flag",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.ApproveFlagByAdmin(c, mdw.Identity(c), c.Param("id"))
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/dismiss-flag",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.DismissFlagByAdmin(c, mdw.Identity(c), c.Param("id"))
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/hide",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.SetHiddenByAdmin(c, mdw.Identity(c), c.Param("id"), true)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/unhide",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.SetHiddenByAdmin(c, mdw.Identity(c), c.Param("id"), false)
		},
	})

	// --- 举报处理 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/reports",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			rs, total, err := svc.Reports.ListForAdmin(c, mdw.Identity(c), domain.ReportStatus(c.Query("status")), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs, "total": total}, nil
		},
	})
	type resolveIn struct {
		Status domain.ReportStatus `json:"status" binding:"required"`
		Note   string              `json:"note"`
	}
	httpez.RegisterAction(ez, httpez.Action[resolveIn, *domain.Report]{
		Method: http.MethodPost,
		Path:   "/reports/:id/resolve",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *resolveIn) (*domain.Report, error) {
			return svc.Reports.Resolve(c, mdw.Identity(c), c.Param("id"), in.Status, in.Note)
		},
	})

	// --- 订单强制迁移（走同一状态机校验）---
	type forceIn struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
		Note   string             `json:"note"`
	}
	httpez.RegisterAction(ez, httpez.Action[forceIn, *domain.Order]{
		Method: http.MethodPost,
		Path:   "/orders/:id/status",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *forceIn) (*domain.Order, error) {
			return svc.Orders.UpdateStatus(c, mdw.Identity(c), c.Param("id"), in.Status, in.Note)
		},
	})

	// --- 审计查询 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/audit/target/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			rs, err := svc.Auditor.ByTarget(c, c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs}, nil
		},
	})
	type auditRangeQ struct {
		From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
		To   time.Time `form:"to"   time_format:"2006-01-02T15:04:05Z07:00"`
	}
	httpez.RegisterAction(ez, httpez.Action[auditRangeQ, gin.H]{
		Method: http.MethodGet,
		Path:   "/audit",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *auditRangeQ) (gin.H, error) {
			if in.To.IsZero() {
				in.To = time.Now()
			}
			offset, limit := pageQuery(c)
			rs, total, err := svc.Auditor.ByTimeRange(c, in.From, in.To, offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs, "total": total}, nil
		},
	})
}
