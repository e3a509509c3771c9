// internal/transport/http/router/admin.go
package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"local-yield/internal/core/auth"
	"local-yield/internal/domain"
	mdw "local-yield/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, svc Services) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)
	// 管理端访问日志和恢复直接走 gin-contrib/zap
	r.Use(ginzap.Ginzap(l, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(l, true))

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.RoleAdmin))

	// ① 自动发现（如有）
	MountAllAdmin(admin)

	// ② Action 挂载管理端接口
	MountAdminActions(admin, svc)

	return r
}
