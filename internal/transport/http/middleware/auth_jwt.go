package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"local-yield/internal/core/auth"
	"local-yield/internal/domain"
	resp "local-yield/internal/transport/http/response"
)

const IdentityKey = "identity"

// AuthJWT 解析 Bearer token 并注入请求级 Identity
// requireRole 非空时该分组整体限定角色（admin 入口用）
func AuthJWT(j *auth.JWTer, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		role := domain.Role(claims.Role)
		if requireRole != "" && role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		// Crud 泛型路由读 userId，其余走 Identity
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Set(IdentityKey, &domain.Identity{ID: claims.UID, Role: role})
		c.Next()
	}
}

// Identity 取当前请求身份，未登录返回 nil（service 层收口判空）
func Identity(c *gin.Context) *domain.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}

// RequireCapability 能力门槛中间件，进入分组先过能力检查
func RequireCapability(check func(domain.CapabilitySet) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
			return
		}
		if !check(id.Capabilities()) {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Next()
	}
}
