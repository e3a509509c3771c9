package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"local-yield/internal/repo"
	httpez "local-yield/internal/transport/http/ez"
)

// catalogModule 公开目录浏览，走统一注册器挂到 /api/v1
type catalogModule struct {
	catalog *repo.CatalogRepo
}

// RegisterCatalogModule 在引擎构建前调用一次
func RegisterCatalogModule(catalog *repo.CatalogRepo) {
	Register(&catalogModule{catalog: catalog})
}

func (m *catalogModule) Priority() int { return 10 }

func (m *catalogModule) MountAPI(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/catalog/products",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			_, limit := pageQuery(c)
			ps, err := m.catalog.RecentProducts(c, time.Time{}, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": ps}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/catalog/events",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			_, limit := pageQuery(c)
			evs, err := m.catalog.UpcomingEvents(c, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": evs}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/catalog/postings",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			_, limit := pageQuery(c)
			ps, err := m.catalog.OpenPostings(c, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": ps}, nil
		},
	})
}
