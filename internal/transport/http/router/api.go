package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"local-yield/internal/core/auth"
	"local-yield/internal/domain"
	"local-yield/internal/service"
	httpez "local-yield/internal/transport/http/ez"
	mdw "local-yield/internal/transport/http/middleware"
)

// Services 路由层依赖的全部业务入口
type Services struct {
	Users     *service.UserService
	Orders    *service.OrderService
	Reviews   *service.ReviewService
	Reports   *service.ReportService
	Bookings  *service.BookingService
	Feed      *service.FeedService
	Analytics *service.AnalyticsService
	Auditor   *service.Auditor
}

func NewAPIEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer, svc Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	// 统一注册器（公开目录浏览等模块走这里）
	MountAllAPI(api)

	mountPublicActions(api, svc)

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))
	mountUserActions(authed, svc)

	// 生产者分组：能力门槛 + 自有商品/活动/帖子的 CRUD
	producer := authed.Group("/producer")
	producer.Use(mdw.RequireCapability(func(cs domain.CapabilitySet) bool { return cs.CanSellAsProducer }))
	mountProducerActions(producer, db, svc)

	return r
}

func pageQuery(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}

/* ---------- 公开接口 ---------- */

func mountPublicActions(api *gin.RouterGroup, svc Services) {
	ez := httpez.New(api)

	type authOut struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}

	httpez.RegisterAction(ez, httpez.Action[service.RegisterInput, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.RegisterInput) (authOut, error) {
			u, tok, err := svc.Users.Register(c, *in)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Token: tok, User: u}, nil
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction(ez, httpez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (authOut, error) {
			u, tok, err := svc.Users.Login(c, in.Email, in.Password)
			if err != nil {
				return authOut{}, err
			}
			return authOut{Token: tok, User: u}, nil
		},
	})

	// feed：zip 解析不了就回退为不过滤，不报错
	type feedQ struct {
		Zip    string  `form:"zip"`
		Radius float64 `form:"radius"`
	}
	httpez.RegisterAction(ez, httpez.Action[feedQ, *domain.Feed]{
		Method: http.MethodGet,
		Path:   "/feed",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *feedQ) (*domain.Feed, error) {
			return svc.Feed.Get(c, in.Zip, in.Radius)
		},
	})

	// 生产者公开评价墙
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/producers/:id/reviews",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			rs, err := svc.Reviews.ListPublic(c, c.Param("id"), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs}, nil
		},
	})
}

/* ---------- 登录用户接口 ---------- */

func mountUserActions(g *gin.RouterGroup, svc Services) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return svc.Users.Me(c, mdw.Identity(c))
		},
	})

	// 订单
	httpez.RegisterAction(ez, httpez.Action[service.PlaceOrderInput, *domain.Order]{
		Method: http.MethodPost,
		Path:   "/orders",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.PlaceOrderInput) (*domain.Order, error) {
			return svc.Orders.Place(c, mdw.Identity(c), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			os, err := svc.Orders.ListForBuyer(c, mdw.Identity(c), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": os}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/orders/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			o, hs, err := svc.Orders.Get(c, mdw.Identity(c), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"order": o, "history": hs}, nil
		},
	})
	type statusIn struct {
		Status domain.OrderStatus `json:"status" binding:"required"`
		Note   string             `json:"note"`
	}
	httpez.RegisterAction(ez, httpez.Action[statusIn, *domain.Order]{
		Method: http.MethodPost,
		Path:   "/orders/:id/status",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *statusIn) (*domain.Order, error) {
			return svc.Orders.UpdateStatus(c, mdw.Identity(c), c.Param("id"), in.Status, in.Note)
		},
	})

	// 评价
	httpez.RegisterAction(ez, httpez.Action[service.CreateReviewInput, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.CreateReviewInput) (*domain.Review, error) {
			return svc.Reviews.Create(c, mdw.Identity(c), *in)
		},
	})

	// 举报
	httpez.RegisterAction(ez, httpez.Action[service.CreateReportInput, *domain.Report]{
		Method: http.MethodPost,
		Path:   "/reports",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.CreateReportInput) (*domain.Report, error) {
			return svc.Reports.Create(c, mdw.Identity(c), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/reports",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			rs, err := svc.Reports.ListMine(c, mdw.Identity(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Report]{
		Method: http.MethodGet,
		Path:   "/reports/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Report, error) {
			return svc.Reports.Get(c, mdw.Identity(c), c.Param("id"))
		},
	})

	// 托管预约
	httpez.RegisterAction(ez, httpez.Action[service.RequestBookingInput, *domain.CareBooking]{
		Method: http.MethodPost,
		Path:   "/bookings",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.RequestBookingInput) (*domain.CareBooking, error) {
			return svc.Bookings.Request(c, mdw.Identity(c), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/bookings",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			owned, caring, err := svc.Bookings.ListMine(c, mdw.Identity(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"owned": owned, "caring": caring}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.CareBooking]{
		Method: http.MethodGet,
		Path:   "/bookings/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.CareBooking, error) {
			return svc.Bookings.Get(c, mdw.Identity(c), c.Param("id"))
		},
	})
	type bookingStatusIn struct {
		Status domain.CareBookingStatus `json:"status" binding:"required"`
	}
	httpez.RegisterAction(ez, httpez.Action[bookingStatusIn, *domain.CareBooking]{
		Method: http.MethodPost,
		Path:   "/bookings/:id/status",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *bookingStatusIn) (*domain.CareBooking, error) {
			return svc.Bookings.UpdateStatus(c, mdw.Identity(c), c.Param("id"), in.Status)
		},
	})
}

/* ---------- 生产者接口 ---------- */

func mountProducerActions(g *gin.RouterGroup, db *gorm.DB, svc Services) {
	// 商品/活动/帖子走泛型 CRUD，归属字段各自指定
	httpez.Crud(httpez.CrudConfig[domain.Product]{
		DB: db, Group: g, Path: "/products",
		New:        func() *domain.Product { return &domain.Product{} },
		OwnerField: "ProducerID",
		OrderBy:    "created_at DESC",
	})
	httpez.Crud(httpez.CrudConfig[domain.Event]{
		DB: db, Group: g, Path: "/events",
		New:        func() *domain.Event { return &domain.Event{} },
		OwnerField: "ProducerID",
		OrderBy:    "starts_at ASC",
	})
	httpez.Crud(httpez.CrudConfig[domain.HelpPosting]{
		DB: db, Group: g, Path: "/postings",
		New:        func() *domain.HelpPosting { return &domain.HelpPosting{} },
		OwnerField: "AuthorID",
		OrderBy:    "created_at DESC",
	})

	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/orders",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			offset, limit := pageQuery(c)
			os, err := svc.Orders.ListForProducer(c, mdw.Identity(c), domain.OrderStatus(c.Query("status")), offset, limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"list": os}, nil
		},
	})

	// 待审队列：含 FLAGGED，生产者能看见自己旗标过什么
	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/reviews/pending",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			rs, err := svc.Reviews.ListPendingForProducer(c, mdw.Identity(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"list": rs}, nil
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/approve",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.ApproveByProducer(c, mdw.Identity(c), c.Param("id"))
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/flag",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			return svc.Reviews.FlagByProducer(c, mdw.Identity(c), c.Param("id"))
		},
	})
	type respondIn struct {
		Response string `json:"response" binding:"required,max=1024"`
	}
	httpez.RegisterAction(ez, httpez.Action[respondIn, *domain.Review]{
		Method: http.MethodPost,
		Path:   "/reviews/:id/respond",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *respondIn) (*domain.Review, error) {
			return svc.Reviews.RespondByProducer(c, mdw.Identity(c), c.Param("id"), in.Response)
		},
	})
}
