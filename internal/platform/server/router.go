package server

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/handler"
	"github.com/ogurasousui/recruitment-api/internal/adapters/http/middleware"
	"github.com/ogurasousui/recruitment-api/internal/core/auth"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	"github.com/ogurasousui/recruitment-api/internal/platform/config"
	"github.com/ogurasousui/recruitment-api/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterDeps はルーター構築に必要なユースケースと設定です。
type RouterDeps struct {
	Config   *config.Config
	Log      *logger.Logger
	Auth     auth.UseCase
	Users    identity.UseCase
	Clients  client.UseCase
	Postings posting.UseCase
	// Limiter が nil の場合、ログインの頻度制限は行いません。
	Limiter middleware.Limiter
}

// NewRouter は HTTP API のルーティングを構築します。
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(cfg.Server.Mode)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.Telemetry.ServiceName),
		middleware.RequestLogger(deps.Log),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	authMW := middleware.NewAuthMiddleware(deps.Auth, deps.Log)
	hiringManager := authMW.RequireRole(identity.RoleHiringManager)

	authHandler := handler.NewAuthHandler(deps.Auth, handler.CookieConfig{
		Secure:   cfg.Auth.CookieSecure,
		Domain:   cfg.Auth.CookieDomain,
		SameSite: handler.ParseSameSite(cfg.Auth.CookieSameSite),
	}, deps.Log)
	postingHandler := handler.NewPostingHandler(deps.Postings, deps.Log)
	clientHandler := handler.NewClientHandler(deps.Clients, deps.Log)
	userHandler := handler.NewUserHandler(deps.Users, deps.Log)

	engine.GET("/healthz", handler.Health)

	api := engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.RateLimit(deps.Limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, deps.Log), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/token/refresh", authHandler.Refresh)
	authGroup.GET("/me", authMW.RequireAuth(), authHandler.Me)

	requisition := posting.KindRequisition
	clientPosition := posting.KindClientPosition

	postings := api.Group("/postings")
	postings.GET("", authMW.OptionalAuth(), postingHandler.List(nil))
	postings.DELETE("", authMW.RequireAuth(), hiringManager, postingHandler.BulkDelete)

	requisitions := api.Group("/requisitions")
	requisitions.GET("", authMW.OptionalAuth(), postingHandler.List(&requisition))
	requisitions.GET("/:id", authMW.OptionalAuth(), postingHandler.Get(requisition))
	requisitions.POST("", authMW.RequireAuth(), hiringManager, postingHandler.CreateRequisition)
	requisitions.PATCH("/:id", authMW.RequireAuth(), hiringManager, postingHandler.UpdateRequisition)
	requisitions.DELETE("/:id", authMW.RequireAuth(), hiringManager, postingHandler.Delete)

	positions := api.Group("/positions")
	positions.GET("", authMW.OptionalAuth(), postingHandler.List(&clientPosition))
	positions.GET("/:id", authMW.OptionalAuth(), postingHandler.Get(clientPosition))
	positions.POST("", authMW.RequireAuth(), hiringManager, postingHandler.CreateClientPosition)
	positions.PATCH("/:id", authMW.RequireAuth(), hiringManager, postingHandler.UpdateClientPosition)
	positions.DELETE("/:id", authMW.RequireAuth(), hiringManager, postingHandler.Delete)

	clients := api.Group("/clients", authMW.RequireAuth())
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.POST("", hiringManager, clientHandler.Create)
	clients.PATCH("/:id", hiringManager, clientHandler.Update)
	clients.DELETE("/:id", hiringManager, clientHandler.Delete)

	users := api.Group("/users", authMW.RequireAuth())
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", authMW.RequireSuperuser(), userHandler.Create)
	users.PATCH("/:id", authMW.RequireSuperuser(), userHandler.Update)
	users.POST("/:id/unlock", authMW.RequireSuperuser(), userHandler.Unlock)

	return engine
}
