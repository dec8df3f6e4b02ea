package v1

import (
	"kondax-backend/config"
	"kondax-backend/internal/delivery/http/middleware"
	"kondax-backend/internal/domain"
	"kondax-backend/internal/usecase"
	"kondax-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	ContentUC domain.ContentUsecase
	SitemapUC domain.SitemapUsecase
	HealthUC  usecase.HealthUsecase
	// Cache is nil when content caching is disabled
	Cache  domain.ContentCache
	Audit  *security.SecurityLogger
	Config *config.Config
	// Limiters are owned by the caller, which closes them on shutdown
	GlobalLimiter  *middleware.RateLimiter
	ContactLimiter *middleware.RateLimiter
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	NewSitemapHandler(r, deps.SitemapUC)

	v1 := r.Group("/v1")
	if deps.GlobalLimiter != nil {
		v1.Use(deps.GlobalLimiter.Handler())
	}

	NewHealthHandler(v1, deps.HealthUC)

	// Public routes
	var contactLimiter gin.HandlerFunc
	if deps.ContactLimiter != nil {
		contactLimiter = deps.ContactLimiter.Handler()
	}
	NewContactHandler(v1, deps.ContactUC, deps.Audit, contactLimiter)
	NewContentHandler(v1, deps.ContentUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.RevalidateJWTSecret, middleware.ScopeRevalidate, deps.Audit))
	{
		NewAdminHandler(admin, deps.Cache, deps.Audit)
	}

	return r
}
