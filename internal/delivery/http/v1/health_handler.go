package v1

import (
	"net/http"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// NewHealthHandler registers GET /health. A degraded dependency turns the
// answer into a 503 so load balancers notice.
func NewHealthHandler(public *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	public.GET("/health", func(c *gin.Context) {
		status := healthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})
}
