package v1

import (
	"net/http"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"
	"kondax-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	cache domain.ContentCache
	audit *security.SecurityLogger
}

// RevalidateResult reports how many cached reads were dropped.
type RevalidateResult struct {
	Purged int `json:"purged"`
}

// NewAdminHandler registers operator routes on an already protected group.
// cache may be nil when content caching is disabled.
func NewAdminHandler(admin *gin.RouterGroup, cache domain.ContentCache, audit *security.SecurityLogger) {
	handler := &AdminHandler{cache: cache, audit: audit}

	admin.POST("/revalidate", handler.Revalidate)
}

// Revalidate godoc
// @Summary      Purge cached content
// @Description  Drops every cached CMS read so the next request hits the store.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=RevalidateResult}
// @Failure      401  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /admin/revalidate [post]
func (h *AdminHandler) Revalidate(c *gin.Context) {
	if h.cache == nil {
		response.Success(c, http.StatusOK, "Content cache is disabled", RevalidateResult{})
		return
	}

	purged, err := h.cache.Purge(c.Request.Context())
	if err != nil {
		_ = c.Error(apperror.Unavailable("Cache purge failed", err))
		return
	}

	if h.audit != nil {
		h.audit.LogCachePurged(c.Request.Context(), c.GetString(string(domain.KeyTokenSubject)), response.RequestID(c), purged)
	}
	response.Success(c, http.StatusOK, "Content cache purged", RevalidateResult{Purged: purged})
}
