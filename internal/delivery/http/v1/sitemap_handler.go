package v1

import (
	"net/http"

	"kondax-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SitemapHandler struct {
	sitemapUC domain.SitemapUsecase
}

// NewSitemapHandler registers /sitemap.xml and /robots.txt at the root.
func NewSitemapHandler(root gin.IRoutes, sitemapUC domain.SitemapUsecase) {
	handler := &SitemapHandler{sitemapUC: sitemapUC}

	root.GET("/sitemap.xml", handler.Sitemap)
	root.GET("/robots.txt", handler.Robots)
}

func (h *SitemapHandler) Sitemap(c *gin.Context) {
	xml, err := h.sitemapUC.Sitemap(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(xml))
}

func (h *SitemapHandler) Robots(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.sitemapUC.Robots()))
}
