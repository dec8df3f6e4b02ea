package v1

import (
	"net/http"
	"strconv"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentUC domain.ContentUsecase
}

// NewContentHandler registers the public blog and news routes
func NewContentHandler(public *gin.RouterGroup, contentUC domain.ContentUsecase) {
	handler := &ContentHandler{contentUC: contentUC}

	blog := public.Group("/blog")
	{
		blog.GET("", handler.ListPosts)
		blog.GET("/categories", handler.ListCategories)
		blog.GET("/:slug", handler.GetPost)
	}

	news := public.Group("/news")
	{
		news.GET("", handler.ListNews)
		news.GET("/:slug", handler.GetNews)
	}
}

// ListPosts godoc
// @Summary      List blog posts
// @Description  Newest first, localized, with rendered HTML bodies.
// @Tags         content
// @Produce      json
// @Param        locale    query  string  false  "ja or en"  default(ja)
// @Param        page      query  int     false  "Page number"  default(1)
// @Param        limit     query  int     false  "Page size"  default(5)
// @Param        category  query  string  false  "Category filter"
// @Success      200  {object}  response.Response{data=domain.ArticlePage}
// @Failure      400  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /blog [get]
func (h *ContentHandler) ListPosts(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	q.Category = c.Query("category")

	page, err := h.contentUC.ListPosts(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", page)
}

// ListCategories godoc
// @Summary      List blog categories
// @Tags         content
// @Produce      json
// @Success      200  {object}  response.Response{data=[]string}
// @Router       /blog/categories [get]
func (h *ContentHandler) ListCategories(c *gin.Context) {
	categories, err := h.contentUC.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", categories)
}

// GetPost godoc
// @Summary      Get a blog post by slug
// @Tags         content
// @Produce      json
// @Param        slug    path   string  true   "Post slug"
// @Param        locale  query  string  false  "ja or en"  default(ja)
// @Success      200  {object}  response.Response{data=domain.Article}
// @Failure      404  {object}  response.Response
// @Router       /blog/{slug} [get]
func (h *ContentHandler) GetPost(c *gin.Context) {
	article, err := h.contentUC.GetPost(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", article)
}

// ListNews godoc
// @Summary      List news items
// @Tags         content
// @Produce      json
// @Param        locale  query  string  false  "ja or en"  default(ja)
// @Param        page    query  int     false  "Page number"  default(1)
// @Param        limit   query  int     false  "Page size"  default(5)
// @Success      200  {object}  response.Response{data=domain.ArticlePage}
// @Router       /news [get]
func (h *ContentHandler) ListNews(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.contentUC.ListNews(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", page)
}

// GetNews godoc
// @Summary      Get a news item by slug
// @Tags         content
// @Produce      json
// @Param        slug    path   string  true   "News slug"
// @Param        locale  query  string  false  "ja or en"  default(ja)
// @Success      200  {object}  response.Response{data=domain.Article}
// @Failure      404  {object}  response.Response
// @Router       /news/{slug} [get]
func (h *ContentHandler) GetNews(c *gin.Context) {
	article, err := h.contentUC.GetNews(c.Request.Context(), c.Param("slug"), c.Query("locale"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "", article)
}

// parseListQuery reads locale, page and limit. Missing values are left zero
// for the usecase to default.
func parseListQuery(c *gin.Context) (domain.ListQuery, error) {
	q := domain.ListQuery{Locale: c.Query("locale")}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, apperror.BadRequest("Invalid page")
		}
		q.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, apperror.BadRequest("Invalid limit")
		}
		q.Limit = limit
	}
	return q, nil
}
