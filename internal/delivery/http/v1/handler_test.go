package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kondax-backend/internal/delivery/http/middleware"
	v1 "kondax-backend/internal/delivery/http/v1"
	"kondax-backend/internal/domain"
	"kondax-backend/internal/usecase"
	"kondax-backend/pkg/apperror"
	"kondax-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockContactUsecase struct {
	mock.Mock
}

func (m *MockContactUsecase) Validate(req *domain.ContactRequest) (*domain.ContactSubmission, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactSubmission), args.Error(1)
}

func (m *MockContactUsecase) Dispatch(ctx context.Context, sub *domain.ContactSubmission) domain.DispatchResult {
	args := m.Called(ctx, sub)
	return args.Get(0).(domain.DispatchResult)
}

type MockContentUsecase struct {
	mock.Mock
}

func (m *MockContentUsecase) ListPosts(ctx context.Context, q domain.ListQuery) (*domain.ArticlePage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArticlePage), args.Error(1)
}

func (m *MockContentUsecase) GetPost(ctx context.Context, slug, locale string) (*domain.Article, error) {
	args := m.Called(ctx, slug, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *MockContentUsecase) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContentUsecase) ListNews(ctx context.Context, q domain.ListQuery) (*domain.ArticlePage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArticlePage), args.Error(1)
}

func (m *MockContentUsecase) GetNews(ctx context.Context, slug, locale string) (*domain.Article, error) {
	args := m.Called(ctx, slug, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

type stubSitemap struct{ err error }

func (s stubSitemap) Sitemap(context.Context) (string, error) {
	return "<urlset></urlset>", s.err
}

func (stubSitemap) Robots() string { return "User-agent: *\n" }

type stubCache struct {
	purged int
	err    error
}

func (s *stubCache) Purge(context.Context) (int, error) { return s.purged, s.err }

func newEngine() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	return r, r.Group("/v1")
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details"`
	Data    json.RawMessage         `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSubmitContact(t *testing.T) {
	const validBody = `{"name":"Taro","email":"t@example.com","message":"Hi","category":"estimate"}`

	t.Run("Should accept a valid submission", func(t *testing.T) {
		uc := new(MockContactUsecase)
		sub := &domain.ContactSubmission{Name: "Taro", Email: "t@example.com", Message: "Hi", Category: "estimate"}
		uc.On("Validate", mock.MatchedBy(func(req *domain.ContactRequest) bool {
			return req.Email == "t@example.com" && req.Category == "estimate"
		})).Return(sub, nil)
		uc.On("Dispatch", mock.Anything, sub).Return(domain.DispatchResult{Success: true, ID: "re_123"})

		r, api := newEngine()
		v1.NewContactHandler(api, uc, nil, nil)
		w := perform(r, http.MethodPost, "/v1/contact", validBody)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "お問い合わせを受け付けました。ありがとうございます。", env.Message)
		assert.JSONEq(t, `{"id":"re_123"}`, string(env.Data))
		uc.AssertExpectations(t)
	})

	t.Run("Should return field details on validation failure", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Validate", mock.Anything).Return(nil, validation.Errors{{Field: "email", Message: "正しいメールアドレスを入力してください"}})

		r, api := newEngine()
		v1.NewContactHandler(api, uc, nil, nil)
		w := perform(r, http.MethodPost, "/v1/contact", `{"name":"Taro","email":"bad","message":"Hi"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "入力内容に不備があります。", env.Error)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "email", env.Details[0].Field)
		uc.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("Should treat malformed JSON as a validation failure", func(t *testing.T) {
		uc := new(MockContactUsecase)
		r, api := newEngine()
		v1.NewContactHandler(api, uc, nil, nil)
		w := perform(r, http.MethodPost, "/v1/contact", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		require.Len(t, env.Details, 1)
		assert.Equal(t, "body", env.Details[0].Field)
	})

	t.Run("Should return 500 when delivery fails", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Validate", mock.Anything).Return(&domain.ContactSubmission{}, nil)
		uc.On("Dispatch", mock.Anything, mock.Anything).Return(domain.DispatchResult{Success: false, Error: "メール送信に失敗しました。"})

		r, api := newEngine()
		v1.NewContactHandler(api, uc, nil, nil)
		w := perform(r, http.MethodPost, "/v1/contact", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "メール送信に失敗しました。", env.Error)
		assert.Empty(t, env.Details)
	})

	t.Run("Should return a generic 500 for unexpected errors", func(t *testing.T) {
		uc := new(MockContactUsecase)
		uc.On("Validate", mock.Anything).Return(nil, errors.New("validator misconfigured"))

		r, api := newEngine()
		v1.NewContactHandler(api, uc, nil, nil)
		w := perform(r, http.MethodPost, "/v1/contact", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "サーバーエラーが発生しました。", decodeEnvelope(t, w).Error)
	})
}

func TestContentRoutes(t *testing.T) {
	t.Run("Should pass listing parameters through", func(t *testing.T) {
		uc := new(MockContentUsecase)
		uc.On("ListPosts", mock.Anything, domain.ListQuery{Locale: "en", Page: 2, Limit: 10, Category: "tech"}).
			Return(&domain.ArticlePage{Items: []domain.Article{}, Page: 2, Limit: 10}, nil)

		r, api := newEngine()
		v1.NewContentHandler(api, uc)
		w := perform(r, http.MethodGet, "/v1/blog?locale=en&page=2&limit=10&category=tech", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"total":0,"page":2,"limit":10,"total_pages":0}`, string(decodeEnvelope(t, w).Data))
		uc.AssertExpectations(t)
	})

	t.Run("Should reject a non-numeric page", func(t *testing.T) {
		uc := new(MockContentUsecase)
		r, api := newEngine()
		v1.NewContentHandler(api, uc)
		w := perform(r, http.MethodGet, "/v1/news?page=abc", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "ListNews", mock.Anything, mock.Anything)
	})

	t.Run("Should route categories before slugs", func(t *testing.T) {
		uc := new(MockContentUsecase)
		uc.On("ListCategories", mock.Anything).Return([]string{"tech"}, nil)

		r, api := newEngine()
		v1.NewContentHandler(api, uc)
		w := perform(r, http.MethodGet, "/v1/blog/categories", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `["tech"]`, string(decodeEnvelope(t, w).Data))
	})

	t.Run("Should return 404 for a missing news item", func(t *testing.T) {
		uc := new(MockContentUsecase)
		uc.On("GetNews", mock.Anything, "missing", "ja").
			Return(nil, apperror.New(http.StatusNotFound, "News item not found", domain.ErrNotFound))

		r, api := newEngine()
		v1.NewContentHandler(api, uc)
		w := perform(r, http.MethodGet, "/v1/news/missing?locale=ja", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "News item not found", decodeEnvelope(t, w).Error)
	})

	t.Run("Should return the article", func(t *testing.T) {
		uc := new(MockContentUsecase)
		uc.On("GetPost", mock.Anything, "hello", "").Return(&domain.Article{Slug: "hello", HTML: "<p>x</p>"}, nil)

		r, api := newEngine()
		v1.NewContentHandler(api, uc)
		w := perform(r, http.MethodGet, "/v1/blog/hello", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(decodeEnvelope(t, w).Data), `"slug":"hello"`)
	})
}

func TestSitemapRoutes(t *testing.T) {
	t.Run("Should serve xml", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		v1.NewSitemapHandler(r, stubSitemap{})

		w := perform(r, http.MethodGet, "/sitemap.xml", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "<urlset></urlset>", w.Body.String())

		w = perform(r, http.MethodGet, "/robots.txt", "")
		assert.Equal(t, "User-agent: *\n", w.Body.String())
	})

	t.Run("Should surface store failures", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		v1.NewSitemapHandler(r, stubSitemap{err: apperror.Unavailable("down", nil)})

		w := perform(r, http.MethodGet, "/sitemap.xml", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRevalidate(t *testing.T) {
	t.Run("Should report purged keys", func(t *testing.T) {
		r, api := newEngine()
		v1.NewAdminHandler(api.Group("/admin"), &stubCache{purged: 4}, nil)

		w := perform(r, http.MethodPost, "/v1/admin/revalidate", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"purged":4}`, string(decodeEnvelope(t, w).Data))
	})

	t.Run("Should succeed without a cache", func(t *testing.T) {
		r, api := newEngine()
		v1.NewAdminHandler(api.Group("/admin"), nil, nil)

		w := perform(r, http.MethodPost, "/v1/admin/revalidate", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should fail when redis rejects the purge", func(t *testing.T) {
		r, api := newEngine()
		v1.NewAdminHandler(api.Group("/admin"), &stubCache{err: errors.New("READONLY")}, nil)

		w := perform(r, http.MethodPost, "/v1/admin/revalidate", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHealth(t *testing.T) {
	r, api := newEngine()
	v1.NewHealthHandler(api, usecase.NewHealthUsecase("sanity", nil))

	w := perform(r, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","content_backend":"sanity"}`, string(decodeEnvelope(t, w).Data))
}
