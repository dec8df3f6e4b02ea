package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"
	"kondax-backend/pkg/logger"
	"kondax-backend/pkg/portabletext"
)

// maxOffset bounds (page-1)*limit so the store never sees an overflowed offset
const maxOffset = math.MaxInt32

// ContentConfig holds listing defaults and the locale set.
type ContentConfig struct {
	Locales      []string // first entry is the fallback locale
	DefaultLimit int
	MaxLimit     int
}

type contentUsecase struct {
	repo      domain.ContentRepository
	formatter *portabletext.Formatter
	renderer  *portabletext.Renderer
	imageURL  portabletext.ImageURLFunc
	cfg       ContentConfig
}

// NewContentUsecase wires the content store to the formatter and renderer.
// imageURL resolves image references for both cover images and inline images.
func NewContentUsecase(repo domain.ContentRepository, imageURL portabletext.ImageURLFunc, cfg ContentConfig) domain.ContentUsecase {
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{"ja"}
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	return &contentUsecase{
		repo:      repo,
		formatter: portabletext.NewFormatter(),
		renderer:  portabletext.NewRenderer(imageURL),
		imageURL:  imageURL,
		cfg:       cfg,
	}
}

func (u *contentUsecase) ListPosts(ctx context.Context, q domain.ListQuery) (*domain.ArticlePage, error) {
	return u.list(ctx, domain.DocTypeBlog, q)
}

func (u *contentUsecase) GetPost(ctx context.Context, slug, locale string) (*domain.Article, error) {
	return u.get(ctx, domain.DocTypeBlog, slug, locale)
}

func (u *contentUsecase) ListNews(ctx context.Context, q domain.ListQuery) (*domain.ArticlePage, error) {
	// news has no categories
	q.Category = ""
	return u.list(ctx, domain.DocTypeNews, q)
}

func (u *contentUsecase) GetNews(ctx context.Context, slug, locale string) (*domain.Article, error) {
	return u.get(ctx, domain.DocTypeNews, slug, locale)
}

func (u *contentUsecase) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := u.repo.ListCategories(ctx, domain.DocTypeBlog)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (u *contentUsecase) list(ctx context.Context, docType string, q domain.ListQuery) (*domain.ArticlePage, error) {
	locale := u.resolveLocale(q.Locale)
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = u.cfg.DefaultLimit
	}
	if limit > u.cfg.MaxLimit {
		limit = u.cfg.MaxLimit
	}
	if page-1 > maxOffset/limit {
		return nil, apperror.BadRequest("Invalid page")
	}
	category := strings.TrimSpace(q.Category)

	docs, err := u.repo.FetchDocuments(ctx, domain.DocumentQuery{
		Type:     docType,
		Category: category,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, storeError("fetch "+docType, err)
	}

	total, err := u.repo.CountDocuments(ctx, docType, category)
	if err != nil {
		return nil, storeError("count "+docType, err)
	}

	items := make([]domain.Article, 0, len(docs))
	for i := range docs {
		article, err := u.localize(&docs[i], locale)
		if err != nil {
			return nil, err
		}
		items = append(items, *article)
	}

	return &domain.ArticlePage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (u *contentUsecase) get(ctx context.Context, docType, slug, locale string) (*domain.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperror.BadRequest("Invalid slug")
	}

	doc, err := u.repo.GetBySlug(ctx, docType, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.New(404, notFoundMessage(docType), err)
		}
		return nil, storeError("get "+docType, err)
	}
	return u.localize(doc, u.resolveLocale(locale))
}

// localize resolves every localized field, then reconciles and renders the
// body.
func (u *contentUsecase) localize(doc *domain.Document, locale string) (*domain.Article, error) {
	fallback := u.cfg.Locales[0]
	body := u.formatter.Reconcile(doc.Body.Resolve(locale, fallback))

	html, err := u.renderer.Render(body)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("render %s %q: %w", doc.Type, doc.Slug, err))
	}

	article := &domain.Article{
		ID:          doc.ID,
		Type:        doc.Type,
		Slug:        doc.Slug,
		Locale:      locale,
		Title:       doc.Title.Resolve(locale, fallback),
		Description: doc.Description.Resolve(locale, fallback),
		PublishedAt: doc.PublishedAt,
		Author:      doc.Author,
		Categories:  doc.Categories,
		Body:        body,
		HTML:        html,
	}
	if doc.Image != nil && u.imageURL != nil {
		article.ImageURL = u.imageURL(doc.Image)
	}
	return article, nil
}

// resolveLocale maps unsupported or empty locales to the default one.
func (u *contentUsecase) resolveLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	for _, l := range u.cfg.Locales {
		if l == locale {
			return l
		}
	}
	return u.cfg.Locales[0]
}

func notFoundMessage(docType string) string {
	if docType == domain.DocTypeNews {
		return "News item not found"
	}
	return "Post not found"
}

func storeError(op string, err error) error {
	logger.Log.Error("Content store request failed", "op", op, "error", err)
	return apperror.Unavailable("Content is temporarily unavailable. Please try again later.", fmt.Errorf("%s: %w", op, err))
}
