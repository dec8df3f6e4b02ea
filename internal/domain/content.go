package domain

import (
	"context"
	"errors"
	"time"

	"kondax-backend/pkg/portabletext"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// Document types kept in the content store
const (
	DocTypeBlog = "blog"
	DocTypeNews = "news"
)

// Document is a CMS document as stored, with every locale still present.
type Document struct {
	ID          string                       `json:"_id"`
	Type        string                       `json:"_type"`
	Slug        string                       `json:"slug"`
	Title       portabletext.LocalizedString `json:"title"`
	Description portabletext.LocalizedString `json:"description"`
	PublishedAt *time.Time                   `json:"publishedAt,omitempty"`
	UpdatedAt   *time.Time                   `json:"_updatedAt,omitempty"`
	Author      string                       `json:"author,omitempty"`
	Image       *portabletext.ImageRef       `json:"image,omitempty"`
	Body        portabletext.LocalizedBody   `json:"body,omitempty"`
	Categories  []string                     `json:"categories,omitempty"`
}

// DocumentQuery selects a page of documents, newest first.
type DocumentQuery struct {
	Type     string
	Category string
	Offset   int
	Limit    int
}

// SlugEntry is the minimum needed to list a document in the sitemap.
type SlugEntry struct {
	Slug      string     `json:"slug"`
	UpdatedAt *time.Time `json:"_updatedAt,omitempty"`
}

// ContentRepository is the read-only view of the content store.
type ContentRepository interface {
	FetchDocuments(ctx context.Context, q DocumentQuery) ([]Document, error)
	CountDocuments(ctx context.Context, docType, category string) (int64, error)
	// GetBySlug returns ErrNotFound when no document matches.
	GetBySlug(ctx context.Context, docType, slug string) (*Document, error)
	ListCategories(ctx context.Context, docType string) ([]string, error)
	ListSlugs(ctx context.Context, docType string) ([]SlugEntry, error)
}

// Article is a Document resolved for one locale and ready to display.
type Article struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Slug        string            `json:"slug"`
	Locale      string            `json:"locale"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	Author      string            `json:"author,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Body        portabletext.Body `json:"body"`
	HTML        string            `json:"html"`
}

// ListQuery is a paged, localized listing request.
type ListQuery struct {
	Locale   string
	Page     int
	Limit    int
	Category string
}

// ArticlePage is one page of a listing.
type ArticlePage struct {
	Items      []Article `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type ContentUsecase interface {
	ListPosts(ctx context.Context, q ListQuery) (*ArticlePage, error)
	GetPost(ctx context.Context, slug, locale string) (*Article, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListNews(ctx context.Context, q ListQuery) (*ArticlePage, error)
	GetNews(ctx context.Context, slug, locale string) (*Article, error)
}

// ContentCache is implemented by repositories that can drop cached reads.
type ContentCache interface {
	Purge(ctx context.Context) (int, error)
}
