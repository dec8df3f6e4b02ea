package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kondax-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// The mirror keeps one row per published CMS document:
//
//	CREATE TABLE documents (
//	    id           TEXT PRIMARY KEY,
//	    doc_type     TEXT NOT NULL,
//	    slug         TEXT NOT NULL,
//	    title        JSONB,
//	    description  JSONB,
//	    published_at TIMESTAMPTZ,
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    author       TEXT,
//	    image        JSONB,
//	    body         JSONB,
//	    categories   TEXT[] NOT NULL DEFAULT '{}',
//	    UNIQUE (doc_type, slug)
//	);
const documentColumns = `id, doc_type, slug, title, description, published_at, updated_at, author, image, body, categories`

type documentRepo struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) domain.ContentRepository {
	return &documentRepo{db: db}
}

// documentFilter builds the WHERE clause shared by list and count.
func documentFilter(docType, category string) (string, []interface{}) {
	if category == "" {
		return `doc_type = $1`, []interface{}{docType}
	}
	return `doc_type = $1 AND $2 = ANY(categories)`, []interface{}{docType, category}
}

func (r *documentRepo) FetchDocuments(ctx context.Context, q domain.DocumentQuery) ([]domain.Document, error) {
	where, args := documentFilter(q.Type, q.Category)
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s
		ORDER BY published_at DESC NULLS LAST, id
		LIMIT $%d OFFSET $%d`, documentColumns, where, n+1, n+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) CountDocuments(ctx context.Context, docType, category string) (int64, error) {
	where, args := documentFilter(docType, category)

	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *documentRepo) GetBySlug(ctx context.Context, docType, slug string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE doc_type = $1 AND slug = $2`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, docType, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *documentRepo) ListCategories(ctx context.Context, docType string) ([]string, error) {
	query := `SELECT ARRAY(
		SELECT DISTINCT c FROM documents, unnest(categories) AS c
		WHERE doc_type = $1 AND c <> '' ORDER BY c)`

	var categories []string
	if err := r.db.QueryRow(ctx, query, docType).Scan(pq.Array(&categories)); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *documentRepo) ListSlugs(ctx context.Context, docType string) ([]domain.SlugEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT slug, updated_at FROM documents WHERE doc_type = $1 ORDER BY published_at DESC NULLS LAST`, docType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []domain.SlugEntry
	for rows.Next() {
		var entry domain.SlugEntry
		var updated time.Time
		if err := rows.Scan(&entry.Slug, &updated); err != nil {
			return nil, err
		}
		entry.UpdatedAt = &updated
		slugs = append(slugs, entry)
	}
	return slugs, rows.Err()
}

// scanDocument reads one row in documentColumns order. jsonb columns carry
// the same shapes the CMS API returns.
func scanDocument(row pgx.Row) (*domain.Document, error) {
	var (
		doc                             domain.Document
		title, description, image, body []byte
		author                          *string
		publishedAt                     *time.Time
		updatedAt                       time.Time
		categories                      []string
	)
	if err := row.Scan(
		&doc.ID, &doc.Type, &doc.Slug, &title, &description, &publishedAt, &updatedAt,
		&author, &image, &body, pq.Array(&categories),
	); err != nil {
		return nil, err
	}

	doc.PublishedAt = publishedAt
	doc.UpdatedAt = &updatedAt
	if author != nil {
		doc.Author = strings.TrimSpace(*author)
	}
	doc.Categories = categories

	if err := decodeColumn("title", title, &doc.Title); err != nil {
		return nil, err
	}
	if err := decodeColumn("description", description, &doc.Description); err != nil {
		return nil, err
	}
	if err := decodeColumn("image", image, &doc.Image); err != nil {
		return nil, err
	}
	if err := decodeColumn("body", body, &doc.Body); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeColumn(name string, raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("documents.%s: %w", name, err)
	}
	return nil
}
