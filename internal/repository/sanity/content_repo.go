package sanity

import (
	"context"
	"fmt"
	"strings"

	"kondax-backend/internal/domain"
	"kondax-backend/pkg/portabletext"
)

// Projection shared by list and detail queries. slug is flattened to a string.
const documentProjection = `{
  _id,
  _type,
  _updatedAt,
  "slug": slug.current,
  title,
  description,
  publishedAt,
  author,
  image,
  body,
  categories
}`

type contentRepository struct {
	client *Client
}

// NewContentRepository serves domain.ContentRepository from a Sanity dataset.
func NewContentRepository(client *Client) domain.ContentRepository {
	return &contentRepository{client: client}
}

func typeFilter(docType, category string) (string, map[string]interface{}) {
	params := map[string]interface{}{"type": docType}
	filter := `_type == $type && defined(slug.current)`
	if category != "" {
		filter += ` && $category in categories`
		params["category"] = category
	}
	return filter, params
}

func (r *contentRepository) FetchDocuments(ctx context.Context, q domain.DocumentQuery) ([]domain.Document, error) {
	filter, params := typeFilter(q.Type, q.Category)
	params["offset"] = q.Offset
	// exclusive slice end
	params["end"] = q.Offset + q.Limit

	query := fmt.Sprintf(`*[%s] | order(publishedAt desc) [$offset...$end] %s`, filter, documentProjection)

	var docs []domain.Document
	if err := r.client.Query(ctx, query, params, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (r *contentRepository) CountDocuments(ctx context.Context, docType, category string) (int64, error) {
	filter, params := typeFilter(docType, category)

	var total int64
	if err := r.client.Query(ctx, fmt.Sprintf(`count(*[%s])`, filter), params, &total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *contentRepository) GetBySlug(ctx context.Context, docType, slug string) (*domain.Document, error) {
	query := fmt.Sprintf(`*[_type == $type && slug.current == $slug][0] %s`, documentProjection)

	var doc *domain.Document
	if err := r.client.Query(ctx, query, map[string]interface{}{"type": docType, "slug": slug}, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (r *contentRepository) ListCategories(ctx context.Context, docType string) ([]string, error) {
	query := `array::unique(*[_type == $type && defined(categories)].categories[])`

	var raw []string
	if err := r.client.Query(ctx, query, map[string]interface{}{"type": docType}, &raw); err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (r *contentRepository) ListSlugs(ctx context.Context, docType string) ([]domain.SlugEntry, error) {
	query := `*[_type == $type && defined(slug.current)] | order(publishedAt desc) {"slug": slug.current, _updatedAt}`

	var slugs []domain.SlugEntry
	if err := r.client.Query(ctx, query, map[string]interface{}{"type": docType}, &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}

// ImageURLBuilder maps asset references of the form image-<id>-<w>x<h>-<ext>
// to CDN URLs. Unrecognized references produce "".
func ImageURLBuilder(projectID, dataset string) portabletext.ImageURLFunc {
	return func(img *portabletext.ImageRef) string {
		if img == nil {
			return ""
		}
		return ImageURL(projectID, dataset, img.Asset.Ref)
	}
}

func ImageURL(projectID, dataset, ref string) string {
	if !strings.HasPrefix(ref, "image-") {
		return ""
	}
	rest := strings.TrimPrefix(ref, "image-")
	dash := strings.LastIndex(rest, "-")
	if dash <= 0 || dash == len(rest)-1 {
		return ""
	}
	name, ext := rest[:dash], rest[dash+1:]
	// name must still carry the -<w>x<h> suffix
	dims := strings.LastIndex(name, "-")
	if dims <= 0 || !strings.Contains(name[dims+1:], "x") {
		return ""
	}
	return fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/%s.%s", projectID, dataset, name, ext)
}
