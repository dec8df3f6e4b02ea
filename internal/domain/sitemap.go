package domain

import "context"

type SitemapUsecase interface {
	// Sitemap returns the sitemap.xml document for every locale.
	Sitemap(ctx context.Context) (string, error)
	Robots() string
}
