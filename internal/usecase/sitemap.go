package usecase

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"time"

	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"
)

// StaticRoutes are the marketing pages served by the frontend.
var StaticRoutes = []string{"/", "/about", "/process", "/work", "/contact", "/blog", "/news"}

type sitemapEntry struct {
	Location   string
	LastMod    *time.Time
	ChangeFreq string
	Priority   float64
}

type sitemapUsecase struct {
	repo    domain.ContentRepository
	baseURL string
	locales []string
}

func NewSitemapUsecase(repo domain.ContentRepository, baseURL string, locales []string) domain.SitemapUsecase {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "https://kondax.com"
	}
	if len(locales) == 0 {
		locales = []string{"ja"}
	}
	return &sitemapUsecase{repo: repo, baseURL: base, locales: locales}
}

func (u *sitemapUsecase) Sitemap(ctx context.Context) (string, error) {
	entries := make([]sitemapEntry, 0, len(StaticRoutes)*len(u.locales))
	for _, locale := range u.locales {
		for _, route := range StaticRoutes {
			entry := sitemapEntry{
				Location:   u.localized(locale, route),
				ChangeFreq: "monthly",
				Priority:   0.7,
			}
			if route == "/" {
				entry.ChangeFreq = "daily"
				entry.Priority = 1.0
			}
			entries = append(entries, entry)
		}
	}

	for _, docType := range []string{domain.DocTypeBlog, domain.DocTypeNews} {
		slugs, err := u.repo.ListSlugs(ctx, docType)
		if err != nil {
			return "", storeError("list "+docType+" slugs", err)
		}
		for _, s := range slugs {
			if strings.TrimSpace(s.Slug) == "" {
				continue
			}
			for _, locale := range u.locales {
				entries = append(entries, sitemapEntry{
					Location:   u.localized(locale, fmt.Sprintf("/%s/%s", docType, url.PathEscape(s.Slug))),
					LastMod:    s.UpdatedAt,
					ChangeFreq: "weekly",
					Priority:   0.8,
				})
			}
		}
	}

	if len(entries) == 0 {
		return "", apperror.Internal(fmt.Errorf("sitemap has no entries"))
	}
	return renderSitemap(entries), nil
}

func (u *sitemapUsecase) Robots() string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	sb.WriteString("Allow: /\n")
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Host: %s\n", u.baseURL))
	sb.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", u.baseURL))
	return sb.String()
}

// localized builds an absolute URL with the locale prefix.
func (u *sitemapUsecase) localized(locale, route string) string {
	if route == "/" {
		return fmt.Sprintf("%s/%s", u.baseURL, locale)
	}
	return fmt.Sprintf("%s/%s%s", u.baseURL, locale, route)
}

func renderSitemap(entries []sitemapEntry) string {
	seen := make(map[string]struct{}, len(entries))
	unique := entries[:0:0]
	for _, e := range entries {
		if _, ok := seen[e.Location]; ok {
			continue
		}
		seen[e.Location] = struct{}{}
		unique = append(unique, e)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Location < unique[j].Location
	})

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, e := range unique {
		sb.WriteString("  <url>\n")
		sb.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", html.EscapeString(e.Location)))
		if e.LastMod != nil && !e.LastMod.IsZero() {
			sb.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", e.LastMod.UTC().Format(time.RFC3339)))
		}
		sb.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", e.ChangeFreq))
		sb.WriteString(fmt.Sprintf("    <priority>%.1f</priority>\n", e.Priority))
		sb.WriteString("  </url>\n")
	}
	sb.WriteString("</urlset>\n")
	return sb.String()
}
