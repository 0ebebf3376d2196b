// Package services – TemplateService
//
// This file implements the TemplateService, the read-only query surface over
// the template catalog. It normalizes listing parameters (filters, search,
// sort, pagination) and coordinates repository calls; the catalog itself is
// maintained by an administrative process and is never mutated here beyond
// the popularity sort hint.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
)

// TemplateService provides catalog queries: category listings and filtered,
// paginated template listings with a fixed page size.
type TemplateService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// PageSize is the fixed listing page size.
	PageSize int
}

// NewTemplateService constructs a TemplateService with the given page size
// (values < 1 fall back to 12, the web grid size).
func NewTemplateService(db *gorm.DB, pageSize int) *TemplateService {
	if pageSize < 1 {
		pageSize = 12
	}
	return &TemplateService{DB: db, PageSize: pageSize}
}

// ListParams are the raw listing inputs as received from a transport.
type ListParams struct {
	CategorySlug  string // empty means all categories
	ApplicantType string // "physical" | "legal" | "both" | ""
	Search        string // substring over title/description
	Sort          string // "popularity" (default) | "name"
	Page          int    // 1-based; values < 1 clamp to 1
}

// TemplatePage is one page of catalog results plus pagination metadata.
type TemplatePage struct {
	Templates  []domain.Template `json:"templates"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// List returns one page of active templates matching the params. Unknown sort
// keys fall back to popularity; the page size is fixed by configuration.
func (s *TemplateService) List(ctx context.Context, p ListParams) (*TemplatePage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	sort := strings.ToLower(strings.TrimSpace(p.Sort))
	if sort != "name" {
		sort = "popularity"
	}
	f := repo.TemplateFilter{
		CategorySlug:  strings.TrimSpace(p.CategorySlug),
		ApplicantType: strings.ToLower(strings.TrimSpace(p.ApplicantType)),
		Search:        strings.TrimSpace(p.Search),
		Sort:          sort,
	}

	total, err := repo.CountTemplates(ctx, s.DB, f)
	if err != nil {
		return nil, err
	}

	page := &TemplatePage{
		Templates:  []domain.Template{},
		Page:       p.Page,
		Limit:      s.PageSize,
		Total:      total,
		TotalPages: int((total + int64(s.PageSize) - 1) / int64(s.PageSize)),
	}
	if total == 0 {
		return page, nil
	}

	items, err := repo.ListTemplatesPage(ctx, s.DB, f, (p.Page-1)*s.PageSize, s.PageSize)
	if err != nil {
		return nil, err
	}
	page.Templates = items
	return page, nil
}

// Get fetches one active template with its ordered field schema.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	t, err := repo.GetTemplate(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// Categories returns browsable categories annotated with their active
// template counts, in configured order.
func (s *TemplateService) Categories(ctx context.Context) ([]repo.CategoryWithCount, error) {
	return repo.ListCategories(ctx, s.DB)
}
