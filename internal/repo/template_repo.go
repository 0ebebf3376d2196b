// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the template
// catalog: categories, filtered/paginated template listings, and single
// template lookups with their ordered field schema.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a template is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// TemplateFilter narrows a template listing. Zero values mean "no filter".
type TemplateFilter struct {
	// CategorySlug restricts results to one category.
	CategorySlug string
	// ApplicantType is "physical" or "legal"; templates marked "both" always match.
	ApplicantType string
	// Search is a case-insensitive substring match over title and description.
	Search string
	// Sort is "popularity" (descending score, default) or "name" (title ascending).
	Sort string
}

// templateQuery composes the shared WHERE clause for listing and counting.
// Only active templates are ever visible.
func templateQuery(db *gorm.DB, f TemplateFilter) *gorm.DB {
	q := db.Model(&domain.Template{}).Where("templates.is_active = ?", true)

	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = templates.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.ApplicantType != "" && f.ApplicantType != "both" {
		q = q.Where("templates.applicant_type IN (?, 'both')", f.ApplicantType)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("templates.title LIKE ? OR templates.description LIKE ?", like, like)
	}
	return q
}

// ListTemplatesPage returns one page of active templates matching the filter,
// with their categories preloaded. Ordering follows the filter's Sort key:
// "name" sorts by title ascending, anything else by popularity descending.
//
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListTemplatesPage(ctx context.Context, db *gorm.DB, f TemplateFilter, offset, limit int) ([]domain.Template, error) {
	q := templateQuery(db.WithContext(ctx), f).Preload("Category")
	if f.Sort == "name" {
		q = q.Order("templates.title asc")
	} else {
		q = q.Order("templates.popularity_score desc")
	}

	var out []domain.Template
	err := q.Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// CountTemplates returns the number of active templates matching the filter.
// Use together with ListTemplatesPage to build pagination metadata.
func CountTemplates(ctx context.Context, db *gorm.DB, f TemplateFilter) (int64, error) {
	var total int64
	err := templateQuery(db.WithContext(ctx), f).Count(&total).Error
	return total, err
}

// GetTemplate fetches a single active template by ID together with its
// category and its field schema ordered by (step_number, field_order).
// It returns ErrNotFound when the template does not exist or is inactive.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.Template, error) {
	var t domain.Template
	err := db.WithContext(ctx).
		Preload("Category").
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number asc, field_order asc")
		}).
		Where("id = ? AND is_active = ?", id, true).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CategoryWithCount pairs a category with the number of active templates it
// contains. Categories without active templates are omitted from listings.
type CategoryWithCount struct {
	domain.Category
	TemplateCount int64 `json:"template_count"`
}

// ListCategories returns all categories that contain at least one active
// template, ordered by their configured sort order, each annotated with its
// active-template count.
func ListCategories(ctx context.Context, db *gorm.DB) ([]CategoryWithCount, error) {
	var out []CategoryWithCount
	err := db.WithContext(ctx).
		Model(&domain.Category{}).
		Select("categories.*, COUNT(templates.id) AS template_count").
		Joins("JOIN templates ON templates.category_id = categories.id AND templates.is_active = ? AND templates.deleted_at IS NULL", true).
		Group("categories.id").
		Order("categories.sort_order asc").
		Find(&out).Error
	return out, err
}

// GetCategoryBySlug fetches one category by its slug, or ErrNotFound.
func GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// BumpTemplatePopularity increments a template's popularity score. Used as a
// sort hint only; failures are reported but not fatal to any flow.
func BumpTemplatePopularity(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Template{}).
		Where("id = ?", id).
		UpdateColumn("popularity_score", gorm.Expr("popularity_score + 1")).Error
}
