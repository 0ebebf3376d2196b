package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

func TestTemplateService_ListPagination(t *testing.T) {
	db := newServiceDB(t)
	seedVacationTemplate(t, db)
	seedSelectTemplate(t, db)
	svc := NewTemplateService(db, 1)
	ctx := context.Background()

	page, err := svc.List(ctx, ListParams{Page: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 2 || len(page.Templates) != 1 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Templates))
	}

	// Page numbers below 1 clamp to the first page.
	page, err = svc.List(ctx, ListParams{Page: -3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("page = %d; want 1", page.Page)
	}

	// Past the last page the listing is empty but metadata stays intact.
	page, err = svc.List(ctx, ListParams{Page: 9})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Templates) != 0 || page.Total != 2 {
		t.Fatalf("overshoot page: len=%d total=%d", len(page.Templates), page.Total)
	}
}

func TestTemplateService_ListFilters(t *testing.T) {
	db := newServiceDB(t)
	seedVacationTemplate(t, db) // category "employers", applicant "physical"
	seedSelectTemplate(t, db)   // category "other", applicant "both"
	svc := NewTemplateService(db, 12)
	ctx := context.Background()

	page, err := svc.List(ctx, ListParams{CategorySlug: "employers"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Templates[0].Title != "Заявление на отпуск" {
		t.Fatalf("category filter broken: %+v", page)
	}

	// "both" templates serve either applicant type.
	page, err = svc.List(ctx, ListParams{ApplicantType: "legal"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Templates[0].Title != "Акт осмотра" {
		t.Fatalf("applicant filter broken: %+v", page)
	}

	page, err = svc.List(ctx, ListParams{Search: "отпуск"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("search total = %d; want 1", page.Total)
	}

	// Unknown slugs match nothing rather than erroring.
	page, err = svc.List(ctx, ListParams{CategorySlug: "nonexistent"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("unknown slug total = %d; want 0", page.Total)
	}
}

func TestTemplateService_ListSortFallback(t *testing.T) {
	db := newServiceDB(t)
	vac := seedVacationTemplate(t, db)
	seedSelectTemplate(t, db)
	if err := db.Model(&domain.Template{}).Where("id = ?", vac.ID).Update("popularity_score", 10).Error; err != nil {
		t.Fatalf("bump popularity: %v", err)
	}
	svc := NewTemplateService(db, 12)
	ctx := context.Background()

	// Garbage sort keys fall back to popularity descending.
	page, err := svc.List(ctx, ListParams{Sort: "bogus"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Templates[0].ID != vac.ID {
		t.Fatalf("popularity sort broken: first = %q", page.Templates[0].Title)
	}

	page, err = svc.List(ctx, ListParams{Sort: "name"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Templates[0].Title != "Акт осмотра" {
		t.Fatalf("name sort broken: first = %q", page.Templates[0].Title)
	}
}

func TestTemplateService_Get(t *testing.T) {
	db := newServiceDB(t)
	tpl := seedVacationTemplate(t, db)
	svc := NewTemplateService(db, 12)
	ctx := context.Background()

	got, err := svc.Get(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Fields) != 8 {
		t.Fatalf("fields = %d; want 8", len(got.Fields))
	}

	if _, err := svc.Get(ctx, uuid.NewString()); err != ErrTemplateNotFound {
		t.Fatalf("missing template = %v; want ErrTemplateNotFound", err)
	}
}

func TestTemplateService_Categories(t *testing.T) {
	db := newServiceDB(t)
	seedVacationTemplate(t, db)
	seedSelectTemplate(t, db)
	svc := NewTemplateService(db, 12)

	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories = %d; want 2", len(cats))
	}
	for _, c := range cats {
		if c.TemplateCount != 1 {
			t.Fatalf("category %q count = %d; want 1", c.Slug, c.TemplateCount)
		}
	}
}
