package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

func TestDocumentService_FinalizeTwiceConflicts(t *testing.T) {
	db := newServiceDB(t)
	tpl := seedVacationTemplate(t, db)
	svc := NewDocumentService(db)
	ctx := context.Background()

	doc, err := svc.CreateDraft(ctx, "user-1", tpl)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	answers := map[string]string{"fullName": "Иванов"}
	if err := svc.Finalize(ctx, doc.ID, answers); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// Repeated finalize is a conflict, never a silent overwrite.
	if err := svc.Finalize(ctx, doc.ID, map[string]string{"fullName": "Другой"}); err != ErrDocumentFinalized {
		t.Fatalf("second Finalize = %v; want ErrDocumentFinalized", err)
	}

	got, err := svc.Get(ctx, "user-1", doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	frozen, err := svc.Answers(got)
	if err != nil {
		t.Fatalf("Answers: %v", err)
	}
	if frozen["fullName"] != "Иванов" {
		t.Fatalf("answers mutated: %+v", frozen)
	}
}

func TestDocumentService_FinalizeMissing(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDocumentService(db)

	err := svc.Finalize(context.Background(), uuid.NewString(), map[string]string{})
	if err != ErrDocumentNotFound {
		t.Fatalf("Finalize on missing doc = %v; want ErrDocumentNotFound", err)
	}
}

func TestDocumentService_DiscardDraftMissingIsNil(t *testing.T) {
	db := newServiceDB(t)
	svc := NewDocumentService(db)

	// A vanished draft is logged, not escalated.
	if err := svc.DiscardDraft(context.Background(), uuid.NewString()); err != nil {
		t.Fatalf("DiscardDraft on missing doc = %v; want nil", err)
	}
}

func TestDocumentService_ListPage(t *testing.T) {
	db := newServiceDB(t)
	tpl := seedVacationTemplate(t, db)
	svc := NewDocumentService(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateDraft(ctx, "user-1", tpl); err != nil {
			t.Fatalf("CreateDraft: %v", err)
		}
	}
	svc.CreateDraft(ctx, "user-2", tpl)

	page, err := svc.ListPage(ctx, "user-1", "", 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Documents) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Documents))
	}

	// Page/pageSize defaults kick in for bogus values.
	page, err = svc.ListPage(ctx, "user-1", "", 0, -5)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.Page != 1 || page.PageSize != 20 {
		t.Fatalf("defaults not applied: %+v", page)
	}

	// Status filter.
	page, err = svc.ListPage(ctx, "user-1", domain.DocumentStatusGenerated, 1, 10)
	if err != nil {
		t.Fatalf("ListPage(generated): %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("generated total = %d; want 0", page.Total)
	}
}

func TestDocumentService_GetScopedToOwner(t *testing.T) {
	db := newServiceDB(t)
	tpl := seedVacationTemplate(t, db)
	svc := NewDocumentService(db)
	ctx := context.Background()

	doc, err := svc.CreateDraft(ctx, "user-1", tpl)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", doc.ID); err != ErrDocumentNotFound {
		t.Fatalf("foreign Get = %v; want ErrDocumentNotFound", err)
	}
}

func TestDocumentService_SetArtifact(t *testing.T) {
	db := newServiceDB(t)
	tpl := seedVacationTemplate(t, db)
	svc := NewDocumentService(db)
	ctx := context.Background()

	doc, _ := svc.CreateDraft(ctx, "user-1", tpl)
	if err := svc.SetArtifact(ctx, doc.ID, "/tmp/a.pdf"); err != nil {
		t.Fatalf("SetArtifact: %v", err)
	}
	got, _ := svc.Get(ctx, "user-1", doc.ID)
	if got.ArtifactPath != "/tmp/a.pdf" {
		t.Fatalf("artifact path = %q", got.ArtifactPath)
	}
}
