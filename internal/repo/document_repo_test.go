package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// documentDB migrates everything the document queries touch and returns a
// ready template to hang drafts on.
func documentDB(t *testing.T) (*gorm.DB, *domain.Template) {
	t.Helper()
	db, cat := catalogDB(t)
	if err := db.AutoMigrate(&domain.Document{}); err != nil {
		t.Fatalf("automigrate documents: %v", err)
	}
	tpl := addTemplate(t, db, cat.ID, "Заявление на отпуск", "physical", 0, true)
	return db, tpl
}

func TestCreateDraft_Defaults(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	doc, err := CreateDraft(ctx, db, "u1", tpl.ID, tpl.Title)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if doc.ID == "" || doc.UserID != "u1" || doc.TemplateID != tpl.ID {
		t.Fatalf("unexpected draft fields: %+v", doc)
	}
	if doc.Status != domain.DocumentStatusDraft {
		t.Fatalf("status = %q; want draft", doc.Status)
	}
	if doc.AnswersJSON != "{}" {
		t.Fatalf("answers = %q; want empty object", doc.AnswersJSON)
	}
}

func TestGetDocument_ScopedToOwnerAndPreloads(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	doc, err := CreateDraft(ctx, db, "u1", tpl.ID, tpl.Title)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	got, err := GetDocument(ctx, db, doc.ID, "u1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Template.ID != tpl.ID || got.Template.Category.Slug != "employers" {
		t.Fatalf("template/category not preloaded: %+v", got.Template)
	}

	// Another user never sees it.
	if _, err := GetDocument(ctx, db, doc.ID, "intruder"); err != ErrNotFound {
		t.Fatalf("foreign document should be ErrNotFound, got %v", err)
	}
}

func TestFinalizeDocument_OnceOnly(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	doc, err := CreateDraft(ctx, db, "u1", tpl.ID, tpl.Title)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	answers := `{"fullName":"Иванов"}`
	if err := FinalizeDocument(ctx, db, doc.ID, answers); err != nil {
		t.Fatalf("FinalizeDocument: %v", err)
	}

	var got domain.Document
	if err := db.First(&got, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("load document: %v", err)
	}
	if got.Status != domain.DocumentStatusGenerated || got.AnswersJSON != answers {
		t.Fatalf("unexpected finalized row: %+v", got)
	}

	// A second finalize must not silently overwrite the frozen answers.
	err = FinalizeDocument(ctx, db, doc.ID, `{"fullName":"Другой"}`)
	if err != ErrNotFound {
		t.Fatalf("second finalize should be ErrNotFound, got %v", err)
	}
	if err := db.First(&got, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if got.AnswersJSON != answers {
		t.Fatalf("answers changed on repeated finalize: %q", got.AnswersJSON)
	}
}

func TestDeleteDocument_HardDelete(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	doc, err := CreateDraft(ctx, db, "u1", tpl.ID, tpl.Title)
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	if err := DeleteDocument(ctx, db, doc.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	// Gone even for unscoped queries.
	var count int64
	if err := db.Unscoped().Model(&domain.Document{}).Where("id = ?", doc.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("document row should be hard-deleted")
	}

	if err := DeleteDocument(ctx, db, doc.ID); err != ErrNotFound {
		t.Fatalf("deleting a missing document should be ErrNotFound, got %v", err)
	}
}

func TestListDocumentsPage_StatusFilterAndOrder(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	d1, _ := CreateDraft(ctx, db, "u1", tpl.ID, "Первый")
	d2, _ := CreateDraft(ctx, db, "u1", tpl.ID, "Второй")
	CreateDraft(ctx, db, "u2", tpl.ID, "Чужой")

	if err := FinalizeDocument(ctx, db, d1.ID, "{}"); err != nil {
		t.Fatalf("FinalizeDocument: %v", err)
	}

	total, err := CountDocuments(ctx, db, "u1", "")
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d; want 2", total)
	}

	drafts, err := ListDocumentsPage(ctx, db, "u1", domain.DocumentStatusDraft, 0, 10)
	if err != nil {
		t.Fatalf("ListDocumentsPage(draft): %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != d2.ID {
		t.Fatalf("unexpected draft page: %+v", drafts)
	}

	all, err := ListDocumentsPage(ctx, db, "u1", "", 0, 10)
	if err != nil {
		t.Fatalf("ListDocumentsPage: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("page size = %d; want 2", len(all))
	}
	// Finalizing d1 touched it last, so it lists first.
	if all[0].ID != d1.ID {
		t.Fatalf("expected most recently updated first, got %s", all[0].ID)
	}
}

func TestSetDocumentArtifact(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	doc, _ := CreateDraft(ctx, db, "u1", tpl.ID, tpl.Title)
	if err := SetDocumentArtifact(ctx, db, doc.ID, "/data/artifacts/x.pdf"); err != nil {
		t.Fatalf("SetDocumentArtifact: %v", err)
	}

	var got domain.Document
	if err := db.First(&got, "id = ?", doc.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ArtifactPath != "/data/artifacts/x.pdf" {
		t.Fatalf("artifact path = %q", got.ArtifactPath)
	}

	if err := SetDocumentArtifact(ctx, db, uuid.NewString(), "x"); err != ErrNotFound {
		t.Fatalf("missing document should be ErrNotFound, got %v", err)
	}
}

func TestDocumentsStats(t *testing.T) {
	db, tpl := documentDB(t)
	ctx := context.Background()

	count, maxTS, err := DocumentsStats(ctx, db, "u1")
	if err != nil {
		t.Fatalf("DocumentsStats: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("empty stats = %d/%v; want 0/nil", count, maxTS)
	}

	before := time.Now().UTC().Add(-time.Minute)
	CreateDraft(ctx, db, "u1", tpl.ID, "А")
	CreateDraft(ctx, db, "u1", tpl.ID, "Б")

	count, maxTS, err = DocumentsStats(ctx, db, "u1")
	if err != nil {
		t.Fatalf("DocumentsStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d; want 2", count)
	}
	if maxTS == nil || maxTS.Before(before) {
		t.Fatalf("maxTS = %v; want a recent timestamp", maxTS)
	}
}
