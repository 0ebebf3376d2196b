// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Document
// model: draft creation, finalization, deletion, and paginated listings.
//
// Error semantics:
//   - Missing documents surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - FinalizeDocument refuses to finalize twice: a second call on an
//     already-generated document returns ErrNotFound because the UPDATE is
//     scoped to status = 'draft' and affects zero rows. The service layer
//     translates that into a conflict for the caller.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
)

// CreateDraft inserts a new draft Document owned by userID for the given
// template, copying the template title and starting with an empty answer map.
// On success, it returns the persisted Document. On failure, a DB error.
func CreateDraft(ctx context.Context, db *gorm.DB, userID, templateID, title string) (*domain.Document, error) {
	d := &domain.Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		TemplateID:  templateID,
		Title:       title,
		Status:      domain.DocumentStatusDraft,
		AnswersJSON: "{}",
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// GetDocument fetches a document by ID and owner, with its template, the
// template's category, and the ordered field schema preloaded. The template
// is loaded through the association, so rendering keeps working even after a
// template is retired from the catalog. Returns ErrNotFound when missing.
func GetDocument(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Document, error) {
	var d domain.Document
	err := db.WithContext(ctx).
		Preload("Template").
		Preload("Template.Category").
		Preload("Template.Fields", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("step_number asc, field_order asc")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FinalizeDocument freezes the answers onto a draft and flips its status to
// generated. The update is restricted to rows still in draft status, so a
// repeated call (or a call against a missing row) affects nothing and
// returns ErrNotFound rather than silently overwriting frozen answers.
func FinalizeDocument(ctx context.Context, db *gorm.DB, id, answersJSON string) error {
	res := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ? AND status = ?", id, domain.DocumentStatusDraft).
		Updates(map[string]any{
			"answers_json": answersJSON,
			"status":       domain.DocumentStatusGenerated,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteDocument removes a document row permanently. Returns ErrNotFound when
// the row does not exist; cancellation can race completion, so callers that
// only need best-effort cleanup treat that error as benign.
func DeleteDocument(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Unscoped().Delete(&domain.Document{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetDocumentArtifact records the rendered-artifact path on a document.
func SetDocumentArtifact(ctx context.Context, db *gorm.DB, id, path string) error {
	res := db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ?", id).
		Update("artifact_path", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountDocuments returns the number of documents owned by userID, optionally
// restricted to one status ("" counts all).
func CountDocuments(ctx context.Context, db *gorm.DB, userID, status string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Document{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListDocumentsPage returns a page of documents for userID ordered by last
// update descending, optionally restricted to one status. Templates and their
// categories are preloaded for listing summaries.
func ListDocumentsPage(ctx context.Context, db *gorm.DB, userID, status string, offset, limit int) ([]domain.Document, error) {
	q := db.WithContext(ctx).
		Preload("Template").
		Preload("Template.Category").
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Document
	err := q.Order("updated_at desc").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}

// DocumentsStats returns aggregate metadata for a user's documents: the total
// number of rows and the maximum UpdatedAt timestamp among them. It backs
// conditional responses (ETag generation) in the HTTP layer. When the user
// has no documents, the returned count is 0 and maxUpdatedAt is nil.
func DocumentsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Document{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
