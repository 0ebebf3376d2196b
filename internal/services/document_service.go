// Package services – DocumentService
//
// This file implements the DocumentService, the narrow interface through
// which all document mutations flow: draft creation at session start,
// finalize on completion, and discard on cancellation. Concentrating the
// three mutations here keeps ad hoc concurrent writes out of the rest of the
// codebase.
package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
)

// DocumentService manages the Document lifecycle (create draft → finalize |
// discard) and read access for listings and rendering.
type DocumentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{DB: db}
}

// CreateDraft inserts a draft document for userID from the given template,
// copying its title and starting with an empty answer map.
func (s *DocumentService) CreateDraft(ctx context.Context, userID string, tpl *domain.Template) (*domain.Document, error) {
	return repo.CreateDraft(ctx, s.DB, userID, tpl.ID, tpl.Title)
}

// Finalize freezes the answer map onto the document and flips its status to
// generated. A second call on the same document returns ErrDocumentFinalized;
// frozen answers are never silently overwritten.
func (s *DocumentService) Finalize(ctx context.Context, documentID string, answers map[string]string) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	if err := repo.FinalizeDocument(ctx, s.DB, documentID, string(payload)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Distinguish "gone" from "already generated" for the caller.
			var d domain.Document
			if lookupErr := s.DB.WithContext(ctx).Where("id = ?", documentID).First(&d).Error; lookupErr == nil {
				return ErrDocumentFinalized
			}
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

// DiscardDraft deletes a draft document. Cancellation can race completion, so
// a missing row is logged and swallowed; any other failure is returned.
func (s *DocumentService) DiscardDraft(ctx context.Context, documentID string) error {
	err := repo.DeleteDocument(ctx, s.DB, documentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("document_id", documentID).Msg("draft already deleted")
		return nil
	}
	return err
}

// Get fetches a document owned by userID with its template preloaded.
func (s *DocumentService) Get(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	d, err := repo.GetDocument(ctx, s.DB, documentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// DocumentPage is one page of a user's documents plus pagination metadata.
type DocumentPage struct {
	Documents  []domain.Document `json:"documents"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// ListPage returns a page of the user's documents ordered by last update
// descending, optionally filtered by status ("draft" | "generated" | "").
// It applies defaults for invalid page/pageSize.
func (s *DocumentService) ListPage(ctx context.Context, userID, status string, page, pageSize int) (*DocumentPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountDocuments(ctx, s.DB, userID, status)
	if err != nil {
		return nil, err
	}

	out := &DocumentPage{
		Documents:  []domain.Document{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	if total == 0 {
		return out, nil
	}

	items, err := repo.ListDocumentsPage(ctx, s.DB, userID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	out.Documents = items
	return out, nil
}

// Answers deserializes the stored answer map of a document.
func (s *DocumentService) Answers(d *domain.Document) (map[string]string, error) {
	answers := map[string]string{}
	if d.AnswersJSON == "" {
		return answers, nil
	}
	if err := json.Unmarshal([]byte(d.AnswersJSON), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// SetArtifact records the rendered PDF path on a document.
func (s *DocumentService) SetArtifact(ctx context.Context, documentID, path string) error {
	err := repo.SetDocumentArtifact(ctx, s.DB, documentID, path)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDocumentNotFound
	}
	return err
}
