// Document HTTP handlers.
//
// This file exposes REST endpoints for a user's documents:
//   - GET    /documents           (list, paginated, status filter, ETag support)
//   - GET    /documents/{id}      (one document with template metadata)
//   - GET    /documents/{id}/html (rendered HTML page, generated docs only)
//   - GET    /documents/{id}/pdf  (rendered PDF artifact, generated docs only)
//   - DELETE /documents/{id}      (discard, drafts only)
//
// All endpoints require a caller identity (JWT or X-User-ID); documents are
// always scoped to their owner.
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/http/middleware"
	"github.com/moydoc/go-docgen-backend/internal/render"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
)

//
// DTOs
//

// ListDocumentsResponse contains a page of documents and pagination metadata.
type ListDocumentsResponse struct {
	Documents  []domain.Document `json:"documents"`
	Pagination Pagination        `json:"pagination"`
}

// DocumentResponse wraps a single document.
type DocumentResponse struct {
	Document *domain.Document `json:"document"`
}

//
// Handlers
//

// ListDocuments godoc
// @ID          listDocuments
// @Summary     List the caller's documents
// @Description Returns a paginated list of the caller's documents ordered by
// @Description last update, optionally filtered by status. Supports
// @Description conditional requests via ETag / If-None-Match.
// @Tags        Documents
// @Produce     json
//
// @Param       X-User-ID  header string  false "Caller identity when no bearer token is sent"
// @Param       status     query  string  false "Status filter"  Enums(draft, generated)
// @Param       page       query  int     false "Page number"    minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page" minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListDocumentsResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /documents [get]
func (h *Handlers) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	uid, proceed := requireUser(c)
	if !proceed {
		return
	}

	status := c.Query("status")
	switch status {
	case "", domain.DocumentStatusDraft, domain.DocumentStatusGenerated:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status must be draft or generated")
		return
	}

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.docs.(*services.DocumentService); okSvc {
		db = svc.DB
	}
	if db != nil && status == "" {
		count, maxTS, err := repo.DocumentsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"documents:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page, pageSize := clampPagination(c)

	res, err := h.docs.ListPage(ctx, uid, status, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListDocumentsResponse{
		Documents: res.Documents,
		Pagination: Pagination{
			Page:       res.Page,
			PageSize:   res.PageSize,
			Total:      res.Total,
			TotalPages: res.TotalPages,
			HasNext:    res.Page < res.TotalPages,
		},
	})
}

// GetDocument godoc
// @ID          getDocument
// @Summary     Get one document
// @Description Returns a single document owned by the caller, with its
// @Description template and category preloaded.
// @Tags        Documents
// @Produce     json
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.DocumentResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Document not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /documents/{id} [get]
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, proceed := h.loadDocument(c)
	if !proceed {
		return
	}
	ok(c, http.StatusOK, DocumentResponse{Document: doc})
}

// GetDocumentHTML godoc
// @ID          getDocumentHTML
// @Summary     Get the rendered HTML of a document
// @Description Renders the document body with the frozen answers substituted
// @Description into the template placeholders. Only generated documents can
// @Description be rendered.
// @Tags        Documents
// @Produce     html
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     200  {string}  string "Rendered HTML page"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Document not found"
// @Failure     409  {object}  handlers.ErrorResponse "Document not generated yet"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /documents/{id}/html [get]
func (h *Handlers) GetDocumentHTML(c *gin.Context) {
	doc, proceed := h.loadGeneratedDocument(c)
	if !proceed {
		return
	}

	html, err := h.renderDocument(c, doc)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetDocumentPDF godoc
// @ID          getDocumentPDF
// @Summary     Get the PDF artifact of a document
// @Description Converts the rendered HTML into a PDF. The artifact is cached
// @Description on disk after the first conversion and served from the cache
// @Description afterwards. Only generated documents can be rendered.
// @Tags        Documents
// @Produce     application/pdf
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     200  {file}    file "PDF artifact"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Document not found"
// @Failure     409  {object}  handlers.ErrorResponse "Document not generated yet"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Failure     503  {object}  handlers.ErrorResponse "Converter unavailable"
// @Router      /documents/{id}/pdf [get]
func (h *Handlers) GetDocumentPDF(c *gin.Context) {
	ctx := c.Request.Context()
	doc, proceed := h.loadGeneratedDocument(c)
	if !proceed {
		return
	}
	if h.pdf == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeRenderFailed, "pdf conversion is not configured")
		return
	}

	// Serve the cached artifact when one exists.
	if doc.ArtifactPath != "" {
		if pdf, err := os.ReadFile(doc.ArtifactPath); err == nil {
			servePDF(c, doc, pdf)
			return
		}
		// Cache miss (file pruned or moved): fall through and regenerate.
		middleware.LoggerFrom(c).Warn().
			Str("document_id", doc.ID).
			Str("artifact_path", doc.ArtifactPath).
			Msg("pdf artifact missing, regenerating")
	}

	html, err := h.renderDocument(c, doc)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
		return
	}

	pdf, err := h.pdf.ConvertHTML(ctx, html)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
		return
	}
	middleware.CountDocumentRendered()

	// Cache the artifact best effort; serving the bytes never depends on it.
	if h.artifactDir != "" {
		path := filepath.Join(h.artifactDir, doc.ID+".pdf")
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("document_id", doc.ID).Msg("pdf artifact write failed")
		} else if err := h.docs.SetArtifact(ctx, doc.ID, path); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("document_id", doc.ID).Msg("pdf artifact record failed")
		}
	}

	servePDF(c, doc, pdf)
}

// DeleteDocument godoc
// @ID          deleteDocument
// @Summary     Discard a draft document
// @Description Permanently removes a draft. Generated documents are part of
// @Description the user's history and cannot be deleted through this
// @Description endpoint.
// @Tags        Documents
// @Produce     json
//
// @Param       id  path  string  true  "Document ID (UUID)"  format(uuid)
//
// @Success     204  "Draft discarded"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse "Document not found"
// @Failure     409  {object}  handlers.ErrorResponse "Document already generated"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /documents/{id} [delete]
func (h *Handlers) DeleteDocument(c *gin.Context) {
	ctx := c.Request.Context()
	doc, proceed := h.loadDocument(c)
	if !proceed {
		return
	}
	if doc.Status != domain.DocumentStatusDraft {
		fail(c, http.StatusConflict, ErrCodeConflict, "only drafts can be deleted")
		return
	}

	if err := h.docs.DiscardDraft(ctx, doc.ID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

//
// Helpers
//

// loadDocument resolves the caller and fetches the addressed document,
// failing the request itself on any problem. The second return reports
// whether the handler may proceed.
func (h *Handlers) loadDocument(c *gin.Context) (*domain.Document, bool) {
	uid, proceed := requireUser(c)
	if !proceed {
		return nil, false
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "document id must be a UUID")
		return nil, false
	}

	doc, err := h.docs.Get(c.Request.Context(), uid, id)
	if err != nil {
		switch err {
		case services.ErrDocumentNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "document not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return nil, false
	}
	return doc, true
}

// loadGeneratedDocument is loadDocument plus the generated-status gate shared
// by the rendering endpoints.
func (h *Handlers) loadGeneratedDocument(c *gin.Context) (*domain.Document, bool) {
	doc, proceed := h.loadDocument(c)
	if !proceed {
		return nil, false
	}
	if doc.Status != domain.DocumentStatusGenerated {
		fail(c, http.StatusConflict, ErrCodeNotGenerated, "document is not generated yet")
		return nil, false
	}
	return doc, true
}

// renderDocument substitutes the frozen answers into the document's template
// and wraps the result into a printable page.
func (h *Handlers) renderDocument(c *gin.Context, doc *domain.Document) (string, error) {
	if doc.Template.ID == "" {
		return "", fmt.Errorf("document %s has no template loaded", doc.ID)
	}
	answers, err := h.docs.Answers(doc)
	if err != nil {
		return "", fmt.Errorf("decode answers: %w", err)
	}
	return render.Document(&doc.Template, doc.Title, answers), nil
}

// servePDF writes pdf bytes with a filename derived from the document.
func servePDF(c *gin.Context, doc *domain.Document, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, doc.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
