// Handler wiring.
//
// This file defines the service contracts consumed by the HTTP layer and the
// Handlers aggregate that binds them. Handlers are transport-thin: they
// validate and normalize inputs, delegate to application services, and
// translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
	"github.com/moydoc/go-docgen-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CatalogService defines template catalog reads consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CatalogService interface {
	// List returns one page of active templates matching the params.
	List(ctx context.Context, p services.ListParams) (*services.TemplatePage, error)
	// Get returns one active template with its category and fields.
	Get(ctx context.Context, id string) (*domain.Template, error)
	// Categories returns all categories with per-category template counts.
	Categories(ctx context.Context) ([]repo.CategoryWithCount, error)
}

// DocumentService defines document lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DocumentService interface {
	// Get returns one document owned by userID.
	Get(ctx context.Context, userID, documentID string) (*domain.Document, error)
	// ListPage returns a page of the user's documents, optionally filtered
	// by status.
	ListPage(ctx context.Context, userID, status string, page, pageSize int) (*services.DocumentPage, error)
	// Answers deserializes the stored answer map of a document.
	Answers(d *domain.Document) (map[string]string, error)
	// DiscardDraft hard-deletes a draft document.
	DiscardDraft(ctx context.Context, documentID string) error
	// SetArtifact records the rendered artifact location of a document.
	SetArtifact(ctx context.Context, documentID, path string) error
}

// AuthService defines account operations consumed by HTTP handlers.
type AuthService interface {
	// Register creates an account keyed by email or phone.
	Register(ctx context.Context, identifier, name, password string) (*domain.User, error)
	// Login verifies credentials and issues a signed token.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
}

// VerificationService defines one-time code operations consumed by HTTP
// handlers.
type VerificationService interface {
	// Send issues and delivers a fresh code to the identifier.
	Send(ctx context.Context, identifier string) error
	// Verify consumes a previously sent code.
	Verify(ctx context.Context, identifier, code string) error
}

// PDFConverter renders a full HTML page into PDF bytes.
type PDFConverter interface {
	ConvertHTML(ctx context.Context, html string) ([]byte, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the catalog, documents, accounts, and
// verification codes. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	catalog CatalogService
	docs    DocumentService
	auth    AuthService
	verify  VerificationService

	// pdf may be nil when no converter is configured; the PDF endpoint then
	// reports the feature as unavailable.
	pdf PDFConverter
	// artifactDir is where rendered PDFs are cached; empty disables caching.
	artifactDir string
}

// New constructs a Handlers instance bound to the given services.
func New(catalog CatalogService, docs DocumentService, auth AuthService, verify VerificationService, pdf PDFConverter, artifactDir string) *Handlers {
	return &Handlers{
		catalog:     catalog,
		docs:        docs,
		auth:        auth,
		verify:      verify,
		pdf:         pdf,
		artifactDir: artifactDir,
	}
}

// userID extracts the authenticated user id from Gin context (set by the auth
// middleware). If absent, it falls back to the "X-User-ID" header (tests use
// it). It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

// requireUser resolves the caller identity or fails the request with 401.
// The second return reports whether the handler may proceed.
func requireUser(c *gin.Context) (string, bool) {
	uid := userID(c)
	if uid == "" {
		fail(c, 401, ErrCodeUnauthorized, "authentication required")
		return "", false
	}
	return uid, true
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}
