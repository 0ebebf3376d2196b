package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter mounts the handlers on a bare engine, without the middleware
// chain; middleware has its own tests.
func newTestRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.GET("/categories", h.ListCategories)
	r.GET("/templates", h.ListTemplates)
	r.GET("/templates/:id", h.GetTemplate)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/verification/send", h.SendCode)
	r.POST("/verification/verify", h.VerifyCode)
	r.GET("/documents", h.ListDocuments)
	r.GET("/documents/:id", h.GetDocument)
	r.GET("/documents/:id/html", h.GetDocumentHTML)
	r.GET("/documents/:id/pdf", h.GetDocumentPDF)
	r.DELETE("/documents/:id", h.DeleteDocument)
	return r
}

// perform runs one request through the router and returns the recorder.
func perform(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeError unmarshals the standard error envelope.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, w.Body.String())
	}
	return resp
}

//
// Service stubs
//

type stubCatalog struct {
	page      *services.TemplatePage
	tpl       *domain.Template
	cats      []repo.CategoryWithCount
	err       error
	gotParams services.ListParams
}

func (s *stubCatalog) List(_ context.Context, p services.ListParams) (*services.TemplatePage, error) {
	s.gotParams = p
	return s.page, s.err
}

func (s *stubCatalog) Get(_ context.Context, id string) (*domain.Template, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tpl, nil
}

func (s *stubCatalog) Categories(context.Context) ([]repo.CategoryWithCount, error) {
	return s.cats, s.err
}

type stubDocs struct {
	doc       *domain.Document
	page      *services.DocumentPage
	answers   map[string]string
	getErr    error
	listErr   error
	discarded []string
	artifacts map[string]string
}

func (s *stubDocs) Get(_ context.Context, userID, documentID string) (*domain.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.doc, nil
}

func (s *stubDocs) ListPage(_ context.Context, userID, status string, page, pageSize int) (*services.DocumentPage, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.page, nil
}

func (s *stubDocs) Answers(*domain.Document) (map[string]string, error) {
	return s.answers, nil
}

func (s *stubDocs) DiscardDraft(_ context.Context, documentID string) error {
	s.discarded = append(s.discarded, documentID)
	return nil
}

func (s *stubDocs) SetArtifact(_ context.Context, documentID, path string) error {
	if s.artifacts == nil {
		s.artifacts = map[string]string{}
	}
	s.artifacts[documentID] = path
	return nil
}

type stubAuth struct {
	user  *domain.User
	token string
	err   error
}

func (s *stubAuth) Register(_ context.Context, identifier, name, password string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubAuth) Login(_ context.Context, identifier, password string) (string, *domain.User, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.user, nil
}

type stubVerify struct {
	sendErr   error
	verifyErr error
	sentTo    []string
}

func (s *stubVerify) Send(_ context.Context, identifier string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sentTo = append(s.sentTo, identifier)
	return nil
}

func (s *stubVerify) Verify(_ context.Context, identifier, code string) error {
	return s.verifyErr
}

type stubPDF struct {
	out []byte
	err error
}

func (s *stubPDF) ConvertHTML(_ context.Context, html string) ([]byte, error) {
	return s.out, s.err
}
