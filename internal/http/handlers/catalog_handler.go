// Catalog HTTP handlers.
//
// This file exposes REST endpoints for the template catalog:
//   - GET /categories       (all categories with template counts)
//   - GET /templates        (filtered, paginated catalog listing)
//   - GET /templates/{id}   (one template with its field schema)
//
// The catalog is public: no authentication is required to browse it.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moydoc/go-docgen-backend/internal/domain"
	"github.com/moydoc/go-docgen-backend/internal/repo"
	"github.com/moydoc/go-docgen-backend/internal/services"
	"github.com/moydoc/go-docgen-backend/internal/utils"
)

//
// DTOs
//

// ListCategoriesResponse wraps the category listing.
type ListCategoriesResponse struct {
	Categories []repo.CategoryWithCount `json:"categories"`
}

// ListTemplatesResponse wraps a page of catalog templates and pagination
// information. The page size is fixed server-side.
type ListTemplatesResponse struct {
	Templates  []domain.Template `json:"templates"`
	Pagination Pagination        `json:"pagination"`
}

// TemplateResponse wraps a single template, fields included.
type TemplateResponse struct {
	Template *domain.Template `json:"template"`
}

//
// Handlers
//

// ListCategories godoc
// @ID          listCategories
// @Summary     List document categories
// @Description Returns all categories ordered by display position, each with
// @Description the number of active templates it contains.
// @Tags        Catalog
// @Produce     json
// @Success     200  {object}  handlers.ListCategoriesResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListCategoriesResponse{Categories: cats})
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List document templates
// @Description Returns a page of active templates. Supports filtering by
// @Description category slug, applicant type, and a title/description search,
// @Description plus sorting by popularity (default) or name.
// @Tags        Catalog
// @Produce     json
//
// @Param       category  query  string  false "Category slug"             example(courts)
// @Param       type      query  string  false "Applicant type"            Enums(physical, legal, both)
// @Param       search    query  string  false "Substring search"          example(отпуск)
// @Param       sort      query  string  false "Sort key"                  Enums(popularity, name)
// @Param       page      query  int     false "Page number"               minimum(1) default(1)
//
// @Success     200  {object}  handlers.ListTemplatesResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	params := services.ListParams{
		CategorySlug:  c.Query("category"),
		ApplicantType: c.Query("type"),
		Search:        c.Query("search"),
		Sort:          c.Query("sort"),
		Page:          utils.AtoiDefault(c.Query("page"), 1),
	}

	page, err := h.catalog.List(c.Request.Context(), params)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListTemplatesResponse{
		Templates: page.Templates,
		Pagination: Pagination{
			Page:       page.Page,
			PageSize:   page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			HasNext:    page.Page < page.TotalPages,
		},
	})
}

// GetTemplate godoc
// @ID          getTemplate
// @Summary     Get one template
// @Description Returns a single active template with its category and its
// @Description ordered field schema (step grouping, validation rules,
// @Description select options).
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Template ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.TemplateResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Template not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /templates/{id} [get]
func (h *Handlers) GetTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}

	tpl, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		switch err {
		case services.ErrTemplateNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, TemplateResponse{Template: tpl})
}
