// Macro HTTP handlers.
//
// This file exposes REST endpoints for stored macros:
//   - GET   /macros                (list, public filter, ETag support)
//   - GET   /macros/{id}           (fetch one)
//   - GET   /macros/{id}/versions  (version history)
//   - POST  /macros/{id}/share     (toggle visibility)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tsubouchi/macro-genius/internal/domain"
	"github.com/tsubouchi/macro-genius/internal/repo"
	"github.com/tsubouchi/macro-genius/internal/services"
	"github.com/tsubouchi/macro-genius/internal/sysutil"
	"github.com/tsubouchi/macro-genius/internal/utils"
)

//
// Service contracts (context-aware)
//

// MacroService defines macro read and visibility operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MacroService interface {
	// List returns macro representations, newest first, optionally public-only.
	List(ctx context.Context, publicOnly bool, limit int) ([]domain.MacroView, error)
	// Get returns one macro representation by ID.
	Get(ctx context.Context, id int64) (*domain.MacroView, error)
	// Versions returns the full version history, newest number first.
	Versions(ctx context.Context, id int64) ([]domain.MacroVersion, error)
	// SetVisibility updates the public/private flag of a macro.
	SetVisibility(ctx context.Context, id int64, isPublic bool) error
}

// GenerationService defines the macro generation operation consumed by the
// generate endpoint.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type GenerationService interface {
	// Generate resolves content from a template or the AI collaborator.
	Generate(ctx context.Context, in services.GenerateInput) (*services.GenerateResult, error)
}

// Exporter renders a (title, content) pair into a downloadable workbook file
// and returns its path.
type Exporter interface {
	Render(title, content string) (string, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for macros and generation. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	macroSvc MacroService
	genSvc   GenerationService
	exporter Exporter
}

// New constructs and returns a Handlers instance bound to the given services.
func New(macroSvc MacroService, genSvc GenerationService, exporter Exporter) *Handlers {
	return &Handlers{macroSvc: macroSvc, genSvc: genSvc, exporter: exporter}
}

//
// DTOs
//

// ShareMacroRequest is the JSON payload for changing macro visibility.
type ShareMacroRequest struct {
	// IsPublic sets whether the macro appears in public listings.
	IsPublic *bool `json:"is_public" binding:"required" example:"false"`
}

//
// Helpers
//

// macroID parses the :id path parameter as a positive integer.
func macroID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// clampLimit parses and bounds the optional limit query param, returning 0
// (unlimited) when absent.
func clampLimit(c *gin.Context) int {
	const maxLimit = 500
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

//
// Handlers
//

// ListMacros godoc
// @ID          listMacros
// @Summary     List macros
// @Description Returns macros newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Macros
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       public         query   bool    false "Restrict to public macros"   default(false)
// @Param       limit          query   int     false "Maximum number of results"   minimum(1) maximum(500)
//
// @Success     200  {array}  domain.MacroView
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /macros [get]
func (h *Handlers) ListMacros(c *gin.Context) {
	ctx := c.Request.Context()
	publicOnly := sysutil.IsTruthy(c.Query("public"))
	limit := clampLimit(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.macroSvc.(*services.MacroService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.MacroStats(ctx, db, publicOnly)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"macros:%t:%d:%d"`, publicOnly, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	views, err := h.macroSvc.List(ctx, publicOnly, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, views)
}

// GetMacro godoc
// @ID          getMacro
// @Summary     Fetch one macro
// @Description Returns the representation of a macro, including its latest version content.
// @Tags        Macros
// @Produce     json
//
// @Param       id  path  int  true  "Macro ID"  minimum(1) example(42)
//
// @Success     200  {object} domain.MacroView
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Macro not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /macros/{id} [get]
func (h *Handlers) GetMacro(c *gin.Context) {
	id, valid := macroID(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "macro id must be a positive integer")
		return
	}

	view, err := h.macroSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMacroNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Macro not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, view)
}

// ListVersions godoc
// @ID          listMacroVersions
// @Summary     List macro versions
// @Description Returns the full version history of a macro, newest version number first.
// @Tags        Macros
// @Produce     json
//
// @Param       id  path  int  true  "Macro ID"  minimum(1) example(42)
//
// @Success     200  {array}  domain.MacroVersion
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Macro not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /macros/{id}/versions [get]
func (h *Handlers) ListVersions(c *gin.Context) {
	id, valid := macroID(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "macro id must be a positive integer")
		return
	}

	versions, err := h.macroSvc.Versions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMacroNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Macro not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if versions == nil {
		versions = []domain.MacroVersion{}
	}
	ok(c, http.StatusOK, versions)
}

// ShareMacro godoc
// @ID          shareMacro
// @Summary     Change macro visibility
// @Description Sets whether a macro appears in public listings.
// @Tags        Macros
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Macro ID"  minimum(1) example(42)
// @Param       body  body  handlers.ShareMacroRequest  true  "Visibility payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Macro not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /macros/{id}/share [post]
func (h *Handlers) ShareMacro(c *gin.Context) {
	id, valid := macroID(c)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "macro id must be a positive integer")
		return
	}

	var req ShareMacroRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "is_public (boolean) is required")
		return
	}

	if err := h.macroSvc.SetVisibility(c.Request.Context(), id, *req.IsPublic); err != nil {
		if errors.Is(err, services.ErrMacroNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Macro not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
