// Macro generation HTTP handler.
//
// This file exposes the generation endpoint:
//   - POST /generate-macro (template reuse or AI generation, xlsx download)
//
// The handler validates the request shape, delegates to the generation
// service, renders the resolved content into a workbook, and streams it back
// as an attachment. Failures map onto the standard error envelope.
package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tsubouchi/macro-genius/internal/domain"
	"github.com/tsubouchi/macro-genius/internal/export"
	"github.com/tsubouchi/macro-genius/internal/http/middleware"
	"github.com/tsubouchi/macro-genius/internal/services"
)

//
// DTOs
//

// GenerateMacroRequest is the JSON payload for generating a macro.
//
// Exactly one generation path is taken: a template reference wins over AI
// generation, and AI generation requires a description.
type GenerateMacroRequest struct {
	// TemplateID references an existing macro to reuse as-is.
	TemplateID *int64 `json:"template_id" example:"1"`
	// UseAI requests AI generation from the description. Defaults to true.
	UseAI *bool `json:"use_ai" example:"true"`
	// Description is the natural-language request sent to the generator.
	Description string `json:"description" example:"A列とB列の値を合計してC列に出力する"`
	// Category optionally overrides the default AI_GENERATED classification.
	Category string `json:"category" example:"DATA_PROCESSING"`
	// IsPublic sets the visibility of the created macro. Defaults to true.
	IsPublic *bool `json:"is_public" example:"true"`
}

//
// Handler
//

// GenerateMacro godoc
// @ID          generateMacro
// @Summary     Generate a macro
// @Description Resolves macro content from a stored template or the AI generator and returns it as an xlsx download. The AI path persists a new macro with version 1.
// @Tags        Generation
// @Accept      json
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//
// @Param       body  body  handlers.GenerateMacroRequest  true  "Generation payload"
//
// @Success     200  {file}   file  "Workbook containing the resolved title and content"
// @Failure     400  {object} handlers.ErrorResponse "Missing description or no generation path"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Failure     500  {object} handlers.ErrorResponse "Generation or export failure"
// @Router      /generate-macro [post]
func (h *Handlers) GenerateMacro(c *gin.Context) {
	var req GenerateMacroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.GenerateInput{
		TemplateID:  req.TemplateID,
		UseAI:       true,
		Description: strings.TrimSpace(req.Description),
		IsPublic:    true,
	}
	if req.UseAI != nil {
		in.UseAI = *req.UseAI
	}
	if req.IsPublic != nil {
		in.IsPublic = *req.IsPublic
	}
	if raw := strings.TrimSpace(req.Category); raw != "" {
		cat, valid := domain.ParseCategory(raw)
		if !valid {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown category: "+raw)
			return
		}
		in.Category = cat
	}

	res, err := h.genSvc.Generate(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Template not found")
		case errors.Is(err, services.ErrDescriptionRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Description is required for AI generation")
		case errors.Is(err, services.ErrNothingToGenerate):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest,
				"Either a template reference or a description with AI generation must be provided")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, err.Error())
		}
		return
	}

	path, err := h.exporter.Render(res.Title, res.Content)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	if res.Macro != nil {
		middleware.LoggerFrom(c).Info().
			Int64("macro_id", res.Macro.ID).
			Str("category", string(res.Macro.Category)).
			Msg("macro generated")
	}

	c.Header("Content-Type", export.ContentType)
	c.FileAttachment(path, filepath.Base(path))
}
