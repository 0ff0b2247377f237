// Package services – GenerationService
//
// This file implements the generation orchestrator. A request resolves its
// content in one of two mutually exclusive ways, checked in this order:
//
//  1. Template path: a template reference reuses an existing macro's
//     description verbatim. Nothing new is persisted.
//  2. AI path: the description is sent to the external generation
//     collaborator; the returned text is persisted as a new macro plus its
//     version 1 in a single transaction, so a macro is never observable
//     with zero versions.
//
// The external call runs synchronously inside the request under a
// caller-configured timeout, with no retries. Export of the resolved content
// is the handler's concern and deliberately not part of this service.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsubouchi/macro-genius/internal/domain"
	"github.com/tsubouchi/macro-genius/internal/genai"
	"github.com/tsubouchi/macro-genius/internal/repo"
)

// GenerateInput is the normalized generation request.
type GenerateInput struct {
	// TemplateID selects the template path when non-nil.
	TemplateID *int64
	// UseAI selects the AI path when no template is referenced.
	UseAI bool
	// Description is the user's request; required on the AI path.
	Description string
	// Category classifies the new macro (AI path only). Empty means
	// AI_GENERATED.
	Category domain.MacroCategory
	// IsPublic sets the initial visibility of a new macro. Defaults to
	// public when the request leaves it unset.
	IsPublic bool
}

// GenerateResult carries the resolved content and, on the AI path, the
// persisted records.
type GenerateResult struct {
	// Title and Content are what the export collaborator renders.
	Title   string
	Content string

	// Macro is the record backing the result: the reused template on the
	// template path, or the freshly created macro on the AI path.
	Macro *domain.Macro
	// Version is the appended version 1 (AI path only; nil on the
	// template path).
	Version *domain.MacroVersion
	// Reused reports whether an existing template was served as-is.
	Reused bool
}

// GenerationService decides where a macro's content comes from and records
// AI results as a new macro with an initial version.
type GenerationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Generator is the external text-generation collaborator.
	Generator genai.Generator
	// Timeout bounds a single generation call. Zero means no deadline
	// beyond the request's own.
	Timeout time.Duration

	// now is swappable in tests to pin generated titles.
	now func() time.Time
}

// NewGenerationService constructs a GenerationService.
func NewGenerationService(db *gorm.DB, g genai.Generator, timeout time.Duration) *GenerationService {
	return &GenerationService{DB: db, Generator: g, Timeout: timeout, now: time.Now}
}

// Generate resolves a generation request per the precedence rules above.
//
// Errors:
//   - ErrTemplateNotFound when a template reference does not resolve.
//   - ErrDescriptionRequired when the AI path lacks a description.
//   - ErrNothingToGenerate when neither path is selected.
//   - ErrGenerationFailed (wrapped) when the external call fails or times out.
//   - The underlying DB error when persistence fails; generated text is not
//     reported as saved in that case.
func (s *GenerationService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.Bool("use_ai", in.UseAI),
			attribute.Bool("template", in.TemplateID != nil),
		),
	)
	defer span.End()

	switch {
	case in.TemplateID != nil:
		return s.fromTemplate(ctx, *in.TemplateID)
	case in.UseAI:
		return s.fromAI(ctx, in)
	default:
		return nil, ErrNothingToGenerate
	}
}

// fromTemplate serves an existing macro's description verbatim. No new
// records are created and no version is appended.
func (s *GenerationService) fromTemplate(ctx context.Context, id int64) (*GenerateResult, error) {
	m, err := repo.GetMacro(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &GenerateResult{
		Title:   m.Title,
		Content: m.Description,
		Macro:   m,
		Reused:  true,
	}, nil
}

// fromAI generates content from the description and persists macro +
// version 1 atomically.
func (s *GenerationService) fromAI(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	category := in.Category
	if category == "" {
		category = domain.CategoryAIGenerated
	}

	genCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	content, err := s.Generator.Generate(genCtx, description)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	title := "Macro " + nowFn().UTC().Format("20060102_150405")

	var (
		macro   *domain.Macro
		version *domain.MacroVersion
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMacro(ctx, tx, title, description, category, in.IsPublic)
		if err != nil {
			return err
		}
		v, err := repo.CreateVersion(tx, m.ID, 1, content)
		if err != nil {
			return err
		}
		macro, version = m, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Title:   title,
		Content: content,
		Macro:   macro,
		Version: version,
	}, nil
}
