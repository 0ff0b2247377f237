// Package services – MacroService
//
// This file implements the MacroService, which owns read access and metadata
// mutation for stored macros. It builds the read-model representation
// (including the denormalized latest-version pair), lists macros with the
// public-only filter, and toggles the visibility flag. Version content is
// immutable; the only mutations here are visibility changes and version
// appends.
//
// Service-level errors (e.g., ErrMacroNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsubouchi/macro-genius/internal/domain"
	"github.com/tsubouchi/macro-genius/internal/repo"
)

// MacroRepo defines the repository contract required by MacroService.
// Implementations are responsible for persistence of macro aggregates.
type MacroRepo interface {
	// ListMacros returns macros newest first, optionally public-only.
	ListMacros(ctx context.Context, db *gorm.DB, publicOnly bool, limit int) ([]domain.Macro, error)

	// GetMacro fetches a macro by ID.
	GetMacro(ctx context.Context, db *gorm.DB, id int64) (*domain.Macro, error)

	// SetMacroVisibility updates the is_public flag in place.
	SetMacroVisibility(ctx context.Context, db *gorm.DB, id int64, isPublic bool) error

	// LatestVersion returns the highest-numbered version, or nil when none.
	LatestVersion(ctx context.Context, db *gorm.DB, macroID int64) (*domain.MacroVersion, error)

	// ListVersions returns all versions, highest number first.
	ListVersions(ctx context.Context, db *gorm.DB, macroID int64) ([]domain.MacroVersion, error)

	// AddVersion appends the next version for a macro.
	AddVersion(ctx context.Context, db *gorm.DB, macroID int64, content string) (*domain.MacroVersion, error)
}

// MacroService provides macro-level read operations, representation
// building, visibility changes, and version appends.
type MacroService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the macro repository used by this service.
	Repo MacroRepo
}

// NewMacroService constructs a MacroService.
func NewMacroService(db *gorm.DB, r MacroRepo) *MacroService {
	return &MacroService{DB: db, Repo: r}
}

// List returns macro representations ordered newest first. When publicOnly
// is set, private macros are excluded. A limit <= 0 returns everything.
func (s *MacroService) List(ctx context.Context, publicOnly bool, limit int) ([]domain.MacroView, error) {
	tr := otel.Tracer("services/MacroService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.Bool("public_only", publicOnly)),
	)
	defer span.End()

	macros, err := s.Repo.ListMacros(ctx, s.DB, publicOnly, limit)
	if err != nil {
		return nil, err
	}
	views := make([]domain.MacroView, 0, len(macros))
	for i := range macros {
		latest, err := s.Repo.LatestVersion(ctx, s.DB, macros[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, macros[i].View(latest))
	}
	return views, nil
}

// Get returns the representation of one macro, or ErrMacroNotFound.
func (s *MacroService) Get(ctx context.Context, id int64) (*domain.MacroView, error) {
	tr := otel.Tracer("services/MacroService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("macro.id", id)),
	)
	defer span.End()

	m, err := s.Repo.GetMacro(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMacroNotFound
		}
		return nil, err
	}
	latest, err := s.Repo.LatestVersion(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	v := m.View(latest)
	return &v, nil
}

// Versions returns the full version history of a macro, newest number first.
// The macro must exist, otherwise ErrMacroNotFound.
func (s *MacroService) Versions(ctx context.Context, id int64) ([]domain.MacroVersion, error) {
	tr := otel.Tracer("services/MacroService")
	ctx, span := tr.Start(ctx, "Versions",
		trace.WithAttributes(attribute.Int64("macro.id", id)),
	)
	defer span.End()

	if _, err := s.Repo.GetMacro(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMacroNotFound
		}
		return nil, err
	}
	return s.Repo.ListVersions(ctx, s.DB, id)
}

// SetVisibility flips the public/private flag of a macro.
// Returns ErrMacroNotFound when the ID does not resolve.
func (s *MacroService) SetVisibility(ctx context.Context, id int64, isPublic bool) error {
	tr := otel.Tracer("services/MacroService")
	ctx, span := tr.Start(ctx, "SetVisibility",
		trace.WithAttributes(
			attribute.Int64("macro.id", id),
			attribute.Bool("is_public", isPublic),
		),
	)
	defer span.End()

	if err := s.Repo.SetMacroVisibility(ctx, s.DB, id, isPublic); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMacroNotFound
		}
		return err
	}
	return nil
}

// AddVersion appends new content to a macro's history and returns the
// created version. Returns ErrMacroNotFound when the macro is missing.
func (s *MacroService) AddVersion(ctx context.Context, id int64, content string) (*domain.MacroVersion, error) {
	tr := otel.Tracer("services/MacroService")
	ctx, span := tr.Start(ctx, "AddVersion",
		trace.WithAttributes(attribute.Int64("macro.id", id)),
	)
	defer span.End()

	v, err := s.Repo.AddVersion(ctx, s.DB, id, content)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMacroNotFound
		}
		return nil, err
	}
	return v, nil
}

// repoShim adapts the repository free functions to MacroRepo. It keeps the
// service decoupled from the concrete repo package while reusing the
// existing functions.
type repoShim struct{}

// NewRepo returns the default repository implementation.
func NewRepo() MacroRepo { return repoShim{} }

func (repoShim) ListMacros(ctx context.Context, db *gorm.DB, publicOnly bool, limit int) ([]domain.Macro, error) {
	return repo.ListMacros(ctx, db, publicOnly, limit)
}

func (repoShim) GetMacro(ctx context.Context, db *gorm.DB, id int64) (*domain.Macro, error) {
	return repo.GetMacro(ctx, db, id)
}

func (repoShim) SetMacroVisibility(ctx context.Context, db *gorm.DB, id int64, isPublic bool) error {
	return repo.SetMacroVisibility(ctx, db, id, isPublic)
}

func (repoShim) LatestVersion(ctx context.Context, db *gorm.DB, macroID int64) (*domain.MacroVersion, error) {
	return repo.LatestVersion(ctx, db, macroID)
}

func (repoShim) ListVersions(ctx context.Context, db *gorm.DB, macroID int64) ([]domain.MacroVersion, error) {
	return repo.ListVersions(ctx, db, macroID)
}

func (repoShim) AddVersion(ctx context.Context, db *gorm.DB, macroID int64, content string) (*domain.MacroVersion, error) {
	return repo.AddVersion(ctx, db, macroID, content)
}
