// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Macro model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a macro is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ordering: listings are sorted by creation time descending with ID
// descending as the tie-breaker, so results are deterministic even when two
// macros share a timestamp.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tsubouchi/macro-genius/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateMacro inserts a new Macro row with the given metadata and zero
// versions. CreatedAt is set to UTC now.
//
// On success, it returns the persisted Macro with its assigned ID. On
// failure, it returns a DB error.
func CreateMacro(ctx context.Context, db *gorm.DB, title, description string, category domain.MacroCategory, isPublic bool) (*domain.Macro, error) {
	m := &domain.Macro{
		Title:       title,
		Description: description,
		Category:    category,
		IsPublic:    isPublic,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMacros returns macros ordered newest first (created_at DESC, id DESC).
// When publicOnly is true, only rows with is_public = true are returned.
// A limit <= 0 returns everything. It returns an empty slice when nothing
// matches; on DB error, it returns the error.
func ListMacros(ctx context.Context, db *gorm.DB, publicOnly bool, limit int) ([]domain.Macro, error) {
	var out []domain.Macro
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// GetMacro fetches a single macro by ID. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetMacro(ctx context.Context, db *gorm.DB, id int64) (*domain.Macro, error) {
	var m domain.Macro
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetMacroVisibility updates the is_public flag in place. If no rows are
// affected (macro missing), it returns ErrNotFound. On DB error, the raw
// error is returned.
func SetMacroVisibility(ctx context.Context, db *gorm.DB, id int64, isPublic bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Macro{}).
		Where("id = ?", id).
		Update("is_public", isPublic)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMacro removes a macro row; its versions go with it via the FK
// cascade. No HTTP endpoint exposes this yet, but the cascade invariant is
// part of the data model contract. Returns ErrNotFound when the ID does not
// exist.
func DeleteMacro(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Macro{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
