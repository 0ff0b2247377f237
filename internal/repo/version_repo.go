// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// MacroVersion model.
//
// Versions are append-only. Numbering is computed inside a transaction as
// MAX(version_number)+1 and backed by the unique (macro_id, version_number)
// index, so two concurrent appends to the same macro can never both claim
// the same number: the loser fails with a constraint violation instead of
// silently duplicating or skipping a number. A process-local lock would not
// survive multiple server processes; the index does.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tsubouchi/macro-genius/internal/domain"
)

// CreateVersion inserts a version row with an explicit number. It is meant
// for composition into an outer transaction (seeding, atomic macro+v1
// creation); use AddVersion when the next number must be computed.
func CreateVersion(db *gorm.DB, macroID int64, number int, content string) (*domain.MacroVersion, error) {
	v := &domain.MacroVersion{
		MacroID:       macroID,
		VersionNumber: number,
		Content:       content,
		CreatedAt:     time.Now().UTC(),
	}
	return v, db.Create(v).Error
}

// AddVersion appends the next version for a macro: 1 when no versions exist,
// otherwise latest+1. The read and the insert run in one transaction.
// Returns the persisted version, or ErrNotFound when the macro is missing.
func AddVersion(ctx context.Context, db *gorm.DB, macroID int64, content string) (*domain.MacroVersion, error) {
	var out *domain.MacroVersion
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&domain.Macro{}).Where("id = ?", macroID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		var next int
		if err := tx.Raw(
			"SELECT COALESCE(MAX(version_number), 0) + 1 FROM macro_versions WHERE macro_id = ?",
			macroID,
		).Scan(&next).Error; err != nil {
			return err
		}

		v, err := CreateVersion(tx, macroID, next, content)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LatestVersion returns the version with the highest number for the macro,
// or (nil, nil) when the macro has no versions. The maximum is selected by
// an explicit ORDER BY on version_number; insertion order is never trusted.
func LatestVersion(ctx context.Context, db *gorm.DB, macroID int64) (*domain.MacroVersion, error) {
	var out []domain.MacroVersion
	err := db.WithContext(ctx).
		Where("macro_id = ?", macroID).
		Order("version_number DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// ListVersions returns all versions for a macro, highest number first.
func ListVersions(ctx context.Context, db *gorm.DB, macroID int64) ([]domain.MacroVersion, error) {
	var out []domain.MacroVersion
	err := db.WithContext(ctx).
		Where("macro_id = ?", macroID).
		Order("version_number DESC").
		Find(&out).Error
	return out, err
}

// CountVersions uses a raw COUNT so a missing table surfaces as an error.
func CountVersions(db *gorm.DB, macroID int64) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM macro_versions WHERE macro_id = ?", macroID).Scan(&total).Error
	return total, err
}
