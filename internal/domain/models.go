// Package domain defines the persistence models for macros and their version
// history. These types are mapped with GORM and form the core data layer of
// the macro generation service.
package domain

import (
	"time"
)

// MacroCategory classifies a macro's origin or purpose. The set of valid
// values is closed; anything persisted must be one of the constants below.
type MacroCategory string

// Valid macro categories.
const (
	CategoryTemplate       MacroCategory = "TEMPLATE"
	CategoryAIGenerated    MacroCategory = "AI_GENERATED"
	CategoryDataProcessing MacroCategory = "DATA_PROCESSING"
	CategoryFormatting     MacroCategory = "FORMATTING"
	CategoryCalculation    MacroCategory = "CALCULATION"
	CategoryAutomation     MacroCategory = "AUTOMATION"
	CategoryReporting      MacroCategory = "REPORTING"
	CategoryCustom         MacroCategory = "CUSTOM"
)

// CategoryLabels maps each category to its localized display name.
// Pure data; presentation layers read it via DisplayName.
var CategoryLabels = map[MacroCategory]string{
	CategoryTemplate:       "テンプレート",
	CategoryAIGenerated:    "AI生成",
	CategoryDataProcessing: "データ処理",
	CategoryFormatting:     "フォーマット",
	CategoryCalculation:    "計算",
	CategoryAutomation:     "自動化",
	CategoryReporting:      "レポート",
	CategoryCustom:         "カスタム",
}

// ParseCategory validates a raw label against the closed category set.
// The boolean is false when the label is not a known category.
func ParseCategory(label string) (MacroCategory, bool) {
	c := MacroCategory(label)
	_, ok := CategoryLabels[c]
	return c, ok
}

// DisplayName returns the localized label for the category. Unknown values
// fall back to the raw category string.
func (c MacroCategory) DisplayName() string {
	if name, ok := CategoryLabels[c]; ok {
		return name
	}
	return string(c)
}

// Macro represents one stored automation script with its metadata. The script
// bodies themselves live in MacroVersion rows owned by the macro.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Title: optional display name (auto-generated on the AI path).
//   - Description: required free text; either the user's request or the
//     rendered script body for seeded templates.
//   - Category: one of the MacroCategory constants (default AI_GENERATED).
//   - CreatedAt: set once at creation. UpdatedAt is managed by GORM.
//   - IsPublic: visibility flag; the only mutable metadata field.
type Macro struct {
	ID          int64         `json:"id"          gorm:"primaryKey;autoIncrement"`
	Title       string        `json:"title"       gorm:"type:varchar(255)"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Category    MacroCategory `json:"category"    gorm:"type:varchar(50);not null;default:'AI_GENERATED'"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	IsPublic    bool          `json:"is_public"   gorm:"not null;default:true"`
}

// TableName returns the database table name for Macro.
func (Macro) TableName() string { return "macros" }

// MacroVersion is one immutable snapshot of a macro's content. Versions are
// append-only: rows are never updated, and version numbers form a gap-free
// sequence starting at 1 for each macro.
//
// The composite unique index on (macro_id, version_number) makes duplicate
// numbering a constraint violation rather than silent data corruption.
type MacroVersion struct {
	ID            int64     `json:"id"             gorm:"primaryKey;autoIncrement"`
	MacroID       int64     `json:"macro_id"       gorm:"not null;index;uniqueIndex:ux_macro_version,priority:1"`
	VersionNumber int       `json:"version_number" gorm:"not null;uniqueIndex:ux_macro_version,priority:2"`
	Content       string    `json:"content"        gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"`

	// Macro is the owning record. Versions are cascade-deleted if their
	// macro is removed; no orphan versions may exist.
	Macro Macro `json:"-" gorm:"foreignKey:MacroID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MacroVersion.
func (MacroVersion) TableName() string { return "macro_versions" }

// MacroView is the read-model projection of a macro exposed by the API.
// LatestVersion and Content are denormalized from the highest-numbered
// version and are null when the macro has no versions yet.
type MacroView struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	CategoryLabel string  `json:"category_label"`
	CreatedAt     string  `json:"created_at"`
	IsPublic      bool    `json:"is_public"`
	LatestVersion *int    `json:"latest_version"`
	Content       *string `json:"content"`
}

// View builds the representation of a macro given its latest version, which
// may be nil. CreatedAt is rendered as RFC 3339 in UTC.
func (m *Macro) View(latest *MacroVersion) MacroView {
	v := MacroView{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      string(m.Category),
		CategoryLabel: m.Category.DisplayName(),
		CreatedAt:     m.CreatedAt.UTC().Format(time.RFC3339),
		IsPublic:      m.IsPublic,
	}
	if latest != nil {
		n := latest.VersionNumber
		c := latest.Content
		v.LatestVersion = &n
		v.Content = &c
	}
	return v
}
