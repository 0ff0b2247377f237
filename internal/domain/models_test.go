package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	if (Macro{}).TableName() != "macros" {
		t.Fatalf("Macro.TableName() = %q; want %q", (Macro{}).TableName(), "macros")
	}
	if (MacroVersion{}).TableName() != "macro_versions" {
		t.Fatalf("MacroVersion.TableName() = %q; want %q", (MacroVersion{}).TableName(), "macro_versions")
	}
}

func TestParseCategory(t *testing.T) {
	for _, label := range []string{
		"TEMPLATE", "AI_GENERATED", "DATA_PROCESSING", "FORMATTING",
		"CALCULATION", "AUTOMATION", "REPORTING", "CUSTOM",
	} {
		c, ok := ParseCategory(label)
		if !ok {
			t.Fatalf("ParseCategory(%q) rejected a valid label", label)
		}
		if string(c) != label {
			t.Fatalf("ParseCategory(%q) = %q", label, c)
		}
	}
	if _, ok := ParseCategory("SORCERY"); ok {
		t.Fatalf("ParseCategory accepted an unknown label")
	}
	if _, ok := ParseCategory(""); ok {
		t.Fatalf("ParseCategory accepted the empty string")
	}
}

func TestDisplayName(t *testing.T) {
	if got := CategoryTemplate.DisplayName(); got != "テンプレート" {
		t.Fatalf("DisplayName(TEMPLATE) = %q", got)
	}
	if got := CategoryAIGenerated.DisplayName(); got != "AI生成" {
		t.Fatalf("DisplayName(AI_GENERATED) = %q", got)
	}
	// Unknown values fall through to the raw string.
	if got := MacroCategory("UNKNOWN").DisplayName(); got != "UNKNOWN" {
		t.Fatalf("DisplayName(UNKNOWN) = %q", got)
	}
}

func TestView_WithAndWithoutVersions(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	m := &Macro{
		ID:          7,
		Title:       "Sum Macro",
		Description: "sums a range",
		Category:    CategoryTemplate,
		CreatedAt:   created,
		IsPublic:    true,
	}

	// Zero versions: denormalized fields must be null.
	v := m.View(nil)
	if v.LatestVersion != nil || v.Content != nil {
		t.Fatalf("expected nil latest_version/content on empty history, got %+v", v)
	}
	if v.CreatedAt != "2025-03-01T09:30:00Z" {
		t.Fatalf("unexpected created_at: %q", v.CreatedAt)
	}
	if v.CategoryLabel != "テンプレート" {
		t.Fatalf("unexpected category_label: %q", v.CategoryLabel)
	}

	// With a latest version: both fields populated.
	latest := &MacroVersion{MacroID: 7, VersionNumber: 3, Content: "Sub Sum() ... End Sub"}
	v = m.View(latest)
	if v.LatestVersion == nil || *v.LatestVersion != 3 {
		t.Fatalf("expected latest_version=3, got %+v", v.LatestVersion)
	}
	if v.Content == nil || *v.Content != "Sub Sum() ... End Sub" {
		t.Fatalf("unexpected content: %+v", v.Content)
	}
}

func TestMigrations_Indexes_AndCascade(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Macro{}, &MacroVersion{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&Macro{}, &MacroVersion{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&MacroVersion{}, "ux_macro_version") {
		t.Fatalf("expected unique index ux_macro_version on macro_versions")
	}

	now := time.Now().UTC()
	mac := &Macro{Title: "T", Description: "d", Category: CategoryCustom, CreatedAt: now, IsPublic: true}
	if err := db.Create(mac).Error; err != nil {
		t.Fatalf("insert macro: %v", err)
	}
	for i := 1; i <= 2; i++ {
		v := &MacroVersion{MacroID: mac.ID, VersionNumber: i, Content: "body", CreatedAt: now}
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("insert version %d: %v", i, err)
		}
	}

	// Duplicate version number must violate the unique index.
	dup := &MacroVersion{MacroID: mac.ID, VersionNumber: 2, Content: "dup", CreatedAt: now}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate version number")
	}

	// CASCADE: deleting the macro removes its versions.
	if err := db.Delete(&Macro{}, "id = ?", mac.ID).Error; err != nil {
		t.Fatalf("delete macro: %v", err)
	}
	var cnt int64
	if err := db.Model(&MacroVersion{}).Where("macro_id = ?", mac.ID).Count(&cnt).Error; err != nil {
		t.Fatalf("count versions after macro delete: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected versions to cascade-delete with their macro, got count=%d", cnt)
	}
}
