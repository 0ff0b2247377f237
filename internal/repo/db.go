// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and template seeding.
package repo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tsubouchi/macro-genius/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs. foreign_keys must stay ON or version cascades do not fire.
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Macro{},
		&domain.MacroVersion{},
	)
}

// seedTemplates are the starter macros installed on first boot. Each becomes
// a public TEMPLATE macro whose description doubles as version 1 content.
var seedTemplates = []struct {
	Title string
	Body  string
}{
	{
		Title: "データ集計マクロ",
		Body: `Sub データ集計()
    ' 選択範囲の合計を計算
    Dim rng As Range
    Set rng = Selection

    ' 合計を計算
    Dim total As Double
    total = WorksheetFunction.Sum(rng)

    ' 結果を表示
    MsgBox "選択範囲の合計: " & total
End Sub
`,
	},
	{
		Title: "シート整理マクロ",
		Body: `Sub シート整理()
    ' すべてのシートをループ
    Dim ws As Worksheet
    For Each ws In ThisWorkbook.Worksheets
        ' シートの最終行と列を取得
        Dim lastRow As Long, lastCol As Long
        lastRow = ws.Cells(ws.Rows.Count, 1).End(xlUp).Row
        lastCol = ws.Cells(1, ws.Columns.Count).End(xlToLeft).Column

        ' オートフィット
        ws.Range(ws.Cells(1, 1), ws.Cells(lastRow, lastCol)).Columns.AutoFit
    Next ws

    MsgBox "すべてのシートを整理しました"
End Sub
`,
	},
}

// SeedTemplates installs the starter template macros when none exist yet.
// Each template is created together with its version 1 in one transaction,
// so a macro is never observable without a version. Calling it repeatedly
// is a no-op once any TEMPLATE-category macro is present.
func SeedTemplates(ctx context.Context, db *gorm.DB) error {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Macro{}).
		Where("category = ?", domain.CategoryTemplate).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range seedTemplates {
			m, err := CreateMacro(ctx, tx, t.Title, t.Body, domain.CategoryTemplate, true)
			if err != nil {
				return err
			}
			if _, err := CreateVersion(tx, m.ID, 1, t.Body); err != nil {
				return err
			}
		}
		return nil
	})
}
