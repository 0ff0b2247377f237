package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tsubouchi/macro-genius/internal/domain"
	"github.com/tsubouchi/macro-genius/internal/repo"
)

// fakeGenerator returns a canned body or error and records the prompt and
// whether a deadline was attached.
type fakeGenerator struct {
	out         string
	err         error
	gotPrompt   string
	hadDeadline bool
}

func (f *fakeGenerator) Generate(ctx context.Context, description string) (string, error) {
	f.gotPrompt = description
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func TestGenerate_NeitherPath(t *testing.T) {
	svc := NewGenerationService(newServiceDB(t), &fakeGenerator{}, 0)
	if _, err := svc.Generate(context.Background(), GenerateInput{}); err != ErrNothingToGenerate {
		t.Fatalf("expected ErrNothingToGenerate, got %v", err)
	}
}

func TestGenerate_AIPath_RequiresDescription(t *testing.T) {
	svc := NewGenerationService(newServiceDB(t), &fakeGenerator{}, 0)
	_, err := svc.Generate(context.Background(), GenerateInput{UseAI: true, Description: "   "})
	if err != ErrDescriptionRequired {
		t.Fatalf("expected ErrDescriptionRequired, got %v", err)
	}
}

func TestGenerate_TemplatePath_ReusesWithoutPersisting(t *testing.T) {
	db := newServiceDB(t)
	gen := &fakeGenerator{out: "should not be called"}
	svc := NewGenerationService(db, gen, 0)
	ctx := context.Background()

	tpl, err := repo.CreateMacro(ctx, db, "データ集計マクロ", "Sub 集計() ... End Sub", domain.CategoryTemplate, true)
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}

	id := tpl.ID
	res, err := svc.Generate(ctx, GenerateInput{TemplateID: &id, UseAI: true, Description: "ignored"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Reused || res.Version != nil {
		t.Fatalf("template path must not create a version: %+v", res)
	}
	if res.Title != "データ集計マクロ" || res.Content != "Sub 集計() ... End Sub" {
		t.Fatalf("unexpected resolved content: %+v", res)
	}
	if gen.gotPrompt != "" {
		t.Fatalf("generator must not be called on the template path")
	}

	// No new macros were created.
	all, err := repo.ListMacros(ctx, db, false, 0)
	if err != nil {
		t.Fatalf("ListMacros: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected only the seeded template, got %d macros", len(all))
	}
}

func TestGenerate_TemplatePath_NotFound(t *testing.T) {
	svc := NewGenerationService(newServiceDB(t), &fakeGenerator{}, 0)
	id := int64(9999)
	if _, err := svc.Generate(context.Background(), GenerateInput{TemplateID: &id}); err != ErrTemplateNotFound {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestGenerate_AIPath_PersistsMacroWithVersionOne(t *testing.T) {
	db := newServiceDB(t)
	gen := &fakeGenerator{out: "Sub Generated() ... End Sub"}
	svc := NewGenerationService(db, gen, 30*time.Second)
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC) }
	ctx := context.Background()

	res, err := svc.Generate(ctx, GenerateInput{
		UseAI:       true,
		Description: "highlight duplicate rows",
		IsPublic:    true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Reused {
		t.Fatalf("AI path must not report reuse")
	}
	if res.Title != "Macro 20250602_150405" {
		t.Fatalf("unexpected auto title: %q", res.Title)
	}
	if res.Macro == nil || res.Version == nil {
		t.Fatalf("expected persisted macro and version: %+v", res)
	}
	if res.Macro.Category != domain.CategoryAIGenerated {
		t.Fatalf("expected default AI_GENERATED category, got %q", res.Macro.Category)
	}
	if res.Macro.Description != "highlight duplicate rows" {
		t.Fatalf("description must keep the original input, got %q", res.Macro.Description)
	}
	if res.Version.VersionNumber != 1 || res.Version.Content != "Sub Generated() ... End Sub" {
		t.Fatalf("unexpected version: %+v", res.Version)
	}
	if gen.gotPrompt != "highlight duplicate rows" {
		t.Fatalf("generator saw prompt %q", gen.gotPrompt)
	}
	if !gen.hadDeadline {
		t.Fatalf("generation call must carry a deadline when a timeout is configured")
	}

	// Round-trip: the macro is persisted with exactly one version.
	latest, err := repo.LatestVersion(ctx, db, res.Macro.ID)
	if err != nil {
		t.Fatalf("LatestVersion: %v", err)
	}
	if latest == nil || latest.VersionNumber != 1 {
		t.Fatalf("expected persisted version 1, got %+v", latest)
	}
}

func TestGenerate_AIPath_CallerCategoryWins(t *testing.T) {
	db := newServiceDB(t)
	svc := NewGenerationService(db, &fakeGenerator{out: "Sub X() End Sub"}, 0)

	res, err := svc.Generate(context.Background(), GenerateInput{
		UseAI:       true,
		Description: "format headers",
		Category:    domain.CategoryFormatting,
		IsPublic:    true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Macro.Category != domain.CategoryFormatting {
		t.Fatalf("expected FORMATTING category, got %q", res.Macro.Category)
	}
}

func TestGenerate_AIPath_ExternalFailureLeavesNoState(t *testing.T) {
	db := newServiceDB(t)
	svc := NewGenerationService(db, &fakeGenerator{err: errors.New("upstream 503")}, 0)
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateInput{UseAI: true, Description: "anything"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	// A failed call must not leave a macro behind.
	all, err := repo.ListMacros(ctx, db, false, 0)
	if err != nil {
		t.Fatalf("ListMacros: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no persisted macros after failure, got %d", len(all))
	}
}

func TestGenerate_TemplateTakesPrecedenceOverAI(t *testing.T) {
	db := newServiceDB(t)
	gen := &fakeGenerator{out: "never"}
	svc := NewGenerationService(db, gen, 0)
	ctx := context.Background()

	tpl, err := repo.CreateMacro(ctx, db, "t", "body", domain.CategoryTemplate, true)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	id := tpl.ID
	res, err := svc.Generate(ctx, GenerateInput{TemplateID: &id, UseAI: true, Description: "also set"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Reused || gen.gotPrompt != "" {
		t.Fatalf("template reference must win over use_ai")
	}
}
