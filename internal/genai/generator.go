// Package genai isolates the external text-generation collaborator behind a
// small interface so the orchestration layer can be tested without network
// access. Implementations are synchronous; callers apply their own timeout
// via the context. No implementation retries: a failed call surfaces to the
// user as an error.
package genai

import "context"

// Generator produces macro source text from a natural-language description.
type Generator interface {
	Generate(ctx context.Context, description string) (string, error)
}

// systemDirective frames every request sent to the generation API.
const systemDirective = "You are an expert Excel VBA developer. " +
	"Given a natural-language description of a spreadsheet task, reply with " +
	"a complete, runnable VBA macro (Sub ... End Sub) and nothing else. " +
	"Comments inside the macro should explain each step."

// Settings holds the configuration a concrete generator needs.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}
