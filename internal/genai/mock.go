package genai

import (
	"context"
	"strings"
)

// StaticGenerator is a placeholder implementation for local runs and tests.
// It never calls an external model.
type StaticGenerator struct{}

// Generate wraps the description into a trivial VBA stub.
func (StaticGenerator) Generate(_ context.Context, description string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Sub GeneratedMacro()\n")
	sb.WriteString("    ' " + strings.ReplaceAll(description, "\n", " ") + "\n")
	sb.WriteString("    MsgBox \"TODO: implement\"\n")
	sb.WriteString("End Sub\n")
	return sb.String(), nil
}
