package compiler

import (
	"context"

	"github.com/teilomillet/tastelever/llm"
)

// ClassificationService produces an object conforming to a JSON schema,
// optionally with per-token log-probabilities. *llm.Client implements it.
type ClassificationService interface {
	GenerateStructured(ctx context.Context, req *llm.StructuredRequest) (*llm.StructuredResponse, error)
}

// TextService produces free text. *llm.Client implements it.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

var (
	_ ClassificationService = (*llm.Client)(nil)
	_ TextService           = (*llm.Client)(nil)
)
