package llm

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/teilomillet/tastelever/utils"
)

// TokenCounter estimates prompt sizes with the tokenizer of a model.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter loads the encoding for model, falling back to the gpt-4o
// encoding for models tiktoken does not know.
func NewTokenCounter(model string, logger utils.Logger) (*TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("Failed to get encoding for model, defaulting to gpt-4o", "model", model, "error", err)
		encoding, err = tiktoken.EncodingForModel("gpt-4o")
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
	}
	return &TokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}
