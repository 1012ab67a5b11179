package compiler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderedPrompt is the literal text sent to the classification service.
type RenderedPrompt struct {
	System string
	User   string
}

// Render assembles the prompt for one input. Only the data of each example is
// shown; targets and explanations stay out of the classification prompt.
func Render[D, T any](prompt PromptTemplate, examples []FewshotExample[D, T], input D) (RenderedPrompt, error) {
	var b strings.Builder

	b.WriteString("# Task:\n\n")
	b.WriteString(prompt.PreExamplesPrompt)
	b.WriteString("\n\n# Examples:\n\n<examples>\n")
	for i, ex := range examples {
		data, err := json.MarshalIndent(ex.Data, "", "  ")
		if err != nil {
			return RenderedPrompt{}, fmt.Errorf("marshal example %d: %w", i, err)
		}
		b.WriteString("<example>\n")
		b.Write(data)
		b.WriteString("\n</example>\n")
	}
	b.WriteString("</examples>\n\n# Additional Instructions:\n")
	b.WriteString(prompt.PostExamplesPreTestCasePrompt)

	testCase, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return RenderedPrompt{}, fmt.Errorf("marshal test case: %w", err)
	}
	b.WriteString("\n\n# Test Case:\n\n<test-case>\n")
	b.Write(testCase)
	b.WriteString("\n</test-case>\n\n# Final Instructions:\n\n")
	b.WriteString(prompt.FinalPrompt)

	return RenderedPrompt{System: prompt.SystemPrompt, User: b.String()}, nil
}
