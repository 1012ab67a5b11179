package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	prompt := PromptTemplate{
		SystemPrompt:                  "You rate takeaways.",
		PreExamplesPrompt:             "Rate the materiality.",
		PostExamplesPreTestCasePrompt: "Be strict.",
		FinalPrompt:                   "Answer with JSON.",
	}
	examples := []FewshotExample[quote, rating]{
		{Data: quote{ID: "e1"}, Target: rating{Materiality: 3}, Explanation: "secret explanation"},
	}

	rendered, err := Render(prompt, examples, quote{ID: "q1", Text: "revenue up"})
	require.NoError(t, err)

	assert.Equal(t, "You rate takeaways.", rendered.System)

	user := rendered.User
	order := []string{
		"# Task:", "Rate the materiality.",
		"# Examples:", "<examples>", "<example>", `"id": "e1"`, "</example>", "</examples>",
		"# Additional Instructions:", "Be strict.",
		"# Test Case:", "<test-case>", `"id": "q1"`, "</test-case>",
		"# Final Instructions:", "Answer with JSON.",
	}
	pos := 0
	for _, part := range order {
		idx := strings.Index(user[pos:], part)
		require.GreaterOrEqual(t, idx, 0, "missing %q after offset %d", part, pos)
		pos += idx + len(part)
	}

	assert.NotContains(t, user, "secret explanation")
	assert.NotContains(t, user, "materialityRating")
}

func TestRenderIsDeterministic(t *testing.T) {
	prompt := PromptTemplate{PreExamplesPrompt: "task"}
	examples := []FewshotExample[quote, rating]{{Data: quote{ID: "a"}}, {Data: quote{ID: "b"}}}

	first, err := Render(prompt, examples, quote{ID: "x"})
	require.NoError(t, err)
	second, err := Render(prompt, examples, quote{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, strings.Count(first.User, "<example>"))
}

func TestRenderMarshalError(t *testing.T) {
	_, err := Render(PromptTemplate{}, []FewshotExample[any, rating]{{Data: make(chan int)}}, any("x"))
	require.Error(t, err)

	_, err = Render[any, rating](PromptTemplate{}, nil, func() {})
	require.Error(t, err)
}
