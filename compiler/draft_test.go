package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/tastelever/llm"
	"github.com/teilomillet/tastelever/utils"
)

func newTestDrafter(service ClassificationService, sampleSize int) *Drafter[quote, rating] {
	return NewDrafter(NewSchema[quote, rating](), service, sampleSize, utils.NewNopLogger())
}

func TestDraftFromScratch(t *testing.T) {
	service := &stubClassifier{resp: &llm.StructuredResponse{
		Object: []byte(`{"systemPrompt":"s","preExamplesPrompt":"p","postExamplesPreTestCasePrompt":"q","finalPrompt":"f"}`),
	}}

	sample := make([]DataPoint[quote, rating], 12)
	for i := range sample {
		sample[i] = point(string(rune('a'+i)), 1+i%3)
	}

	tmpl, err := newTestDrafter(service, 10).Draft(context.Background(), nil, sample)
	require.NoError(t, err)
	assert.Equal(t, PromptTemplate{SystemPrompt: "s", PreExamplesPrompt: "p", PostExamplesPreTestCasePrompt: "q", FinalPrompt: "f"}, tmpl)

	req := service.req
	require.NotNil(t, req)
	assert.Equal(t, templateSchemaName, req.SchemaName)
	assert.False(t, req.Logprobs)
	assert.Same(t, templateSchema, req.Schema)

	assert.Contains(t, req.User, "<input-schema>")
	assert.Contains(t, req.User, `"text"`)
	assert.Contains(t, req.User, "<target-schema>")
	assert.Contains(t, req.User, `"materialityRating"`)
	assert.Contains(t, req.User, "<prompt-schema>")
	assert.Contains(t, req.User, `"postExamplesPreTestCasePrompt"`)
	assert.Contains(t, req.User, `"id": "j"`)
	assert.NotContains(t, req.User, `"id": "k"`, "sample is capped")
	assert.NotContains(t, req.User, "<initial-prompt>")
}

func TestDraftRevision(t *testing.T) {
	service := &stubClassifier{resp: &llm.StructuredResponse{
		Object: []byte("```json\n{\"systemPrompt\":\"s2\",\"preExamplesPrompt\":\"p2\",\"postExamplesPreTestCasePrompt\":\"\",\"finalPrompt\":\"f2\",}\n```"),
	}}
	prior := &Bundle[quote, rating]{
		Prompt:   PromptTemplate{SystemPrompt: "old system"},
		Examples: []FewshotExample[quote, rating]{{Data: quote{ID: "kept"}, Explanation: "why"}},
	}

	tmpl, err := newTestDrafter(service, 10).Draft(context.Background(), prior, []DataPoint[quote, rating]{point("x", 2)})
	require.NoError(t, err)
	assert.Equal(t, "s2", tmpl.SystemPrompt)
	assert.Equal(t, "f2", tmpl.FinalPrompt)

	user := service.req.User
	assert.Contains(t, user, "<initial-prompt>")
	assert.Contains(t, user, "old system")
	assert.Contains(t, user, "as little as possible")
	assert.Contains(t, user, `"explanation": "why"`)
	assert.Less(t, strings.Index(user, "<initial-prompt>"), strings.LastIndex(user, "<examples>"))
}

func TestDraftErrors(t *testing.T) {
	_, err := newTestDrafter(&stubClassifier{err: errors.New("down")}, 10).Draft(context.Background(), nil, nil)
	assert.True(t, IsKind(err, KindExternalService))

	_, err = newTestDrafter(&stubClassifier{resp: &llm.StructuredResponse{Object: []byte(`{"systemPrompt":42}`)}}, 10).
		Draft(context.Background(), nil, nil)
	assert.True(t, IsKind(err, KindValidation))
}
