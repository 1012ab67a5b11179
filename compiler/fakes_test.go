package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/tastelever/llm"
	"github.com/teilomillet/tastelever/providers"
)

type quote struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
}

type rating struct {
	Materiality int `json:"materialityRating" validate:"min=1,max=3"`
}

func scoreRating(r rating) float64 {
	return float64(r.Materiality)
}

func point(id string, materiality int) DataPoint[quote, rating] {
	return DataPoint[quote, rating]{
		Data:   quote{ID: id, Text: "quote " + id},
		Target: rating{Materiality: materiality},
	}
}

// testCaseOf recovers the input embedded in a rendered user prompt.
func testCaseOf(user string) (quote, error) {
	start := strings.Index(user, "<test-case>\n")
	end := strings.Index(user, "\n</test-case>")
	if start < 0 || end < start {
		return quote{}, errors.New("no test case in prompt")
	}
	var q quote
	err := json.Unmarshal([]byte(user[start+len("<test-case>\n"):end]), &q)
	return q, err
}

// ratingEnvelope mimics the token stream of {"materialityRating":N}.
func ratingEnvelope(label string, logprob float64) *llm.Envelope {
	return &llm.Envelope{Choices: []llm.Choice{{
		Logprobs: []providers.TokenLogprob{
			{Token: `{"`, Logprob: 0},
			{Token: "materiality", Logprob: 0},
			{Token: "Rating", Logprob: 0},
			{Token: `":`, Logprob: 0},
			{Token: label, Logprob: logprob},
			{Token: "}", Logprob: 0},
		},
	}}}
}

// fakeClassifier answers classification requests with answer(input, user)
// and template drafts with template.
type fakeClassifier struct {
	answer   func(q quote, user string) int
	logprob  float64
	template PromptTemplate
	err      error

	mu       sync.Mutex
	requests []*llm.StructuredRequest
}

func (f *fakeClassifier) GenerateStructured(_ context.Context, req *llm.StructuredRequest) (*llm.StructuredResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if req.SchemaName == templateSchemaName {
		b, _ := json.Marshal(f.template)
		return &llm.StructuredResponse{Object: b}, nil
	}

	q, err := testCaseOf(req.User)
	if err != nil {
		return nil, err
	}
	label := f.answer(q, req.User)
	return &llm.StructuredResponse{
		Object:   json.RawMessage(fmt.Sprintf(`{"materialityRating":%d}`, label)),
		Envelope: ratingEnvelope(fmt.Sprint(label), f.logprob),
	}, nil
}

func (f *fakeClassifier) classifications() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.SchemaName == targetSchemaName {
			n++
		}
	}
	return n
}

type fakeTexts struct {
	err error

	mu      sync.Mutex
	prompts []string
}

func (f *fakeTexts) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	q, err := testCaseOf(prompt)
	if err != nil {
		return "", err
	}
	return "The quote " + q.ID + " reads as routine commentary.", nil
}
