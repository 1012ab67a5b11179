package tastelever

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/tastelever/compiler"
	"github.com/teilomillet/tastelever/providers"
)

type takeaway struct {
	ID       string `json:"id"`
	Takeaway string `json:"takeaway"`
}

type materiality struct {
	Rating int `json:"materialityRating" validate:"min=1,max=3"`
}

func reply(w http.ResponseWriter, content string, logprobs []providers.TokenLogprob) {
	choice := map[string]any{"index": 0, "message": map[string]string{"content": content}}
	if logprobs != nil {
		choice["logprobs"] = map[string]any{"content": logprobs}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{choice}})
}

// newFakeCompletions serves chat completions: template drafts, ratings that
// are correct except for the ids in wrong, and free-text explanations.
func newFakeCompletions(t *testing.T, truth map[string]int, wrong map[string]bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat *struct {
				JSONSchema struct {
					Name string `json:"name"`
				} `json:"json_schema"`
			} `json:"response_format"`
			Logprobs bool `json:"logprobs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		user := body.Messages[len(body.Messages)-1].Content

		switch {
		case body.ResponseFormat == nil:
			reply(w, "The takeaway changes the outlook.", nil)
		case body.ResponseFormat.JSONSchema.Name == "compiled_prompt":
			reply(w, `{"systemPrompt":"Rate takeaways.","preExamplesPrompt":"Rate 1 to 3.","postExamplesPreTestCasePrompt":"","finalPrompt":"JSON only."}`, nil)
		default:
			start := strings.Index(user, "<test-case>\n") + len("<test-case>\n")
			end := strings.Index(user, "\n</test-case>")
			var in takeaway
			require.NoError(t, json.Unmarshal([]byte(user[start:end]), &in))

			label := truth[in.ID]
			if wrong[in.ID] {
				label = label%3 + 1
			}
			assert.True(t, body.Logprobs)
			reply(w, fmt.Sprintf(`{"materialityRating":%d}`, label), []providers.TokenLogprob{
				{Token: `{"`, Logprob: 0},
				{Token: "materialityRating", Logprob: 0},
				{Token: `":`, Logprob: 0},
				{Token: fmt.Sprint(label), Logprob: -0.05},
				{Token: "}", Logprob: 0},
			})
		}
	}))
}

func TestCompileOverHTTP(t *testing.T) {
	var train, test []compiler.DataPoint[takeaway, materiality]
	truth := map[string]int{}
	for i := range 6 {
		id := fmt.Sprintf("train-%d", i)
		truth[id] = 1 + i%3
		train = append(train, compiler.DataPoint[takeaway, materiality]{Data: takeaway{ID: id}, Target: materiality{Rating: truth[id]}})
	}
	for i := range 3 {
		id := fmt.Sprintf("test-%d", i)
		truth[id] = 1 + i%3
		test = append(test, compiler.DataPoint[takeaway, materiality]{Data: takeaway{ID: id}, Target: materiality{Rating: truth[id]}})
	}

	server := newFakeCompletions(t, truth, map[string]bool{"train-4": true})
	defer server.Close()

	cfg := NewConfig()
	ApplyOptions(cfg, SetProvider("openai"), SetAPIKey("sk-test"), SetEndpoint(server.URL), SetLogLevel(LogLevelOff), SetBatchSize(2))
	client, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)

	score := func(m materiality) float64 { return float64(m.Rating) }
	bundle, err := Compile(context.Background(), client, train, test, score, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, "Rate takeaways.", bundle.Prompt.SystemPrompt)
	require.Len(t, bundle.Examples, 1)
	assert.Equal(t, "train-4", bundle.Examples[0].Data.ID)
	assert.Equal(t, truth["train-4"], bundle.Examples[0].Target.Rating)
	assert.Equal(t, "The takeaway changes the outlook.", bundle.Examples[0].Explanation)
}

func TestNewClientFromConfigRejectsInvalidConfig(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetBatchSize(0))
	_, err := NewClientFromConfig(cfg, nil)
	require.Error(t, err)

	cfg = NewConfig()
	ApplyOptions(cfg, SetProvider("unknown-provider"))
	_, err = NewClientFromConfig(cfg, nil)
	require.Error(t, err)
}

func TestNewCompilerRejectsNonConcreteTarget(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetLogLevel(LogLevelOff))
	client, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)

	_, err = NewCompiler[takeaway, any](client, func(any) float64 { return 0 })
	assert.True(t, compiler.IsKind(err, compiler.KindConfiguration))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&materiality{Rating: 2}))
	assert.Error(t, Validate(&materiality{Rating: 4}))
}

func TestBundleJSONSchema(t *testing.T) {
	raw, err := BundleJSONSchema[takeaway, materiality]()
	require.NoError(t, err)

	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc.Properties, "prompt")
	assert.Contains(t, doc.Properties, "examples")
}
