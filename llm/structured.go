package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/invopop/jsonschema"

	"github.com/teilomillet/tastelever/providers"
)

// StructuredRequest asks for an object conforming to Schema.
type StructuredRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     *jsonschema.Schema
	// Logprobs requests per-token log-probabilities of the generated content.
	Logprobs bool
}

// StructuredResponse carries the generated object and, when the provider
// returned them, the token log-probabilities it was sampled with.
type StructuredResponse struct {
	// Object holds the generated JSON. It is not validated here and may still
	// fail to decode into the caller's type.
	Object   json.RawMessage
	Envelope *Envelope
}

// Envelope is the raw per-choice metadata of a structured response.
type Envelope struct {
	Choices []Choice
}

type Choice struct {
	Index    int
	Logprobs []providers.TokenLogprob
}

// GenerateStructured implements the structured classification service. When the
// provider cannot enforce a response schema, the schema is appended to the user
// prompt and the reply is repaired into JSON on a best-effort basis.
func (c *Client) GenerateStructured(ctx context.Context, req *StructuredRequest) (*StructuredResponse, error) {
	if req == nil {
		return nil, NewLLMError(ErrorTypeInvalidInput, "nil structured request", nil)
	}

	user := req.User
	if req.Schema != nil && !c.Provider.SupportsStructuredResponse() {
		embedded, err := promptWithSchema(user, req.Schema)
		if err != nil {
			c.logger.Warn("Failed to marshal schema", "error", err)
		} else {
			user = embedded
		}
	}
	if req.Logprobs && !c.Provider.SupportsLogprobs() {
		c.logger.Debug("Provider does not return logprobs", "provider", c.Provider.Name())
	}

	resp, err := c.Generate(ctx, &providers.Request{
		SystemPrompt:   req.System,
		Messages:       []providers.Message{{Role: "user", Content: user}},
		ResponseSchema: req.Schema,
		SchemaName:     req.SchemaName,
		Logprobs:       req.Logprobs,
	})
	if err != nil {
		return nil, err
	}

	object, repaired := ExtractJSON(resp.AsText())
	if repaired {
		c.logger.Debug("Repaired structured response", "provider", c.Provider.Name())
	}

	return &StructuredResponse{
		Object:   json.RawMessage(object),
		Envelope: envelopeFrom(resp),
	}, nil
}

func envelopeFrom(resp *providers.Response) *Envelope {
	env := &Envelope{Choices: make([]Choice, 0, len(resp.Logprobs))}
	found := false
	for _, lp := range resp.Logprobs {
		found = found || len(lp.Content) > 0
		env.Choices = append(env.Choices, Choice{Index: lp.Index, Logprobs: lp.Content})
	}
	if !found {
		return nil
	}
	return env
}

func promptWithSchema(prompt string, schema *jsonschema.Schema) (string, error) {
	schemaJSON, err := SchemaJSON(schema)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\n\nPlease provide your response in JSON format according to this schema:\n%s\n\nRespond with the JSON object only.", prompt, schemaJSON), nil
}

// ExtractJSON strips markdown fences and surrounding prose from an LLM reply and
// repairs the remaining JSON when it does not parse. The second result reports
// whether a repair was applied. Unrepairable input is returned cleaned but as is.
func ExtractJSON(response string) (string, bool) {
	cleaned := cleanJSONResponse(response)
	if json.Valid([]byte(cleaned)) {
		return cleaned, false
	}
	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil || !json.Valid([]byte(repaired)) {
		return cleaned, false
	}
	return repaired, true
}

func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "{") {
		return response
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start != -1 && end != -1 && end > start {
		return response[start : end+1]
	}

	return response
}
