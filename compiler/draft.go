package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teilomillet/tastelever/llm"
	"github.com/teilomillet/tastelever/utils"
)

var templateSchema = llm.SchemaFor[PromptTemplate]()

// Drafter generates a prompt template, or a minimal revision of a prior one.
type Drafter[D, T any] struct {
	schema     *Schema[D, T]
	service    ClassificationService
	sampleSize int
	logger     utils.Logger
}

func NewDrafter[D, T any](schema *Schema[D, T], service ClassificationService, sampleSize int, logger utils.Logger) *Drafter[D, T] {
	if sampleSize < 1 {
		sampleSize = DefaultDraftSampleSize
	}
	return &Drafter[D, T]{schema: schema, service: service, sampleSize: sampleSize, logger: logger}
}

// Draft asks the service for a PromptTemplate. At most sampleSize points of
// sample are shown. A non-nil prior is presented as the template to edit.
func (d *Drafter[D, T]) Draft(ctx context.Context, prior *Bundle[D, T], sample []DataPoint[D, T]) (PromptTemplate, error) {
	if len(sample) > d.sampleSize {
		sample = sample[:d.sampleSize]
	}

	prompt, err := d.prompt(prior, sample)
	if err != nil {
		return PromptTemplate{}, newError(KindValidation, "failed to build draft prompt", err)
	}

	resp, err := d.service.GenerateStructured(ctx, &llm.StructuredRequest{
		User:       prompt,
		SchemaName: templateSchemaName,
		Schema:     templateSchema,
	})
	if err != nil {
		return PromptTemplate{}, newError(KindExternalService, "draft request failed", err)
	}

	// Services other than llm.Client may hand back a fenced or slightly
	// malformed reply.
	object, _ := llm.ExtractJSON(string(resp.Object))
	var tmpl PromptTemplate
	if err := json.Unmarshal([]byte(object), &tmpl); err != nil {
		return PromptTemplate{}, newError(KindValidation, "drafted template is not valid JSON", err)
	}
	if err := llm.Validate(&tmpl); err != nil {
		return PromptTemplate{}, newError(KindValidation, "invalid drafted template", err)
	}

	d.logger.Info("Drafted prompt template", "revision", prior != nil, "sample", len(sample))
	return tmpl, nil
}

func (d *Drafter[D, T]) prompt(prior *Bundle[D, T], sample []DataPoint[D, T]) (string, error) {
	dataSchema, err := llm.SchemaJSON(d.schema.DataSchema())
	if err != nil {
		return "", err
	}
	targetSchema, err := llm.SchemaJSON(d.schema.TargetSchema())
	if err != nil {
		return "", err
	}
	promptSchema, err := llm.SchemaJSON(templateSchema)
	if err != nil {
		return "", err
	}
	examples, err := indentJSON(sample)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Your job is to generate a prompt to classify examples according to a schema. The input schema is this:
<input-schema>
%s
</input-schema>

The target schema is this:
<target-schema>
%s
</target-schema>

Here are some examples that are currently classified poorly by the system:
<examples>
%s
</examples>

Your goal is to generate a prompt consisting of these parts:
<prompt-schema>
%s
</prompt-schema>
`, dataSchema, targetSchema, examples, promptSchema)

	if prior != nil {
		initial, err := indentJSON(prior.Prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, `
Here is an initial prompt. Change it as little as possible, but in a way that improves it:
<initial-prompt>
%s
</initial-prompt>
`, initial)

		if len(prior.Examples) > 0 {
			priorExamples, err := indentJSON(prior.Examples)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, `
The prompt will already include these few-shot examples. Do not repeat them in the prompt:
<examples>
%s
</examples>
`, priorExamples)
		}
	}

	b.WriteString("\nGo!\n")
	return b.String(), nil
}

func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
