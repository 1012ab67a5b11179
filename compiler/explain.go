package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teilomillet/tastelever/metrics"
	"github.com/teilomillet/tastelever/utils"
)

// Explainer writes the annotation attached to a new few-shot example.
type Explainer[D, T any] struct {
	service TextService
	logger  utils.Logger
}

func NewExplainer[D, T any](service TextService, logger utils.Logger) *Explainer[D, T] {
	return &Explainer[D, T]{service: service, logger: logger}
}

// Explain replays the prompt bundle would produce for point together with the
// ground truth and asks why the classification likely went wrong.
func (e *Explainer[D, T]) Explain(ctx context.Context, bundle *Bundle[D, T], point DataPoint[D, T]) (string, error) {
	rendered, err := Render(bundle.Prompt, bundle.Examples, point.Data)
	if err != nil {
		return "", newError(KindValidation, "failed to render prompt", err)
	}
	truth, err := json.MarshalIndent(point.Target, "", "  ")
	if err != nil {
		return "", newError(KindValidation, "failed to marshal target", err)
	}

	text, err := e.service.GenerateText(ctx, explanationPrompt(rendered, string(truth)))
	if err != nil {
		return "", newError(KindExternalService, "explanation request failed", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(KindValidation, "empty explanation", nil)
	}

	metrics.Explanations.Inc()
	e.logger.Debug("Explanation generated", "length", len(text))
	return text, nil
}

func explanationPrompt(rendered RenderedPrompt, truth string) string {
	return fmt.Sprintf(`A classifier received the prompt below and answered incorrectly.

<system-prompt>
%s
</system-prompt>

<user-prompt>
%s
</user-prompt>

The correct answer for this test case is:
<ground-truth>
%s
</ground-truth>

In a few sentences, explain why this example was likely misclassified and what about it points to the correct answer. The explanation will be attached to this example when it is shown as a few-shot example in future prompts, so do not refer to the classifier or to this request. Respond with the explanation only.`, rendered.System, rendered.User, truth)
}
