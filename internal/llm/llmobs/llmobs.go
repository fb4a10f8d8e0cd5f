package llmobs

import (
	"context"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/trace"
)

// observableCompleter wraps a Completer with observability (logging & tracing)
type observableCompleter struct {
	completer interfaces.Completer
	name      string
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware. The name shows up
// in logs and span attributes to tell the pipeline's backends apart.
func Wrap(completer interfaces.Completer, name string) interfaces.Completer {
	return &observableCompleter{completer: completer, name: name}
}

func (oc *observableCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting completion",
		"backend", oc.name,
		"prompt_chars", len(user),
	)

	out, err := oc.completer.Complete(ctx, system, user)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Completion failed", err, "backend", oc.name)
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Completion received",
		"backend", oc.name,
		"response_chars", len(out),
	)
	return out, nil
}
