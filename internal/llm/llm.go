// Package llm maps configured model names onto reasoning backends. The set
// of supported models is closed: an unknown name is a configuration error,
// not a silent fallthrough.
package llm

import (
	"fmt"
	"strings"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/llm/gemini"
	"llm-portfolio-trader/internal/llm/noop"
	"llm-portfolio-trader/internal/llm/openai"
)

// ErrUnsupportedModel is wrapped into the error returned for model names
// outside the supported set.
var ErrUnsupportedModel = fmt.Errorf("unsupported model")

// New returns the Completer for a configured model name.
func New(model string) (interfaces.Completer, error) {
	switch {
	case model == "gpt-4o" || model == "gpt-4o-mini" || model == "o1-2024-12-17":
		return openai.NewCompleter(model), nil
	case model == "deepseek-chat" || model == "deepseek-reasoner":
		return openai.NewDeepSeekCompleter(model), nil
	case strings.HasPrefix(model, "gemini"):
		return gemini.NewCompleter(model), nil
	case model == "noop":
		return noop.NewCompleter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
	}
}
