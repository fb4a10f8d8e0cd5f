package noop

import "context"

// Completer answers every prompt with an empty order book. Used when no
// backend is configured and in tests: it is valid extraction-stage output
// and harmless reasoning-stage output.
type Completer struct{}

func NewCompleter() *Completer { return &Completer{} }

func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	return `{"orders":[]}`, nil
}
