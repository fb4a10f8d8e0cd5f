package interfaces

import "context"

// Completer is one reasoning backend: a system instruction plus a user
// prompt in, free-form text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
