package interfaces

import "context"

// Cycle runs one full reconcile → analyze → decide → execute pass.
type Cycle interface {
	Run(ctx context.Context) error
}
