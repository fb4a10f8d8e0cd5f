package interfaces

import (
	"context"

	"llm-portfolio-trader/internal/types"
)

// AnalysisStore persists per-cycle analysis summaries.
type AnalysisStore interface {
	Insert(ctx context.Context, row types.AnalysisRow) error
}
