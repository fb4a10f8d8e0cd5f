package interfaces

import (
	"context"

	"llm-portfolio-trader/internal/types"
)

type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, target string) (types.TechnicalAnalysis, error)
}

type SentimentAnalyzer interface {
	Analyze(ctx context.Context, target string) (types.SentimentAnalysis, error)
}
