package cycleobs

import (
	"context"
	"time"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/trace"
)

type observableCycle struct {
	cycle interfaces.Cycle
}

var _ interfaces.Cycle = (*observableCycle)(nil)

func Wrap(c interfaces.Cycle) interfaces.Cycle {
	return &observableCycle{
		cycle: c,
	}
}

func (oc *observableCycle) Run(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "cycle.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting trading cycle")

	if err := oc.cycle.Run(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
