// Package analysis runs the per-cycle report fan-out: for N targets, 2N
// blocking analysis calls run concurrently and are joined back into N
// Reports, index-aligned to the input target list.
package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

// Policy selects how the fan-out treats a failed analysis task.
type Policy string

const (
	// PolicyFailFast aborts the whole fan-out on the first task error;
	// no reports are produced for the cycle.
	PolicyFailFast Policy = "fail_fast"
	// PolicyBestEffort drops targets whose technical or sentiment task
	// failed and returns reports for the rest, still in input order.
	PolicyBestEffort Policy = "best_effort"
)

type Coordinator struct {
	technical interfaces.TechnicalAnalyzer
	sentiment interfaces.SentimentAnalyzer
	policy    Policy
}

func NewCoordinator(technical interfaces.TechnicalAnalyzer, sentiment interfaces.SentimentAnalyzer, policy Policy) *Coordinator {
	return &Coordinator{technical: technical, sentiment: sentiment, policy: policy}
}

// GenerateReports runs both analyses for every target concurrently.
// Pairing is strictly positional: the i-th technical result joins the i-th
// sentiment result regardless of what name either reports.
func (c *Coordinator) GenerateReports(ctx context.Context, targets []string) ([]types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "analysis.GenerateReports")
	defer span.End()

	if len(targets) == 0 {
		return []types.Report{}, nil
	}

	if c.policy == PolicyBestEffort {
		return c.generateBestEffort(ctx, targets)
	}
	return c.generateFailFast(ctx, targets)
}

func (c *Coordinator) generateFailFast(ctx context.Context, targets []string) ([]types.Report, error) {
	techs := make([]types.TechnicalAnalysis, len(targets))
	sents := make([]types.SentimentAnalysis, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			t, err := c.technical.Analyze(ctx, target)
			if err != nil {
				return fmt.Errorf("technical analysis for %s: %w", target, err)
			}
			techs[i] = t
			return nil
		})
		g.Go(func() error {
			s, err := c.sentiment.Analyze(ctx, target)
			if err != nil {
				return fmt.Errorf("sentiment analysis for %s: %w", target, err)
			}
			sents[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reports := make([]types.Report, len(targets))
	for i, target := range targets {
		reports[i] = types.Report{Name: target, Technical: techs[i], Sentiment: sents[i]}
	}
	return reports, nil
}

func (c *Coordinator) generateBestEffort(ctx context.Context, targets []string) ([]types.Report, error) {
	techs := make([]types.TechnicalAnalysis, len(targets))
	sents := make([]types.SentimentAnalysis, len(targets))
	techErrs := make([]error, len(targets))
	sentErrs := make([]error, len(targets))

	// No shared cancellation: a failed target must not stop the others.
	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			techs[i], techErrs[i] = c.technical.Analyze(ctx, target)
			return nil
		})
		g.Go(func() error {
			sents[i], sentErrs[i] = c.sentiment.Analyze(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]types.Report, 0, len(targets))
	for i, target := range targets {
		if techErrs[i] != nil {
			logger.Warn(ctx, "Skipping target for this cycle", "target", target, "stage", "technical", "error", techErrs[i])
			continue
		}
		if sentErrs[i] != nil {
			logger.Warn(ctx, "Skipping target for this cycle", "target", target, "stage", "sentiment", "error", sentErrs[i])
			continue
		}
		reports = append(reports, types.Report{Name: target, Technical: techs[i], Sentiment: sents[i]})
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("all %d targets failed analysis", len(targets))
	}
	return reports, nil
}
