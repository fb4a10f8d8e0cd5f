// Package sentiment produces the per-target sentiment report from the
// scored news feed, the fear & greed index and scraped headlines,
// summarized by a reasoning backend.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

const systemPrompt = `Create a comprehensive sentiment analysis report on the target cryptocurrency using the provided context to plan a trading strategy.

Consider the following sentiment score classification:
- x <= -0.35: Bearish
- -0.35 < x <= -0.15: Somewhat-Bearish
- -0.15 < x < 0.15: Neutral
- 0.15 <= x < 0.35: Somewhat_Bullish
- x >= 0.35: Bullish

Consider the following importance classification:
- x <= 0.1: Not Important
- 0.1 < x <= 0.3: Somewhat Important
- 0.3 < x <= 0.5: Important
- 0.5 < x <= 0.7: Very Important
- x > 0.7: Extremely Important

Ensure the summary highlights key information relevant for day trading decisions.

# Notes
- Prioritize the latest news.
- Report will be generated every 4 hours for a swing trading strategy.`

// assetSlugs maps symbols to the tag slug used by headline sources.
var assetSlugs = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"SOLUSDT": "solana",
	"XRPUSDT": "ripple",
}

type Analyzer struct {
	cfg     *store.Config
	llm     interfaces.Completer
	rest    *resty.Client
	scraper *Scraper
}

var _ interfaces.SentimentAnalyzer = (*Analyzer)(nil)

func New(cfg *store.Config, llm interfaces.Completer) *Analyzer {
	timeout := time.Duration(cfg.Exchange.TimeoutMS) * time.Millisecond
	rest := resty.New()
	rest.SetTimeout(timeout)
	return &Analyzer{
		cfg:     cfg,
		llm:     llm,
		rest:    rest,
		scraper: NewScraper(timeout),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, target string) (types.SentimentAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment.Analyze")
	defer span.End()

	logger.Info(ctx, "Starting sentiment analysis", "target", target)

	base := strings.TrimSuffix(target, a.cfg.QuoteAsset)

	news, err := fetchNewsSentiment(ctx, a.rest, base, a.cfg.Sentiment.News.Days, a.cfg.Sentiment.News.Limit)
	if err != nil {
		return types.SentimentAnalysis{}, err
	}

	fearGreed, err := fetchFearAndGreed(ctx, a.rest, a.cfg.Sentiment.News.Days)
	if err != nil {
		return types.SentimentAnalysis{}, err
	}

	var headlines []Headline
	if a.cfg.Sentiment.Headlines.Enabled {
		headlines = a.scraper.Scrape(ctx, slugFor(target, base), a.cfg.Sentiment.Headlines.Limit)
	}

	prompt := a.buildPrompt(target, news, fearGreed, headlines)

	summary, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return types.SentimentAnalysis{}, fmt.Errorf("sentiment summary for %s: %w", target, err)
	}

	logger.Info(ctx, "Finished sentiment analysis", "target", target)

	return types.SentimentAnalysis{Summary: summary}, nil
}

func (a *Analyzer) buildPrompt(target, news string, fearGreed FearGreed, headlines []Headline) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "DATE: %s\n", time.Now().UTC().Format("02-01-2006"))
	fmt.Fprintf(&sb, "Target Cryptocurrency: %s\n\n", target)

	fmt.Fprintf(&sb, "News Sentiment: %s\n\n", news)
	fmt.Fprintf(&sb, "Fear and Greed Index (dates %v): values %v, classifications %v\n\n",
		fearGreed.Date, fearGreed.Value, fearGreed.Classification)

	if len(headlines) > 0 {
		fmt.Fprintf(&sb, "Recent Headlines:\n%s\n", formatHeadlines(headlines))
	}

	return sb.String()
}

func slugFor(target, base string) string {
	if slug, ok := assetSlugs[target]; ok {
		return slug
	}
	return strings.ToLower(base)
}
