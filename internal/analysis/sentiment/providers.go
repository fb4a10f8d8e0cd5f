package sentiment

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// FearGreed is the fear & greed index history, newest first.
type FearGreed struct {
	Date           []string `json:"date"`
	Value          []string `json:"value"`
	Classification []string `json:"classification"`
}

// fetchNewsSentiment pulls the scored news feed for one target. The raw
// JSON body goes into the prompt as-is; the model does the digesting.
func fetchNewsSentiment(ctx context.Context, rest *resty.Client, base string, days, limit int) (string, error) {
	timeFrom := time.Now().UTC().AddDate(0, 0, -days).Format("20060102T1504")

	resp, err := rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":  "NEWS_SENTIMENT",
			"tickers":   "CRYPTO:" + base,
			"time_from": timeFrom,
			"limit":     strconv.Itoa(limit),
			"apikey":    os.Getenv("ALPHAVANTAGE_API_KEY"),
		}).
		Get("https://www.alphavantage.co/query")
	if err != nil {
		return "", fmt.Errorf("news sentiment for %s: %w", base, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("news sentiment for %s: http %d", base, resp.StatusCode())
	}
	return string(resp.Body()), nil
}

// fetchFearAndGreed pulls the market-wide fear & greed index history.
func fetchFearAndGreed(ctx context.Context, rest *resty.Client, days int) (FearGreed, error) {
	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}

	resp, err := rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":  strconv.Itoa(days),
			"format": "json",
		}).
		SetResult(&payload).
		Get("https://api.alternative.me/fng/")
	if err != nil {
		return FearGreed{}, fmt.Errorf("fear and greed index: %w", err)
	}
	if resp.IsError() {
		return FearGreed{}, fmt.Errorf("fear and greed index: http %d", resp.StatusCode())
	}

	out := FearGreed{}
	for _, d := range payload.Data {
		ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		out.Date = append(out.Date, time.Unix(ts, 0).UTC().Format("02-01-2006"))
		out.Value = append(out.Value, d.Value)
		out.Classification = append(out.Classification, d.Classification)
	}
	return out, nil
}
