package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// IndicatorParams configures one technical indicator computation.
// Which fields matter depends on the indicator kind.
type IndicatorParams struct {
	TimePeriod   int `yaml:"timeperiod"`
	FastPeriod   int `yaml:"fastperiod"`
	SlowPeriod   int `yaml:"slowperiod"`
	SignalPeriod int `yaml:"signalperiod"`
}

type Config struct {
	Name       string   `yaml:"name"`
	Mode       string   `yaml:"mode"`
	QuoteAsset string   `yaml:"quote_asset"`
	Targets    []string `yaml:"targets"`

	Schedule struct {
		Times []string `yaml:"times"`
	} `yaml:"schedule"`

	Analysis struct {
		Policy string `yaml:"policy"` // fail_fast or best_effort
	} `yaml:"analysis"`

	Technical struct {
		Data struct {
			Interval string `yaml:"interval"`
			Lookback int    `yaml:"lookback"`
		} `yaml:"data"`
		Indicators map[string]IndicatorParams `yaml:"indicators"`
		Derivative struct {
			Interval   string   `yaml:"interval"`
			Lookback   int      `yaml:"lookback"`
			Indicators []string `yaml:"indicators"`
		} `yaml:"derivative"`
		BitcoinDominance struct {
			Days int `yaml:"days"`
		} `yaml:"bitcoin_dominance"`
		LLM struct {
			Model string `yaml:"model"`
		} `yaml:"llm"`
	} `yaml:"technical_analysis"`

	Sentiment struct {
		News struct {
			Days  int `yaml:"days"`
			Limit int `yaml:"limit"`
		} `yaml:"news"`
		Headlines struct {
			Enabled bool `yaml:"enabled"`
			Limit   int  `yaml:"limit"`
		} `yaml:"headlines"`
		LLM struct {
			Model string `yaml:"model"`
		} `yaml:"llm"`
	} `yaml:"sentiment_analysis"`

	Management struct {
		Model  string `yaml:"model"`
		Parser string `yaml:"parser"`
	} `yaml:"management"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	Exchange struct {
		BaseURL   string `yaml:"base_url"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"exchange"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Targets) == 0 {
		return errors.New("targets cannot be empty")
	}
	if c.Analysis.Policy != "fail_fast" && c.Analysis.Policy != "best_effort" {
		return fmt.Errorf("analysis.policy must be 'fail_fast' or 'best_effort', got '%s'", c.Analysis.Policy)
	}
	for _, ts := range c.Schedule.Times {
		if _, err := time.Parse("15:04", ts); err != nil {
			return fmt.Errorf("invalid schedule time '%s': want HH:MM", ts)
		}
	}
	switch c.Technical.Data.Interval {
	case "1h", "4h", "1d":
	default:
		return fmt.Errorf("technical_analysis.data.interval must be 1h, 4h or 1d, got '%s'", c.Technical.Data.Interval)
	}
	if c.Management.Model == "" || c.Management.Parser == "" {
		return errors.New("management.model and management.parser are required")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.QuoteAsset == "" {
		c.QuoteAsset = "USDT"
	}
	if len(c.Schedule.Times) == 0 {
		c.Schedule.Times = []string{"00:00", "04:00", "08:00", "12:00", "16:00", "20:00"}
	}
	if c.Analysis.Policy == "" {
		c.Analysis.Policy = "fail_fast"
	}
	if c.Technical.Data.Interval == "" {
		c.Technical.Data.Interval = "4h"
	}
	if c.Technical.Data.Lookback == 0 {
		c.Technical.Data.Lookback = 200
	}
	if c.Technical.BitcoinDominance.Days == 0 {
		c.Technical.BitcoinDominance.Days = 30
	}
	if c.Sentiment.News.Days == 0 {
		c.Sentiment.News.Days = 7
	}
	if c.Sentiment.News.Limit == 0 {
		c.Sentiment.News.Limit = 50
	}
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = "https://api.binance.com"
	}
	if c.Exchange.TimeoutMS == 0 {
		c.Exchange.TimeoutMS = 15000
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
