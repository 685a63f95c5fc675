// Package stocks provides symbol search, headline sentiment and chart links.
package stocks

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
)

// Default endpoints.
const (
	DefaultBaseURL  = "https://www.alphavantage.co/query"
	DefaultNewsURL  = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	DefaultChartURL = "https://s.tradingview.com/widgetembed/"
)

// Config holds market-data settings.
type Config struct {
	APIKey  string
	BaseURL string
	// NewsURL is a format string with one %s for the escaped symbol.
	NewsURL  string
	ChartURL string
	Timeout  time.Duration
}

// DefaultConfig returns the public endpoints with a 10s timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		NewsURL:  DefaultNewsURL,
		ChartURL: DefaultChartURL,
		Timeout:  10 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: stocks.api_key (or ALPHAVANTAGE_API_KEY)", common.ErrMissingConfig)
	}
	for name, raw := range map[string]string{"stocks.base_url": c.BaseURL, "stocks.chart_url": c.ChartURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q is not an absolute URL", common.ErrInvalidConfig, name, raw)
		}
	}
	if strings.Count(c.NewsURL, "%s") != 1 {
		return fmt.Errorf("%w: stocks.news_url must contain exactly one %%s", common.ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: stocks timeout must be positive", common.ErrInvalidConfig)
	}
	return nil
}
