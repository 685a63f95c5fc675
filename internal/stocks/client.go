package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/spf13/cast"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/service"
)

// ErrInvalidSymbol is returned for malformed ticker symbols.
var ErrInvalidSymbol = errors.New("invalid symbol")

var symbolRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.:\-]{0,14}$`)

// Match is one symbol search result.
type Match struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Region     string  `json:"region"`
	Currency   string  `json:"currency"`
	MatchScore float64 `json:"matchScore"`
}

// Headline is a news item considered for sentiment.
type Headline struct {
	Published time.Time `json:"published,omitzero"`
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Score     float64   `json:"score"`
}

// Client talks to the market-data and news endpoints.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
	retryOpts  service.RetryOptions
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default().With("component", "stocks"),
		cfg:        cfg,
		retryOpts:  service.DefaultRetryOptions(),
	}, nil
}

// NormalizeSymbol upper-cases and validates a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return s, nil
}

// Search finds symbols matching a company name or ticker fragment.
func (c *Client) Search(ctx context.Context, query string) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidSymbol)
	}

	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", query)
	params.Set("apikey", c.cfg.APIKey)

	body, err := c.get(ctx, c.cfg.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Note         string              `json:"Note"`
		Information  string              `json:"Information"`
		ErrorMessage string              `json:"Error Message"`
		BestMatches  []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	switch {
	case resp.ErrorMessage != "":
		return nil, fmt.Errorf("symbol search: %s", resp.ErrorMessage)
	case resp.Note != "" || resp.Information != "":
		return nil, fmt.Errorf("%w: %s%s", common.ErrRateLimit, resp.Note, resp.Information)
	}

	matches := make([]Match, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		matches = append(matches, Match{
			Symbol:     m["1. symbol"],
			Name:       m["2. name"],
			Type:       m["3. type"],
			Region:     m["4. region"],
			Currency:   m["8. currency"],
			MatchScore: cast.ToFloat64(m["9. matchScore"]),
		})
	}
	return matches, nil
}

// Headlines fetches the RSS headlines for symbol.
func (c *Client) Headlines(ctx context.Context, symbol string) ([]Headline, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, fmt.Sprintf(c.cfg.NewsURL, url.QueryEscape(sym)))
	if err != nil {
		return nil, err
	}
	return parseHeadlines(body)
}

// Sentiment scores the latest headlines for symbol.
func (c *Client) Sentiment(ctx context.Context, symbol string) (*Sentiment, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	headlines, err := c.Headlines(ctx, sym)
	if err != nil {
		return nil, err
	}
	s := Score(sym, headlines)
	c.logger.Debug("Scored headlines", "symbol", sym, "headlines", len(headlines), "score", s.Score)
	return s, nil
}

// ChartURL returns an embeddable chart widget URL for symbol.
func (c *Client) ChartURL(symbol string) (string, error) {
	return ChartURL(c.cfg.ChartURL, symbol)
}

// ChartURL builds a daily chart widget URL under base.
func ChartURL(base, symbol string) (string, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: chart url: %w", common.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("symbol", sym)
	q.Set("interval", "D")
	q.Set("theme", "light")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte
	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("User-Agent", "finai/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrProviderUnavailable, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return common.HTTPStatusError("stocks", resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	}, c.retryOpts)
	return body, err
}

func parseHeadlines(raw []byte) ([]Headline, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	items := doc.FindElements("//channel/item")
	out := make([]Headline, 0, len(items))
	for _, item := range items {
		title := childText(item, "title")
		if title == "" {
			continue
		}
		h := Headline{Title: title, Link: childText(item, "link")}
		if pub := childText(item, "pubDate"); pub != "" {
			if t, err := time.Parse(time.RFC1123Z, pub); err == nil {
				h.Published = t.UTC()
			} else if t, err := time.Parse(time.RFC1123, pub); err == nil {
				h.Published = t.UTC()
			}
		}
		out = append(out, h)
	}
	return out, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
