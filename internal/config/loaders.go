package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/plaid"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/provider"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/server"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/stocks"
)

// DefaultRefreshSchedule refreshes linked balances at the top of every hour.
const DefaultRefreshSchedule = "@hourly"

// LoadPlaidConfig loads Plaid credentials. Precedence:
// 1. Viper configuration (config file or FINAI_PLAID_* env vars)
// 2. Direct environment variables (PLAID_CLIENT_ID, PLAID_SECRET, PLAID_ENV)
// 3. Defaults (sandbox)
func LoadPlaidConfig() (*plaid.Config, error) {
	cfg := plaid.Config{
		ClientID:    firstNonEmpty(viper.GetString("plaid.client_id"), os.Getenv("PLAID_CLIENT_ID")),
		Secret:      firstNonEmpty(viper.GetString("plaid.secret"), os.Getenv("PLAID_SECRET")),
		Environment: firstNonEmpty(viper.GetString("plaid.environment"), os.Getenv("PLAID_ENV"), "sandbox"),
		RedirectURI: viper.GetString("plaid.redirect_uri"),
		ClientName:  viper.GetString("plaid.client_name"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServerConfig loads the HTTP server settings on top of server.DefaultConfig.
func LoadServerConfig() (*server.Config, error) {
	cfg := server.DefaultConfig()

	if v := firstNonEmpty(viper.GetString("server.address"), os.Getenv("PORT")); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			v = ":" + v
		}
		cfg.Address = v
	}
	if origins := viper.GetStringSlice("server.allowed_origins"); len(origins) > 0 {
		cfg.AllowedOrigins = splitList(origins)
	}
	if viper.IsSet("server.rate_limit") {
		cfg.RateLimit = viper.GetInt("server.rate_limit")
	}
	if viper.IsSet("server.max_body_bytes") {
		cfg.MaxBodyBytes = viper.GetInt64("server.max_body_bytes")
	}
	if d := viper.GetDuration("server.read_timeout"); d > 0 {
		cfg.ReadTimeout = d
	}
	if d := viper.GetDuration("server.write_timeout"); d > 0 {
		cfg.WriteTimeout = d
	}
	cfg.TLS = viper.GetBool("server.tls")
	cfg.CertDir = ExpandPath(firstNonEmpty(viper.GetString("server.cert_dir"), DefaultDataDir()+"/certs"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadCacheConfig loads the snapshot cache settings. REDIS_ADDR alone selects
// the redis backend.
func LoadCacheConfig() (*provider.CacheConfig, error) {
	cfg := provider.DefaultCacheConfig()

	cfg.RedisAddr = firstNonEmpty(viper.GetString("redis.addr"), os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = firstNonEmpty(viper.GetString("redis.password"), os.Getenv("REDIS_PASSWORD"))
	cfg.RedisDB = viper.GetInt("redis.db")

	switch backend := viper.GetString("cache.backend"); {
	case backend != "":
		cfg.Backend = strings.ToLower(backend)
	case cfg.RedisAddr != "":
		cfg.Backend = provider.BackendRedis
	}
	if viper.IsSet("cache.ttl") {
		cfg.TTL = cast.ToDuration(viper.Get("cache.ttl"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadStocksConfig loads the market-data settings.
func LoadStocksConfig() (*stocks.Config, error) {
	cfg := stocks.DefaultConfig()

	cfg.APIKey = firstNonEmpty(viper.GetString("stocks.api_key"), os.Getenv("ALPHAVANTAGE_API_KEY"))
	if v := viper.GetString("stocks.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("stocks.news_url"); v != "" {
		cfg.NewsURL = v
	}
	if v := viper.GetString("stocks.chart_url"); v != "" {
		cfg.ChartURL = v
	}
	if d := viper.GetDuration("stocks.timeout"); d > 0 {
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RefreshSchedule returns refresh.schedule or the hourly default.
func RefreshSchedule() string {
	return firstNonEmpty(viper.GetString("refresh.schedule"), DefaultRefreshSchedule)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// splitList accepts both YAML lists and a single comma-separated env value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
