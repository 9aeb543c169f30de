package archlens

import (
	"os"
	"strconv"
	"time"
)

// Defaults mirror the backend's published limits.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultRequestTimeout = 10 * time.Second
	DefaultPageSize       = 30
	MaxPageSize           = 100
	DefaultSearchDebounce = 500 * time.Millisecond

	// Freshness windows per data source. Cached data older than its
	// window is served stale while a background refetch runs.
	DefaultCategoriesFreshness = 5 * time.Minute
	DefaultPackagesFreshness   = 2 * time.Minute
	DefaultSearchFreshness     = time.Minute
)

// Config holds process-wide client configuration. It is built once at
// startup and read-only thereafter.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	PageSize       int
	MaxPageSize    int
	SearchDebounce time.Duration

	// RateLimit caps outgoing requests per second. Zero disables the
	// limiter.
	RateLimit float64

	CategoriesFreshness time.Duration
	PackagesFreshness   time.Duration
	SearchFreshness     time.Duration
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		RequestTimeout:      DefaultRequestTimeout,
		PageSize:            DefaultPageSize,
		MaxPageSize:         MaxPageSize,
		SearchDebounce:      DefaultSearchDebounce,
		CategoriesFreshness: DefaultCategoriesFreshness,
		PackagesFreshness:   DefaultPackagesFreshness,
		SearchFreshness:     DefaultSearchFreshness,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by environment variables:
// ARCHLENS_API_URL, ARCHLENS_TIMEOUT, ARCHLENS_PAGE_SIZE,
// ARCHLENS_DEBOUNCE and ARCHLENS_RATE_LIMIT. Durations accept
// time.ParseDuration syntax. Invalid values are ignored in favor of the
// defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ARCHLENS_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ARCHLENS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ARCHLENS_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > cfg.MaxPageSize {
				n = cfg.MaxPageSize
			}
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("ARCHLENS_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.SearchDebounce = d
		}
	}
	if v := os.Getenv("ARCHLENS_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RateLimit = f
		}
	}
	return cfg
}

// Freshness returns the freshness window for a query key's data source.
func (c Config) Freshness(key QueryKey) time.Duration {
	switch key.Op {
	case OpCategories:
		return c.CategoriesFreshness
	case OpSearch:
		return c.SearchFreshness
	default:
		return c.PackagesFreshness
	}
}
