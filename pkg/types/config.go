package types

import "time"

// HTTPConfig groups the transport settings shared by every backend
// client.
type HTTPConfig struct {
	// Timeout bounds a whole request, from dial to body close.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// UserAgent is sent on every request. When empty it is derived
	// from the binary version and the configured contact email.
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// BreakerConfig controls the per-backend circuit breaker.
type BreakerConfig struct {
	// Enabled turns the breaker on. Disabled breakers pass every
	// request through.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MaxFailures is the consecutive-failure count that opens the
	// breaker.
	MaxFailures uint32 `yaml:"max_failures" json:"max_failures"`

	// Cooldown is how long an open breaker waits before probing the
	// backend again.
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown"`
}

// Config carries everything the aggregator needs to construct its
// backends.
type Config struct {
	HTTPConfig `yaml:",inline"`

	// Email activates the polite pools of OpenAlex and CrossRef and
	// is embedded in the user agent.
	Email string `yaml:"email" json:"email"`

	// SemanticScholarAPIKey raises the Semantic Scholar rate limit
	// when present.
	SemanticScholarAPIKey string `yaml:"semantic_scholar_api_key" json:"-"`

	// ArxivDelay is the politeness pause between consecutive arXiv
	// requests.
	ArxivDelay time.Duration `yaml:"arxiv_delay" json:"arxiv_delay"`

	// Breaker configures the per-backend circuit breakers.
	Breaker BreakerConfig `yaml:"breaker" json:"breaker"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewDefaultConfig returns the configuration used when nothing is
// overridden.
func NewDefaultConfig() Config {
	return Config{
		HTTPConfig: HTTPConfig{
			Timeout:        30 * time.Second,
			ConnectTimeout: 5 * time.Second,
		},
		ArxivDelay: 3 * time.Second,
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		},
		LogLevel: "info",
	}
}
