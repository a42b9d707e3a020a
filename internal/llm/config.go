package llm

import "time"

// Provider names accepted by NewClient.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config holds configuration for a provider client and the gateway around it.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // overrides the provider endpoint, used by tests and proxies
	Temperature float64
	MaxTokens   int
	RateLimit   int // requests per minute
	CacheTTL    time.Duration
	Timeout     time.Duration
	UseADC      bool // Gemini only: use application default credentials instead of an API key
}

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 1024
	defaultTimeout     = 60 * time.Second
)

func (c Config) temperature() float64 {
	if c.Temperature == 0 {
		return defaultTemperature
	}
	return c.Temperature
}

func (c Config) maxTokens() int {
	if c.MaxTokens == 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return defaultTimeout
	}
	return c.Timeout
}
