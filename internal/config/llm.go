package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/llm"
)

// providerEnv lists the conventional environment variable each provider's SDK
// documents, consulted when no key is configured.
var providerEnv = map[string]string{
	llm.ProviderGemini:    "GEMINI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
}

var providerKey = map[string]string{
	llm.ProviderGemini:    KeyGeminiAPIKey,
	llm.ProviderAnthropic: KeyAnthropicAPIKey,
	llm.ProviderOpenAI:    KeyOpenAIAPIKey,
}

// LoadLLMConfig builds the AI provider configuration. It follows this precedence:
// 1. Viper configuration (config file or CLAIMDESK_ env vars)
// 2. The provider's own environment variable (GEMINI_API_KEY and friends)
// 3. Default values
//
// A missing API key is not an error here; the caller decides whether to run
// with a degraded gateway.
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	cfg := llm.Config{
		Provider:    strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider))),
		Model:       v.GetString(KeyLLMModel),
		Temperature: v.GetFloat64(KeyLLMTemperature),
		MaxTokens:   v.GetInt(KeyLLMMaxTokens),
		RateLimit:   v.GetInt(KeyLLMRateLimit),
		CacheTTL:    v.GetDuration(KeyLLMCacheTTL),
		Timeout:     v.GetDuration(KeyLLMTimeout),
		UseADC:      v.GetBool(KeyGeminiUseADC),
	}
	if cfg.Provider == "" {
		cfg.Provider = llm.ProviderGemini
	}

	if key, ok := providerKey[cfg.Provider]; ok {
		cfg.APIKey = v.GetString(key)
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv(providerEnv[cfg.Provider])
		}
	}

	if err := validateLLMConfig(cfg); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

func validateLLMConfig(cfg llm.Config) error {
	switch cfg.Provider {
	case llm.ProviderGemini, llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderMock:
	default:
		return fmt.Errorf("%w: unknown llm.provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be between 0 and 2", common.ErrInvalidConfig)
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("%w: llm.max_tokens cannot be negative", common.ErrInvalidConfig)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%w: llm.rate_limit cannot be negative", common.ErrInvalidConfig)
	}
	if cfg.CacheTTL < 0 || cfg.Timeout < 0 {
		return fmt.Errorf("%w: llm durations cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// HasCredentials reports whether cfg can authenticate with its provider.
func HasCredentials(cfg llm.Config) bool {
	switch cfg.Provider {
	case llm.ProviderMock:
		return true
	case llm.ProviderGemini:
		return cfg.APIKey != "" || cfg.UseADC
	default:
		return cfg.APIKey != ""
	}
}

// StorageBackend returns the configured claim store backend.
func StorageBackend(v *viper.Viper) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(v.GetString(KeyStorageBackend)))
	switch backend {
	case BackendMemory, BackendSQLite:
		return backend, nil
	case "":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("%w: unknown storage.backend %q", common.ErrInvalidConfig, backend)
	}
}
