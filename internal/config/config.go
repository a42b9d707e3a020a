package config

import (
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyLogLevel  = "logging.level"
	KeyLogFormat = "logging.format"

	KeyStorageBackend = "storage.backend"

	KeyLLMProvider     = "llm.provider"
	KeyLLMModel        = "llm.model"
	KeyLLMTemperature  = "llm.temperature"
	KeyLLMMaxTokens    = "llm.max_tokens"
	KeyLLMRateLimit    = "llm.rate_limit"
	KeyLLMCacheTTL     = "llm.cache_ttl"
	KeyLLMTimeout      = "llm.timeout"
	KeyGeminiAPIKey    = "llm.gemini_api_key"
	KeyGeminiUseADC    = "llm.gemini_use_adc"
	KeyAnthropicAPIKey = "llm.anthropic_api_key"
	KeyOpenAIAPIKey    = "llm.openai_api_key"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// EnvPrefix is prepended to every environment override, e.g. CLAIMDESK_LLM_PROVIDER.
const EnvPrefix = "CLAIMDESK"

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetDefault(KeyStorageBackend, BackendMemory)

	v.SetDefault(KeyLLMProvider, "gemini")
	v.SetDefault(KeyLLMModel, "")
	v.SetDefault(KeyLLMTemperature, 0.2)
	v.SetDefault(KeyLLMMaxTokens, 1024)
	v.SetDefault(KeyLLMRateLimit, 60)
	v.SetDefault(KeyLLMCacheTTL, 30*time.Minute)
	v.SetDefault(KeyLLMTimeout, 60*time.Second)
	v.SetDefault(KeyGeminiUseADC, false)
}
