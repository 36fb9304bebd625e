package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// BridgeConfig captures runtime settings for the image tools bridge.
type BridgeConfig struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"`
	GeminiBaseURL    string        `mapstructure:"gemini_base_url"`
	FreepikAPIKey    string        `mapstructure:"freepik_api_key"`
	FreepikBaseURL   string        `mapstructure:"freepik_base_url"`
	UploadURL        string        `mapstructure:"upload_url"`
	FallbackUpload   string        `mapstructure:"fallback_upload_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	OutputDir        string        `mapstructure:"output_dir"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// LoadBridge loads bridge configuration from defaults, files, and env vars.
func LoadBridge() (BridgeConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("BRIDGE")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("freepik_api_key", "")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("freepik_base_url", "https://api.freepik.com")
	v.SetDefault("upload_url", "https://uguu.se/upload")
	v.SetDefault("fallback_upload_url", "https://0x0.st")
	v.SetDefault("request_timeout", "120s")
	v.SetDefault("output_dir", "batch_icons")
	// 0 means unbounded fan-out, the historical behavior.
	v.SetDefault("batch_concurrency", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return BridgeConfig{}, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg BridgeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return BridgeConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
