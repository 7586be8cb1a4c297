// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"

	ChannelFeishu = "feishu"
	ChannelSES    = "ses"
	ChannelSNS    = "sns"
	ChannelNone   = "none"

	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Load reads configs/config.yaml, merges config.{APP_ENVIRONMENT}.yaml and
// applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets and endpoints from well-known env vars.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Generation.DeepSeek.APIKey, "DEEPSEEK_API_KEY")
	setIfEmpty(&cfg.Generation.Gemini.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&cfg.Generation.Gemini.APIKey, "GOOGLE_API_KEY")
	setIfEmpty(&cfg.Notifier.Feishu.WebhookURL, "FEISHU_WEBHOOK_URL")
	setIfEmpty(&cfg.Notifier.Feishu.RelayURL, "FEISHU_RELAY_URL")
	setIfEmpty(&cfg.Notifier.AWS.Region, "AWS_REGION")
	setIfEmpty(&cfg.Storage.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Storage.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
	setIfEmpty(&cfg.Tracing.JaegerEndpoint, "JAEGER_ENDPOINT")
	setIfEmpty(&cfg.Export.ChromeBin, "CHROME_BIN")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "unipath-planner"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// generation runs inside the request
		cfg.HTTP.WriteTimeout = 150000
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderDeepSeek
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 120000
	}
	if cfg.Generation.DeepSeek.BaseURL == "" {
		cfg.Generation.DeepSeek.BaseURL = "https://api.deepseek.com"
	}
	if cfg.Generation.DeepSeek.Model == "" {
		cfg.Generation.DeepSeek.Model = "deepseek-chat"
	}
	if cfg.Generation.DeepSeek.Temperature == 0 {
		cfg.Generation.DeepSeek.Temperature = 0.7
	}
	if cfg.Generation.Gemini.Model == "" {
		cfg.Generation.Gemini.Model = "gemini-2.5-flash"
	}

	if cfg.Notifier.Channel == "" {
		cfg.Notifier.Channel = ChannelFeishu
	}
	if cfg.Notifier.Timeout == 0 {
		cfg.Notifier.Timeout = 10000
	}
	if cfg.Notifier.AWS.Region == "" {
		cfg.Notifier.AWS.Region = "ap-east-1"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "unipath_plan_"
	}

	if cfg.Export.Timeout == 0 {
		cfg.Export.Timeout = 60000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 150000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig rejects unknown enumerations. A missing generation key is
// not a load error; it surfaces when a plan is requested.
func validateConfig(cfg *Config) error {
	switch cfg.Generation.Provider {
	case ProviderDeepSeek, ProviderGemini:
	default:
		return fmt.Errorf("generation.provider must be %q or %q, got %q", ProviderDeepSeek, ProviderGemini, cfg.Generation.Provider)
	}

	switch cfg.Notifier.Channel {
	case ChannelFeishu, ChannelNone:
	case ChannelSES:
		if cfg.Notifier.AWS.SES.FromEmail == "" || len(cfg.Notifier.AWS.SES.To) == 0 {
			return fmt.Errorf("notifier.aws.ses.from_email and notifier.aws.ses.to are required for channel ses")
		}
	case ChannelSNS:
		if cfg.Notifier.AWS.SNS.TopicARN == "" {
			return fmt.Errorf("notifier.aws.sns.topic_arn is required for channel sns")
		}
	default:
		return fmt.Errorf("notifier.channel %q is not supported", cfg.Notifier.Channel)
	}

	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for driver redis")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       150000,
	}
}
