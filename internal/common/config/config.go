// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Generation GenerationConfig        `mapstructure:"generation"`
	Notifier   NotifierConfig          `mapstructure:"notifier"`
	Storage    StorageConfig           `mapstructure:"storage"`
	Export     ExportConfig            `mapstructure:"export"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	Tracing    TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // milliseconds
}

// GenerationConfig selects and configures the plan generation backend.
type GenerationConfig struct {
	Provider string         `mapstructure:"provider"` // deepseek | gemini
	Timeout  int            `mapstructure:"timeout"`  // milliseconds
	DeepSeek DeepSeekConfig `mapstructure:"deepseek"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
}

type DeepSeekConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // optional, tests and proxies
}

// NotifierConfig holds the lead notification channel settings.
type NotifierConfig struct {
	Channel string       `mapstructure:"channel"` // feishu | ses | sns | none
	Timeout int          `mapstructure:"timeout"` // milliseconds
	Feishu  FeishuConfig `mapstructure:"feishu"`
	AWS     AWSConfig    `mapstructure:"aws"`
}

type FeishuConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	RelayURL   string `mapstructure:"relay_url"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
	SNS struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type StorageConfig struct {
	Driver    string      `mapstructure:"driver"` // memory | redis
	KeyPrefix string      `mapstructure:"key_prefix"`
	Redis     RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExportConfig configures the headless browser used for PDF capture.
type ExportConfig struct {
	ChromeBin  string `mapstructure:"chrome_bin"`
	ControlURL string `mapstructure:"control_url"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // cap on engine retries; 0 disables them
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// WorkflowEnabled reports whether Zeebe workers should be registered.
func (c *Config) WorkflowEnabled() bool {
	return c.Camunda.BrokerAddress != ""
}

// GenerationTimeout is the per-call budget for the plan generation backend.
func (c *Config) GenerationTimeout() time.Duration {
	return GetDuration(c.Generation.Timeout)
}
