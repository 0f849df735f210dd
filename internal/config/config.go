// Package config provides configuration loading, validation, and defaults for
// the facto journal bot and the logta message logger bot. Values come from
// built-in defaults, an optional YAML file, a .env file and the process
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every error returned while loading configuration.
var ErrConfiguration = errors.New("configuration error")

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and platform limits.
type TelegramConfig struct {
	Token            string `mapstructure:"token"              validate:"required"`
	MaxMessageLength int    `mapstructure:"max_message_length" validate:"min=64,max=4096"`
	Workers          int    `mapstructure:"workers"            validate:"min=1,max=64"`
}

// AIConfig configures the language-model client.
type AIConfig struct {
	Backend        string        `mapstructure:"backend"         validate:"required,oneof=openai gemini"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"        validate:"omitempty,url"`
	Model          string        `mapstructure:"model"           validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout"         validate:"min=1s,max=10m"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"min=1s,ltefield=Timeout"`
	MaxRetries     int           `mapstructure:"max_retries"     validate:"min=0,max=10"`
}

// Enabled reports whether an API key was configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// DatabaseConfig configures the document store. An empty URI selects the
// in-memory store where the bot allows it.
type DatabaseConfig struct {
	URI              string        `mapstructure:"uri"`
	Name             string        `mapstructure:"name"              validate:"required"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=1s,max=5m"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is non-empty.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// TaskConfig defines a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// FactoMessages holds the user facing texts of the journal bot.
type FactoMessages struct {
	Usage           string `mapstructure:"usage"            validate:"required"`
	TopicOnly       string `mapstructure:"topic_only"       validate:"required"`
	NoConversation  string `mapstructure:"no_conversation"  validate:"required"`
	Processing      string `mapstructure:"processing"       validate:"required"`
	TopicPermission string `mapstructure:"topic_permission" validate:"required"`
	DeleteFailed    string `mapstructure:"delete_failed"    validate:"required"`
	AIError         string `mapstructure:"ai_error"         validate:"required"`
	Finalize        string `mapstructure:"finalize"         validate:"required"`
}

// LogtaMessages holds the user facing texts of the logger bot.
type LogtaMessages struct {
	TopicUsage     string `mapstructure:"topic_usage"     validate:"required"`
	TopicFailed    string `mapstructure:"topic_failed"    validate:"required"`
	TopicOnly      string `mapstructure:"topic_only"      validate:"required"`
	StatsFailed    string `mapstructure:"stats_failed"    validate:"required"`
	HistoryEmpty   string `mapstructure:"history_empty"   validate:"required"`
	HistoryFailed  string `mapstructure:"history_failed"  validate:"required"`
	PrivateChat    string `mapstructure:"private_chat"    validate:"required"`
	UnknownChannel string `mapstructure:"unknown_channel" validate:"required"`
}

// FactoConfig is the complete configuration of the journal bot.
type FactoConfig struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  FactoMessages   `mapstructure:"messages"`
}

// LogtaConfig is the complete configuration of the logger bot.
type LogtaConfig struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	OwnerID   int64           `mapstructure:"owner_id" validate:"required,gt=0"`
	AI        AIConfig        `mapstructure:"ai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  LogtaMessages   `mapstructure:"messages"`
}
