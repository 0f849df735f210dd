package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// factoEnv maps configuration keys to the environment variables that can
// set them. When several variables are listed the first non-empty one wins.
var factoEnv = map[string][]string{
	"telegram.token": {"TEST_FACTO_TOKEN", "FACTO_TOKEN"},
	"ai.api_key":     {"DEEPSEEK_API_KEY"},
	"ai.base_url":    {"OPENAI_BASE_URL"},
	"ai.model":       {"MODEL_NAME"},
	"database.uri":   {"MONGODB_URI"},
	"database.name":  {"MONGODB_DATABASE"},
}

var logtaEnv = map[string][]string{
	"telegram.token": {"LOGTA_TOKEN"},
	"owner_id":       {"OWNER_ID"},
	"ai.api_key":     {"OPENAI_API_KEY"},
	"ai.base_url":    {"OPENAI_BASE_URL"},
	"ai.model":       {"LOGTA_MODEL_NAME"},
	"database.uri":   {"MONGODB_URI"},
	"database.name":  {"MONGODB_DATABASE"},
}

var sharedEnv = map[string][]string{
	"logger.level":                {"LOG_LEVEL"},
	"logger.json":                 {"LOG_JSON"},
	"telegram.max_message_length": {"TELEGRAM_MAX_MESSAGE_LENGTH"},
	"telegram.workers":            {"TELEGRAM_WORKERS"},
	"ai.backend":                  {"AI_BACKEND"},
	"ai.timeout":                  {"AI_TIMEOUT"},
	"ai.connect_timeout":          {"AI_CONNECT_TIMEOUT"},
	"ai.max_retries":              {"AI_MAX_RETRIES"},
	"database.operation_timeout":  {"MONGODB_OPERATION_TIMEOUT"},
	"metrics.addr":                {"METRICS_ADDR"},
}

// fieldEnv names the variable reported when a validated field is missing.
var fieldEnv = map[string]string{
	"FactoConfig.Telegram.Token": "FACTO_TOKEN",
	"FactoConfig.AI.APIKey":      "DEEPSEEK_API_KEY",
	"LogtaConfig.Telegram.Token": "LOGTA_TOKEN",
	"LogtaConfig.OwnerID":        "OWNER_ID",
	"LogtaConfig.Database.URI":   "MONGODB_URI",
}

// LoadFacto loads the journal bot configuration. configPath may point to a
// missing file, in which case only defaults and the environment are used.
func LoadFacto(configPath string) (*FactoConfig, error) {
	v, err := newViper(configPath, factoEnv)
	if err != nil {
		return nil, err
	}
	setSharedDefaults(v)
	v.SetDefault("ai.base_url", DefaultFactoBaseURL)
	v.SetDefault("ai.model", DefaultFactoModel)
	v.SetDefault("database.name", DefaultFactoDatabase)
	setMessageDefaults(v, "messages", map[string]string{
		"usage":            DefaultFactoMessages.Usage,
		"topic_only":       DefaultFactoMessages.TopicOnly,
		"no_conversation":  DefaultFactoMessages.NoConversation,
		"processing":       DefaultFactoMessages.Processing,
		"topic_permission": DefaultFactoMessages.TopicPermission,
		"delete_failed":    DefaultFactoMessages.DeleteFailed,
		"ai_error":         DefaultFactoMessages.AIError,
		"finalize":         DefaultFactoMessages.Finalize,
	})

	cfg := &FactoConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	// The journal bot cannot work without a model; the logger bot can.
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("%w: DEEPSEEK_API_KEY environment variable is required", ErrConfiguration)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded",
		"bot", "facto",
		"ai_backend", cfg.AI.Backend,
		"ai_model", cfg.AI.Model,
		"persistence", cfg.Database.URI != "")
	return cfg, nil
}

// LoadLogta loads the logger bot configuration.
func LoadLogta(configPath string) (*LogtaConfig, error) {
	v, err := newViper(configPath, logtaEnv)
	if err != nil {
		return nil, err
	}
	setSharedDefaults(v)
	v.SetDefault("ai.base_url", DefaultLogtaBaseURL)
	v.SetDefault("ai.model", DefaultLogtaModel)
	v.SetDefault("database.name", DefaultLogtaDatabase)
	setMessageDefaults(v, "messages", map[string]string{
		"topic_usage":     DefaultLogtaMessages.TopicUsage,
		"topic_failed":    DefaultLogtaMessages.TopicFailed,
		"topic_only":      DefaultLogtaMessages.TopicOnly,
		"stats_failed":    DefaultLogtaMessages.StatsFailed,
		"history_empty":   DefaultLogtaMessages.HistoryEmpty,
		"history_failed":  DefaultLogtaMessages.HistoryFailed,
		"private_chat":    DefaultLogtaMessages.PrivateChat,
		"unknown_channel": DefaultLogtaMessages.UnknownChannel,
	})

	cfg := &LogtaConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if cfg.Database.URI == "" {
		return nil, fmt.Errorf("%w: MONGODB_URI environment variable is required", ErrConfiguration)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded",
		"bot", "logta",
		"ai_enabled", cfg.AI.Enabled(),
		"ai_model", cfg.AI.Model,
		"database", cfg.Database.Name)
	return cfg, nil
}

// newViper builds an isolated viper instance with the .env file applied,
// the optional YAML file read and the environment bound.
func newViper(configPath string, env map[string][]string) (*viper.Viper, error) {
	loadEnvFile(".env")

	v := viper.New()
	for key, names := range sharedEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrConfiguration, key, err)
		}
	}
	for key, names := range env {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrConfiguration, key, err)
		}
	}

	if configPath == "" {
		return v, nil
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			slog.Debug("configuration file not found, using defaults and environment", "path", configPath)
			return v, nil
		}
		return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, configPath, err)
	}
	return v, nil
}

// loadEnvFile applies a .env file without overriding variables that are
// already present in the environment.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

func setSharedDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.max_message_length", DefaultMaxMessageLength)
	v.SetDefault("telegram.workers", DefaultWorkers)

	v.SetDefault("ai.backend", DefaultAIBackend)
	v.SetDefault("ai.timeout", DefaultAITimeout)
	v.SetDefault("ai.connect_timeout", DefaultAIConnectTimeout)
	v.SetDefault("ai.max_retries", DefaultAIMaxRetries)

	v.SetDefault("database.operation_timeout", DefaultStoreOpTimeout)

	v.SetDefault("scheduler.tasks", map[string]any{
		"store_ping":   map[string]any{"enabled": true, "schedule": DefaultStorePingSchedule},
		"stats_report": map[string]any{"enabled": false, "schedule": DefaultStatsSchedule},
	})
}

func setMessageDefaults(v *viper.Viper, prefix string, values map[string]string) {
	for key, value := range values {
		v.SetDefault(prefix+"."+key, value)
	}
}

// validate runs struct validation and rewrites failures into messages that
// name the environment variable to set where one exists.
func validate(cfg any) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if name, ok := fieldEnv[fe.Namespace()]; ok && fe.Tag() == "required" {
			msgs = append(msgs, name+" environment variable is required")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(msgs, "; "))
}
