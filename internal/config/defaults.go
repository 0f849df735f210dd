package config

import "time"

// Default values shared by both bots.
const (
	DefaultLogLevel          = "info"
	DefaultMaxMessageLength  = 4096 // Telegram's maximum message length
	DefaultWorkers           = 8
	DefaultAIBackend         = "openai"
	DefaultAITimeout         = 120 * time.Second
	DefaultAIConnectTimeout  = 30 * time.Second
	DefaultAIMaxRetries      = 3
	DefaultStoreOpTimeout    = 15 * time.Second
	DefaultStorePingSchedule = "0 */5 * * * *"
	DefaultStatsSchedule     = "0 0 * * * *"
)

// facto defaults
const (
	DefaultFactoBaseURL  = "https://api.deepseek.com"
	DefaultFactoModel    = "deepseek-chat"
	DefaultFactoDatabase = "facto"
)

// logta defaults
const (
	DefaultLogtaBaseURL  = "https://api.openai.com/v1"
	DefaultLogtaModel    = "gpt-4o-mini"
	DefaultLogtaDatabase = "telegram_logs"
)

// DefaultFactoMessages are the journal bot texts.
var DefaultFactoMessages = FactoMessages{
	Usage: "Usage: `/journal <your diary entry>`\n\n" +
		"Supports multi-line entries!\n\n" +
		"Example:\n" +
		"`/journal Today I struggled with time management. " +
		"I realize I need better planning. " +
		"I will start using a daily planner.`",
	TopicOnly:       "This command only works inside a topic.",
	NoConversation:  "No active conversation in this topic.",
	Processing:      "Hi %s! Processing your journal entry...",
	TopicPermission: "Error: I need 'Manage Topics' admin rights.",
	DeleteFailed:    "Error: Could not delete topic. Check permissions.",
	AIError:         "An error occurred while communicating with the AI.",
	Finalize:        "I'm satisfied with the current version. Please finalize it now.",
}

// DefaultLogtaMessages are the logger bot texts.
var DefaultLogtaMessages = LogtaMessages{
	TopicUsage: "Usage: `/topic <your message>`\n\n" +
		"Example: `/topic How do I fix the database connection issue?`",
	TopicFailed:    "Failed to create topic. Make sure the bot has 'Manage Topics' permission.",
	TopicOnly:      "This command only works inside a forum topic.",
	StatsFailed:    "Failed to retrieve statistics.",
	HistoryEmpty:   "No messages found for this topic.",
	HistoryFailed:  "Failed to retrieve topic conversation.",
	PrivateChat:    "Private Chat",
	UnknownChannel: "Unknown Channel",
}
