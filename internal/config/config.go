package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "AGENT_PIPELINE_CONFIG"
	databasePathEnv  = "DATABASE_PATH"
	seedPathEnv      = "SKILLS_SEED_PATH"
	searchAPIKeyEnv  = "SEARCH_API_KEY"
	rapidAPIKeyEnv   = "RAPIDAPI_KEY"
	llmAPIKeyEnv     = "LLM_API_KEY"
	llmModelEnv      = "LLM_MODEL"
	analyticsKeyEnv  = "ANALYTICS_API_KEY"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Logging       LoggingConfig      `yaml:"logging"`
	Skills        SkillsConfig       `yaml:"skills"`
	Research      ResearchConfig     `yaml:"research"`
	LLM           LLMConfig          `yaml:"llm"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Analytics     AnalyticsConfig    `yaml:"analytics"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// DatabaseConfig describes the sqlite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SkillsConfig points at the declarative seed file.
type SkillsConfig struct {
	SeedPath string `yaml:"seedPath"`
}

// ResearchConfig groups the web and social search providers.
type ResearchConfig struct {
	Web    WebSearchConfig    `yaml:"web"`
	Social SocialSearchConfig `yaml:"social"`
}

// WebSearchConfig defines how web search results are fetched. Strategy
// selects a registered scanner ("api" or "serp").
type WebSearchConfig struct {
	Strategy   string `yaml:"strategy"`
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	Model      string `yaml:"model"`
	MaxResults int    `yaml:"maxResults"`
}

// SocialSearchConfig defines the tweet search provider.
type SocialSearchConfig struct {
	Endpoint string `yaml:"endpoint"`
	Host     string `yaml:"host"`
	APIKey   string `yaml:"apiKey"`
}

// LLMConfig defines how to contact the chat-completions API used for
// distillation, drafting and replies.
type LLMConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// PipelineConfig tunes run behavior.
type PipelineConfig struct {
	RecencyDays      int `yaml:"recencyDays"`
	MaxConversations int `yaml:"maxConversations"`
}

// AnalyticsConfig describes the post-metrics service.
type AnalyticsConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(seedPathEnv); v != "" {
		c.Skills.SeedPath = v
	}

	if v := os.Getenv(searchAPIKeyEnv); v != "" {
		c.Research.Web.APIKey = v
	}

	if v := os.Getenv(rapidAPIKeyEnv); v != "" {
		c.Research.Social.APIKey = v
	}

	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(analyticsKeyEnv); v != "" {
		c.Analytics.APIKey = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Skills.SeedPath != "" {
		base.Skills = override.Skills
	}

	if override.Research.Web.Strategy != "" {
		base.Research.Web.Strategy = override.Research.Web.Strategy
	}
	if override.Research.Web.Endpoint != "" {
		base.Research.Web.Endpoint = override.Research.Web.Endpoint
	}
	if override.Research.Web.APIKey != "" {
		base.Research.Web.APIKey = override.Research.Web.APIKey
	}
	if override.Research.Web.Model != "" {
		base.Research.Web.Model = override.Research.Web.Model
	}
	if override.Research.Web.MaxResults > 0 {
		base.Research.Web.MaxResults = override.Research.Web.MaxResults
	}

	if override.Research.Social.Endpoint != "" {
		base.Research.Social.Endpoint = override.Research.Social.Endpoint
	}
	if override.Research.Social.Host != "" {
		base.Research.Social.Host = override.Research.Social.Host
	}
	if override.Research.Social.APIKey != "" {
		base.Research.Social.APIKey = override.Research.Social.APIKey
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}

	if override.Pipeline.RecencyDays > 0 {
		base.Pipeline.RecencyDays = override.Pipeline.RecencyDays
	}
	if override.Pipeline.MaxConversations > 0 {
		base.Pipeline.MaxConversations = override.Pipeline.MaxConversations
	}

	if override.Analytics.Endpoint != "" {
		base.Analytics.Endpoint = override.Analytics.Endpoint
	}
	if override.Analytics.APIKey != "" {
		base.Analytics.APIKey = override.Analytics.APIKey
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "agent_os.db"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Skills:   SkillsConfig{SeedPath: "skills_seed.json"},
		Research: ResearchConfig{
			Web: WebSearchConfig{
				Strategy:   "api",
				Endpoint:   "https://api.perplexity.ai/chat/completions",
				Model:      "sonar",
				MaxResults: 10,
			},
			Social: SocialSearchConfig{
				Endpoint: "https://twitter-api45.p.rapidapi.com/search.php",
				Host:     "twitter-api45.p.rapidapi.com",
			},
		},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Pipeline: PipelineConfig{
			RecencyDays:      30,
			MaxConversations: 5,
		},
		Analytics: AnalyticsConfig{
			Endpoint: "https://analytics.example.org/posts",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
	}
}
