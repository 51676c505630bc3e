package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tracksuit_watcher/internal/classifier"
)

type Config struct {
	Database DatabaseConfig   `yaml:"database"`
	Source   SourceConfig     `yaml:"source"`
	Watch    WatchConfig      `yaml:"watch"`
	Rules    classifier.Rules `yaml:"rules"`
	Channels ChannelsConfig   `yaml:"channels"`
	LogLevel string           `yaml:"log_level"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" or "sqlite"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite only
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type SourceConfig struct {
	Endpoints  []string      `yaml:"endpoints"`
	SearchText string        `yaml:"search_text"`
	PerPage    int           `yaml:"per_page"`
	Timeout    time.Duration `yaml:"timeout"`
	Retry      RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	Backoff           time.Duration `yaml:"backoff"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown"`
}

type WatchConfig struct {
	Interval     time.Duration `yaml:"interval"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
}

type ChannelsConfig struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
	Queue    QueueConfig    `yaml:"queue"`
}

type DiscordConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type QueueConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate catches the only startup-fatal misconfiguration: a channel that is
// partially configured. Fully absent channels are simply disabled.
func (c *Config) Validate() error {
	t := c.Channels.Telegram
	if (t.BotToken == "") != (t.ChatID == "") {
		return fmt.Errorf("telegram channel needs both bot_token and chat_id")
	}
	if c.Channels.Queue.URL != "" && c.Channels.Queue.Exchange == "" {
		return fmt.Errorf("queue channel needs an exchange")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Path == "" {
		c.Database.Path = "tracksuit_watcher.db"
	}
	if len(c.Source.Endpoints) == 0 {
		c.Source.Endpoints = []string{
			"https://www.vinted.it/api/v2/catalog/items",
			"https://www.vinted.de/api/v2/catalog/items",
			"https://www.vinted.fr/api/v2/catalog/items",
			"https://www.vinted.es/api/v2/catalog/items",
			"https://www.vinted.nl/api/v2/catalog/items",
			"https://www.vinted.be/api/v2/catalog/items",
		}
	}
	if c.Source.SearchText == "" {
		c.Source.SearchText = "tuta calcio"
	}
	if c.Source.PerPage == 0 {
		c.Source.PerPage = 30
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 10 * time.Second
	}
	if c.Source.Retry.MaxAttempts == 0 {
		c.Source.Retry.MaxAttempts = 3
	}
	if c.Source.Retry.Backoff == 0 {
		c.Source.Retry.Backoff = 3 * time.Second
	}
	if c.Source.Retry.RateLimitCooldown == 0 {
		c.Source.Retry.RateLimitCooldown = 60 * time.Second
	}
	if c.Watch.Interval == 0 {
		c.Watch.Interval = 60 * time.Second
	}
	if c.Watch.CycleTimeout == 0 {
		c.Watch.CycleTimeout = 5 * time.Minute
	}
	if c.Channels.Queue.URL != "" {
		if c.Channels.Queue.RoutingKey == "" {
			c.Channels.Queue.RoutingKey = "approved_items"
		}
		if c.Channels.Queue.QueueName == "" {
			c.Channels.Queue.QueueName = "tracksuit_items"
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.setRuleDefaults()
}

func (c *Config) setRuleDefaults() {
	if len(c.Rules.Teams) == 0 {
		c.Rules.Teams = []string{
			"liverpool", "manchester city", "olympique marsiglia", "lione", "psg",
			"borussia dortmund", "bayern monaco", "inter", "manchester united",
			"argentina", "francia", "spagna", "arsenal", "tottenham",
			"real madrid", "barcellona", "atletico madrid", "chelsea",
			"napoli", "roma", "juventus", "ac milan",
		}
	}
	if len(c.Rules.Brands) == 0 {
		c.Rules.Brands = []string{"nike", "adidas", "puma", "lotto", "reebok", "umbro", "kappa"}
	}
	if len(c.Rules.AllowedSizes) == 0 {
		c.Rules.AllowedSizes = []string{"XS", "S", "M", "L", "XL"}
	}
	if len(c.Rules.ForbiddenKeywords) == 0 {
		c.Rules.ForbiddenKeywords = []string{
			"solo pantalone", "solo felpa", "joggers", "bottom", "piece 1",
			"short", "shorts", "maillot", "kids", "junior", "academy",
			"enfant", "garçon", "bambino", "child", "children", "youth",
			"training set", "kit gara", "summer", "estivo", "tees",
			"polo", "shirt", "maglietta", "canotta", "singlet",
		}
	}
	if len(c.Rules.AgeKeywords) == 0 {
		c.Rules.AgeKeywords = []string{
			"anni", "years", "age", "mesi", "months", "cm", "taglia bimbo",
			"kids size", "child size", "ragazzo", "ragazza", "16 anni",
		}
	}
	if len(c.Rules.CompleteSetPhrases) == 0 {
		c.Rules.CompleteSetPhrases = []string{
			"tuta calcio", "tuta da calcio", "tracksuit", "football tracksuit",
			"survêtement", "ensemble", "completo", "set completo",
		}
	}
	if len(c.Rules.TopTerms) == 0 {
		c.Rules.TopTerms = []string{"felpa", "giacca", "jacket", "hoodie"}
	}
	if len(c.Rules.BottomTerms) == 0 {
		c.Rules.BottomTerms = []string{"pantalone", "pants", "trousers"}
	}
	if len(c.Rules.Conditions) == 0 {
		c.Rules.Conditions = []string{
			"Ottime condizioni",
			"Nuovo senza cartellino",
			"Nuovo con cartellino",
		}
	}
}
