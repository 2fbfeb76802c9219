package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type OpenAIConfig struct {
	APIKey          string   `mapstructure:"api_key"`
	Models          []string `mapstructure:"models"`
	PollIntervalMs  int      `mapstructure:"poll_interval_ms"`
	PollMaxAttempts int      `mapstructure:"poll_max_attempts"`
}

// PollInterval returns the configured poll interval as a duration.
func (c OpenAIConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

type StorageConfig struct {
	Backend        string         `mapstructure:"backend"`
	DataDir        string         `mapstructure:"data_dir"`
	AssistantsFile string         `mapstructure:"assistants_file"`
	HoneycombsFile string         `mapstructure:"honeycombs_file"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelegramConfig struct {
	Token     string `mapstructure:"token"`
	Assistant string `mapstructure:"assistant"`
}

func parseDatabaseURL(dbURL string) (PostgresConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return PostgresConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return PostgresConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("openai.models", []string{"gpt-4-turbo-preview", "gpt-3.5-turbo-0125"})
	v.SetDefault("openai.poll_interval_ms", 1000)
	v.SetDefault("openai.poll_max_attempts", 0)
	v.SetDefault("storage.backend", "json")
	v.SetDefault("storage.data_dir", ".")
	v.SetDefault("storage.assistants_file", "assistants.json")
	v.SetDefault("storage.honeycombs_file", "honeycombs.json")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.sslmode", "disable")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		pgConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Storage.Postgres = pgConfig
		config.Storage.Backend = "postgres"
	}

	// Get other environment variables
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	return &config, nil
}
