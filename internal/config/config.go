package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Appwrite AppwriteConfig `yaml:"appwrite" mapstructure:"appwrite"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Sync     SyncConfig     `yaml:"sync" mapstructure:"sync"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourceConfig locates the published directory and bounds requests to it.
type SourceConfig struct {
	PageURL      string `yaml:"page_url" mapstructure:"page_url"`
	DocsBaseURL  string `yaml:"docs_base_url" mapstructure:"docs_base_url"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FilePaceSecs int    `yaml:"file_pace_secs" mapstructure:"file_pace_secs"`
}

// Timeout returns the per-request timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// FilePace returns the pause between consecutive spreadsheet downloads.
func (s SourceConfig) FilePace() time.Duration {
	return time.Duration(s.FilePaceSecs) * time.Second
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AppwriteConfig holds Appwrite project credentials and document IDs.
type AppwriteConfig struct {
	Endpoint     string `yaml:"endpoint" mapstructure:"endpoint"`
	ProjectID    string `yaml:"project_id" mapstructure:"project_id"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	DatabaseID   string `yaml:"database_id" mapstructure:"database_id"`
	CollectionID string `yaml:"collection_id" mapstructure:"collection_id"`
	StatusDocID  string `yaml:"status_doc_id" mapstructure:"status_doc_id"`
}

// TelegramConfig holds bot credentials for operator notifications.
// An empty token downgrades notifications to log output.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	ChatID   string `yaml:"chat_id" mapstructure:"chat_id"`
}

// SyncConfig configures the recurring watch schedule.
type SyncConfig struct {
	IntervalDays int `yaml:"interval_days" mapstructure:"interval_days"`
}

// Interval returns the watch re-check interval.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalDays) * 24 * time.Hour
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BRANCHSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.page_url", "https://m.rbi.org.in/scripts/bs_viewcontent.aspx?Id=2009")
	v.SetDefault("source.docs_base_url", "https://rbidocs.rbi.org.in/rdocs/Content/DOCs/")
	v.SetDefault("source.timeout_secs", 10)
	v.SetDefault("source.file_pace_secs", 2)
	v.SetDefault("store.driver", "appwrite")
	v.SetDefault("store.sqlite_path", "branchsync.db")
	v.SetDefault("appwrite.endpoint", "https://cloud.appwrite.io/v1")
	// Credentials default empty so environment-only values survive Unmarshal.
	v.SetDefault("appwrite.project_id", "")
	v.SetDefault("appwrite.api_key", "")
	v.SetDefault("appwrite.database_id", "")
	v.SetDefault("appwrite.collection_id", "")
	v.SetDefault("appwrite.status_doc_id", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("sync.interval_days", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
