package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultConfigPath = "src/internal/config/cfg.yml"

type Configuration struct {
	Logs     LogsSettings    `mapstructure:"logs"`
	App      Application     `mapstructure:"app"`
	Server   ServerSettings  `mapstructure:"server"`
	Presence PresenceConfig  `mapstructure:"presence"`
	Session  SessionSettings `mapstructure:"session"`
	Database Database        `mapstructure:"database"`
	Queue    QueueConfig     `mapstructure:"queue"`
	Redis    Redis           `mapstructure:"redis"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Catalog  CatalogConfig   `mapstructure:"catalog"`
	Static   StaticConfig    `mapstructure:"static"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name    string `mapstructure:"name"`
	Timeout int    `mapstructure:"timeout"`
	Version string `mapstructure:"version"`
}

type ServerSettings struct {
	Port            string `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`
	ReadTimeout     int    `mapstructure:"read-timeout"`
	WriteTimeout    int    `mapstructure:"write-timeout"`
	IdleTimeout     int    `mapstructure:"idle-timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown-timeout"`
}

// PresenceConfig holds the presence thresholds, all in seconds.
type PresenceConfig struct {
	SessionTimeout      int      `mapstructure:"session-timeout"`
	ActiveWindow        int      `mapstructure:"active-window"`
	RecentWindow        int      `mapstructure:"recent-window"`
	CleanupInterval     int      `mapstructure:"cleanup-interval"`
	UserAgentMaxLength  int      `mapstructure:"user-agent-max-length"`
	SkipPaths           []string `mapstructure:"skip-paths"`
	KeepFirstClientInfo bool     `mapstructure:"keep-first-client-info"`
	EventBuffer         int      `mapstructure:"event-buffer"`
}

type SessionSettings struct {
	CookieName string `mapstructure:"cookie-name"`
	Secret     string `mapstructure:"secret"`
	MaxAge     int    `mapstructure:"max-age"`
	Secure     bool   `mapstructure:"secure"`
	HttpOnly   bool   `mapstructure:"http-only"`
}

type Database struct {
	Url                      string `mapstructure:"url"`
	DbName                   string `mapstructure:"dbname"`
	SessionHistoryCollection string `mapstructure:"session-history-collection"`
	Timeout                  int    `mapstructure:"timeout"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange-type"`
	RoutingKey   string `mapstructure:"routing-key"`
	Durable      bool   `mapstructure:"durable"`
	AutoDelete   bool   `mapstructure:"auto-delete"`
	Internal     bool   `mapstructure:"internal"`
	NoWait       bool   `mapstructure:"no-wait"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type CacheConfig struct {
	StatsKey        string `mapstructure:"stats-key"`
	StatsTTLSeconds int    `mapstructure:"stats-ttl-seconds"`
}

type CatalogConfig struct {
	Products []ProductSeed `mapstructure:"products"`
}

type ProductSeed struct {
	ID       int    `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Image    string `mapstructure:"image"`
	TimeLeft int    `mapstructure:"time-left"`
}

type StaticConfig struct {
	Dir          string `mapstructure:"dir"`
	ManifestPath string `mapstructure:"manifest-path"`
}

func (p PresenceConfig) SessionTimeoutDuration() time.Duration {
	return time.Duration(p.SessionTimeout) * time.Second
}

func (p PresenceConfig) ActiveWindowDuration() time.Duration {
	return time.Duration(p.ActiveWindow) * time.Second
}

func (p PresenceConfig) RecentWindowDuration() time.Duration {
	return time.Duration(p.RecentWindow) * time.Second
}

func (p PresenceConfig) CleanupIntervalDuration() time.Duration {
	return time.Duration(p.CleanupInterval) * time.Second
}

func Load() *Configuration {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg := read(path)
	logrus.Info("Configuration loaded")

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg
}

func applyEnvOverrides(cfg *Configuration) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if mongoUri := os.Getenv("MONGODB_URL"); mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.Database.DbName = dbName
	}

	if redisUrl := os.Getenv("REDIS_URL"); redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	if rabbitmqUrl := os.Getenv("RABBITMQ_URL"); rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}
}

// applyDefaults fills the values the service cannot run without.
func applyDefaults(cfg *Configuration) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "5000"
	}
	if cfg.App.Timeout <= 0 {
		cfg.App.Timeout = 10
	}
	if cfg.Presence.SessionTimeout <= 0 {
		cfg.Presence.SessionTimeout = 300
	}
	if cfg.Presence.ActiveWindow <= 0 {
		cfg.Presence.ActiveWindow = 120
	}
	if cfg.Presence.RecentWindow <= 0 {
		cfg.Presence.RecentWindow = 60
	}
	if cfg.Presence.CleanupInterval <= 0 {
		cfg.Presence.CleanupInterval = 60
	}
	if cfg.Presence.UserAgentMaxLength <= 0 {
		cfg.Presence.UserAgentMaxLength = 50
	}
	if cfg.Presence.EventBuffer <= 0 {
		cfg.Presence.EventBuffer = 256
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "session"
	}
	if cfg.Session.Secret == "" {
		logrus.Warn("Session secret is not configured, using an insecure development secret")
		cfg.Session.Secret = "showroom-development-secret"
	}
	if cfg.Session.MaxAge <= 0 {
		cfg.Session.MaxAge = 86400 * 31
	}
	if cfg.Database.SessionHistoryCollection == "" {
		cfg.Database.SessionHistoryCollection = "session_history"
	}
	if cfg.Database.Timeout <= 0 {
		cfg.Database.Timeout = 5
	}
	if cfg.Cache.StatsKey == "" {
		cfg.Cache.StatsKey = "presence:stats"
	}
}

func read(path string) *Configuration {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	var config Configuration

	err := v.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = v.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
