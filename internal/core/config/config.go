package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	RequestTimeout  int      `mapstructure:"request_timeout_sec"`
	MaxInFlight     int64    `mapstructure:"max_in_flight"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

func (a App) Production() bool { return a.Env == "production" }

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
	PrepareStmt        bool   `mapstructure:"prepare_stmt"`
}

type Session struct {
	Name      string
	Secret    string
	Store     string // memory | redis
	MaxAgeSec int    `mapstructure:"max_age_sec"`
	Secure    bool
}

type Security struct {
	BcryptCost  int     `mapstructure:"bcrypt_cost"`
	LoginRPS    float64 `mapstructure:"login_rps"`
	LoginBurst  int     `mapstructure:"login_burst"`
	GlobalRPS   float64 `mapstructure:"global_rps"`
	GlobalBurst int     `mapstructure:"global_burst"`
}

type Workflow struct {
	StrictTransitions bool `mapstructure:"strict_transitions"`
}

type Cache struct {
	FacetsTTLSec int `mapstructure:"facets_ttl_sec"`
}

type Config struct {
	App      App
	Log      Log
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Session  Session
	Security Security
	Workflow Workflow
	Cache    Cache
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "job-portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_in_flight", 300)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.allowed_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.filename", "logs/portal.log")
	v.SetDefault("log.rotate.max_size_mb", 100)
	v.SetDefault("log.rotate.max_backups", 7)
	v.SetDefault("log.rotate.max_age_days", 30)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:portal.db?_pragma=foreign_keys(1)")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 5)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.prepare_stmt", true)
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.name", "portal_session")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.max_age_sec", 7200)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.login_rps", 1)
	v.SetDefault("security.login_burst", 10)
	v.SetDefault("security.global_rps", 200)
	v.SetDefault("security.global_burst", 400)

	v.SetDefault("workflow.strict_transitions", false)
	v.SetDefault("cache.facets_ttl_sec", 300)
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default) and
// applies APP_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Session.Secret == "" {
		if c.App.Production() {
			return fmt.Errorf("session.secret is required in production")
		}
		c.Session.Secret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if !c.Redis.Enabled() {
			return fmt.Errorf("session.store=redis needs redis.addr")
		}
	default:
		return fmt.Errorf("unknown session.store %q", c.Session.Store)
	}
	return nil
}
