package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/securecookie"
	"gopkg.in/yaml.v2"
)

// MinSessionSecret - минимальная длина ключа подписи cookie сессии
const MinSessionSecret = 32

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type ConfigSchema struct {
	Databases struct {
		Driver     string     `yaml:"driver"` // postgres | sqlite
		SQLitePath string     `yaml:"sqlite_path"`
		Master     DBConfig   `yaml:"master"`
		Replicas   []DBConfig `yaml:"replicas"`
	} `yaml:"db"`
	Backend struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		PageSize int    `yaml:"page_size"`
	} `yaml:"backend"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		Backend     string        `yaml:"backend"` // memory | redis
		TTL         time.Duration `yaml:"ttl"`
		KeyPrefix   string        `yaml:"key_prefix"`
		VaryByQuery bool          `yaml:"vary_by_query"`
		Size        int           `yaml:"size"`
	} `yaml:"cache"`
	Session struct {
		Secret string `yaml:"secret"`
		MaxAge int    `yaml:"max_age"`
		Secure bool   `yaml:"secure"`
	} `yaml:"session"`
	Media struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"media"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Telemetry struct {
		Endpoint    string `yaml:"endpoint"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"telemetry"`
	Logs struct {
		Level string `yaml:"level"`
	} `yaml:"logs"`
}

var AppConfig *ConfigSchema

// Default возвращает конфигурацию, с которой сервер стартует без внешних зависимостей
func Default() *ConfigSchema {
	conf := &ConfigSchema{}
	conf.Databases.Driver = "sqlite"
	conf.Databases.SQLitePath = "yatube.db"
	conf.Backend.Host = "0.0.0.0"
	conf.Backend.Port = 8080
	conf.Backend.PageSize = 10
	conf.Redis.Host = "localhost"
	conf.Redis.Port = 6379
	conf.Cache.Backend = "memory"
	conf.Cache.TTL = time.Second
	conf.Cache.KeyPrefix = "index_page"
	conf.Cache.Size = 1024
	// Случайный ключ на процесс: сессии не переживают рестарт, пока secret не задан в конфиге
	conf.Session.Secret = string(securecookie.GenerateRandomKey(MinSessionSecret))
	conf.Session.MaxAge = 14 * 24 * 3600
	conf.Media.Bucket = "yatube"
	conf.Telemetry.ServiceName = "yatube"
	conf.Logs.Level = "info"
	return conf
}

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf := Default()
	generatedSecret := conf.Session.Secret
	if err = yaml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	if conf.Session.Secret == generatedSecret {
		log.Println("WARNING: session.secret is not set, using a random key")
	}
	if err = conf.Validate(); err != nil {
		return err
	}
	AppConfig = conf
	return nil
}

func (c *ConfigSchema) Validate() error {
	switch c.Databases.Driver {
	case "sqlite":
		if c.Databases.SQLitePath == "" {
			return fmt.Errorf("db.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Databases.Master.Host == "" {
			return fmt.Errorf("master database configuration is missing")
		}
	default:
		return fmt.Errorf("unknown db.driver %q", c.Databases.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Backend.PageSize <= 0 {
		return fmt.Errorf("backend.page_size must be positive")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	if len(c.Session.Secret) < MinSessionSecret {
		return fmt.Errorf("session.secret must be at least %d bytes", MinSessionSecret)
	}
	return nil
}

func (c *ConfigSchema) Debug() bool {
	return c.Logs.Level == "debug"
}

func (c *ConfigSchema) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Backend.Host, c.Backend.Port)
}

func (c *ConfigSchema) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
