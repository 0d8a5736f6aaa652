package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vietanh2810/eventpass-api/internal/logger"
)

const minQRSigningKeyLength = 32

type AppConfig struct {
	API      *APIConfig
	Gin      *GinConfig
	Postgres *PostgresConfig
	Redis    *RedisConfig
	RabbitMQ *RabbitMQConfig
	Otel     *OtelConfig
	Checkin  *CheckinConfig
}

type APIConfig struct {
	Environment        string
	Port               string
	BaseURL            string
	AllowedCORSDomains []string
	JWTSigningKey      string
	JWTExpirationHours int
	QRSigningKey       string
}

type GinConfig struct {
	Mode string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type OtelConfig struct {
	Endpoint    string
	ServiceName string
}

type CheckinConfig struct {
	EnforceOrderDefault bool
	FeedCapacity        int64
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		zap.L().Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()), zap.String("log_level", level))
		if level == "" {
			return
		}
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("ignoring log level", zap.String("log_level", level), zap.Error(err))
		}
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil {
		return errors.New("api config is required")
	}
	if c.API.JWTSigningKey == "" {
		return errors.New("api.jwtsigningkey is required")
	}
	if len(c.API.QRSigningKey) < minQRSigningKeyLength {
		return fmt.Errorf("api.qrsigningkey must be at least %d bytes", minQRSigningKeyLength)
	}
	if c.Gin == nil {
		c.Gin = &GinConfig{Mode: "release"}
	}
	if c.Postgres == nil {
		c.Postgres = &PostgresConfig{}
	}
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.RabbitMQ == nil {
		c.RabbitMQ = &RabbitMQConfig{}
	}
	if c.Otel == nil {
		c.Otel = &OtelConfig{}
	}
	if c.Checkin == nil {
		c.Checkin = &CheckinConfig{}
	}
	if c.Checkin.FeedCapacity <= 0 {
		c.Checkin.FeedCapacity = 500
	}
	if c.API.JWTExpirationHours <= 0 {
		c.API.JWTExpirationHours = 24
	}
	return nil
}
