// Ininicializing common application configuration
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const DefaultAPIBaseURL = "http://localhost:8000"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	API     APIConfig     `mapstructure:"api"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Preview PreviewConfig `mapstructure:"preview"`
	Session SessionConfig `mapstructure:"session"`
	Events  EventsConfig  `mapstructure:"events"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Env         string        `mapstructure:"environment"`
	Mode        string        `mapstructure:"mode"`
}

// APIConfig points at the external classifier that serves POST /predict.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type PreviewConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSide int    `mapstructure:"max_side"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type EventsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// LoadConfig reads ./config/config.yaml on top of defaults and environment.
// A missing config file is not an error.
func LoadConfig() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("could not load .env file: %v", err)
	}

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)
	if err := bindEnv(viperInstance); err != nil {
		return nil, err
	}

	err := viperInstance.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logrus.Info("config file not found, using defaults and environment")
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, err
	}

	c.API.BaseURL = NormalizeBaseURL(c.API.BaseURL)
	return &c, nil
}

// NormalizeBaseURL falls back to the local classifier and strips one trailing slash.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultAPIBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("api.base_url", DefaultAPIBaseURL)

	v.SetDefault("upload.max_bytes", 10<<20)

	v.SetDefault("preview.dir", "./storage/previews")
	v.SetDefault("preview.max_side", 320)

	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", "localhost:9094")
	v.SetDefault("events.topic", "digit-predictions")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"api.base_url":   {"API_BASE_URL", "VITE_API_BASE_URL"},
		"server.port":    {"PORT"},
		"server.mode":    {"GIN_MODE"},
		"events.enabled": {"EVENTS_ENABLED"},
		"events.brokers": {"KAFKA_BROKERS"},
		"events.topic":   {"KAFKA_TOPIC"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}
