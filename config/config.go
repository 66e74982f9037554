package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Location  LocationConfig  `mapstructure:"location"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Collector CollectorConfig `mapstructure:"collector"`
	API       APIConfig       `mapstructure:"api"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type LocationConfig struct {
	Name      string  `mapstructure:"name"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Timezone  string  `mapstructure:"timezone"`
}

type ProviderConfig struct {
	Name      string        `mapstructure:"name"`
	APIKey    string        `mapstructure:"api_key"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type CollectorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/moonwatch")
	}

	// Set defaults
	viper.SetDefault("location.name", "Villach")
	viper.SetDefault("location.latitude", 46.6167)
	viper.SetDefault("location.longitude", 13.85)
	viper.SetDefault("location.timezone", "Europe/Vienna")
	viper.SetDefault("provider.name", "metno")
	viper.SetDefault("provider.api_key", "")
	viper.SetDefault("provider.user_agent", "moonwatch/1.0")
	viper.SetDefault("provider.timeout", "10s")
	viper.SetDefault("collector.enabled", true)
	viper.SetDefault("collector.cron", "15 0 * * *")
	viper.SetDefault("api.port", 8046)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "moonwatch")
	viper.SetDefault("mqtt.client_id", "moonwatch")
	viper.SetDefault("database.path", "./moonwatch.db")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
