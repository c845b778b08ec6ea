package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Values come from config.yaml when
// present, overridden by CARDPARTY_* environment variables.
type Config struct {
	HTTPAddr  string `mapstructure:"http_addr"`
	MongoURI  string `mapstructure:"mongo_uri"`
	MongoDB   string `mapstructure:"mongo_db"`
	RedisAddr string `mapstructure:"redis_addr"`
	JWTSecret string `mapstructure:"jwt_secret"`

	// BaseURL is the public URL printed into room QR codes.
	BaseURL string `mapstructure:"base_url"`

	RoomTTL            time.Duration `mapstructure:"room_ttl"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	InactivityTimeout  time.Duration `mapstructure:"inactivity_timeout"`
	QuestionTimerSec   int           `mapstructure:"question_timer_sec"`
	ListeningSec       int           `mapstructure:"listening_sec"`
	OwnerUsername      string        `mapstructure:"owner_username"`
	OwnerPassword      string        `mapstructure:"owner_password"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// Load reads configuration from config.yaml (optional) and the
// environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "cardparty")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("jwt_secret", "dev-secret-change-in-production")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("room_ttl", 4*time.Hour)
	v.SetDefault("sweep_interval", 15*time.Minute)
	v.SetDefault("inactivity_timeout", 4*time.Hour)
	v.SetDefault("question_timer_sec", 20)
	v.SetDefault("listening_sec", 30)
	v.SetDefault("owner_username", "admin")
	v.SetDefault("owner_password", "password123")
	v.SetDefault("cors_allowed_origins", "*")

	v.SetEnvPrefix("CARDPARTY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; env and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
