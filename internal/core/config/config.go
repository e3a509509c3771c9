package config

import (
	"log"
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
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// File 非空时启用文件写入 + 切割
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Feed struct {
	DefaultRadiusMiles  float64
	MaxRadiusMiles      float64
	NearbyMiles         float64
	NewProductWindowDay int
	CacheTTLSec         int
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
	Feed  Feed
}

// Normalize 回填半径等默认值，避免 yaml 漏配时出现 0 半径
func (c *Config) Normalize() {
	if c.Feed.DefaultRadiusMiles <= 0 {
		c.Feed.DefaultRadiusMiles = 25
	}
	if c.Feed.MaxRadiusMiles <= 0 {
		c.Feed.MaxRadiusMiles = 100
	}
	if c.Feed.NearbyMiles <= 0 {
		c.Feed.NearbyMiles = 10
	}
	if c.Feed.NewProductWindowDay <= 0 {
		c.Feed.NewProductWindowDay = 30
	}
	if c.Feed.CacheTTLSec <= 0 {
		c.Feed.CacheTTLSec = 60
	}
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	c.Normalize()
	return &c
}
