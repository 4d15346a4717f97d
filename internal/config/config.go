package config

import (
	"log"
	"os"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	IsDebug bool `yaml:"is_debug" env:"IS_DEBUG" env-default:"false"`
	Listen  struct {
		BindIP string `yaml:"bind_ip" env:"APP_HOST" env-default:"0.0.0.0"`
		Port   string `yaml:"port" env:"APP_PORT" env-default:"5000"`
	} `yaml:"listen"`
	// HeartbeatInterval interval in seconds reported to every charge point
	// on boot; a configuration constant, not negotiated.
	HeartbeatInterval int `yaml:"heartbeat_interval" env:"HEARTBEAT_INTERVAL" env-default:"30"`
	Metrics           struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"9100"`
	} `yaml:"metrics"`
	Api struct {
		Enabled bool   `yaml:"enabled" env:"API_ENABLED" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"5001"`
	} `yaml:"api"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env-default:"localhost"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"evsim"`
	} `yaml:"mongo"`
	Telegram struct {
		Enabled bool    `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
		ApiKey  string  `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		ChatIds []int64 `yaml:"chat_ids" env:"TELEGRAM_CHAT_IDS"`
	} `yaml:"telegram"`
	Client struct {
		ServerHost    string `yaml:"server_host" env:"APP_HOST" env-default:"localhost"`
		ServerPort    string `yaml:"server_port" env:"APP_PORT" env-default:"5000"`
		ChargePointId string `yaml:"charge_point_id" env:"CHARGE_POINT_ID" env-default:"CP_1"`
		// HeartbeatCount heartbeats sent before the task completes on its own.
		HeartbeatCount int `yaml:"heartbeat_count" env-default:"3"`
		// FallbackInterval seconds, used when the boot response carries no
		// usable heartbeat interval.
		FallbackInterval int `yaml:"fallback_interval" env-default:"10"`
		MeterPeriod      int `yaml:"meter_period" env-default:"5"`
		MeterStep        int `yaml:"meter_step" env-default:"100"`
		// SessionWindow seconds of metering before the transaction is closed.
		SessionWindow int `yaml:"session_window" env-default:"10"`
		ProfileId     int `yaml:"profile_id" env-default:"1"`
		LimitW        int `yaml:"limit_w" env-default:"7000"`
	} `yaml:"client"`
}

const configFile = "config.yml"

var instance *Config
var once sync.Once

func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		if _, statErr := os.Stat(configFile); statErr != nil {
			err = cleanenv.ReadEnv(instance)
			return
		}
		log.Println("reading config")
		if err = cleanenv.ReadConfig(configFile, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			log.Println(desc)
			instance = nil
		}
	})
	return instance, err
}
