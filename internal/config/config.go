package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type ExchangeConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	ExchangeDB   `yaml:"exchange_db"`
	Gateway      `yaml:"gateway"`
	KafkaService `yaml:"kafka-service"`
	Scheduler    `yaml:"scheduler"`
	LogConfig    `yaml:"log_config"`
	Migrations   `yaml:"migrations"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type ExchangeDB struct {
	Dsn string `yaml:"dsn" env:"EXCHANGE_DB_DSN"`
}

type Gateway struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key" env:"GATEWAY_API_KEY"`
	SecretKey         string `yaml:"secret_key" env:"GATEWAY_SECRET_KEY"`
	SuccessURL        string `yaml:"success_url"`
	InvoiceTTLMinutes int    `yaml:"invoice_ttl_minutes" env-default:"1440"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"transaction-events"`
}

type Scheduler struct {
	PollInterval time.Duration `yaml:"poll_interval" env-default:"10s"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type Migrations struct {
	Path string `yaml:"path"`
}

func MustLoad() *ExchangeConfig {

	// Processing env config variable and file
	configPath := os.Getenv("EXCHANGE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("EXCHANGE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg ExchangeConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
