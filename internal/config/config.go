package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`

	// JWTSecret verifies bearer tokens issued by the hosted auth service. Empty disables the check.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:3000"`

	Banxico `yaml:"banxico"`

	TaxRate float64 `yaml:"tax_rate" env:"TAX_RATE" env-default:"0.16"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	User      string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	Password  string `yaml:"db_password" env:"DB_PASSWORD"`
	Host      string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	Port      int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	Name      string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime bool   `yaml:"parse_time" env-default:"true"`
}

type Banxico struct {
	Token       string        `yaml:"token" env:"BANXICO_TOKEN"`
	BaseURL     string        `yaml:"base_url" env-default:"https://www.banxico.org.mx/SieAPIRest/service/v1"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env-default:"1h"`
	DefaultRate float64       `yaml:"default_rate" env:"BANXICO_DEFAULT_RATE" env-default:"18.50"`
}

// Load reads the yaml file at path and applies env overrides.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}
