package config

import (
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	RabbitMQ RabbitMQConfig
	Web      WebConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// IsDevelopment reports whether the process runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string
	Path     string // sqlite file or memory DSN
}

// DSN builds the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	query := url.Values{}
	query.Set("sslmode", d.SSLMode)
	if d.Schema != "" {
		query.Set("search_path", d.Schema)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: query.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled           bool
	Host              string
	Port              string
	Password          string
	DB                int
	RequestsPerWindow int
	Window            time.Duration
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type JWTConfig struct {
	Secret     string
	WriteRoles []string // roles allowed to create products; empty means any authenticated caller
}

type RabbitMQConfig struct {
	URL      string // empty disables event publishing
	Exchange string
}

type WebConfig struct {
	Port       string
	APIBaseURL string
	APITimeout time.Duration
}

func Load() *Config {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8081")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", "carvedrock.db")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	viper.SetDefault("JWT_WRITE_ROLES", "")
	viper.SetDefault("RABBITMQ_EXCHANGE", "carvedrock.products")
	viper.SetDefault("WEB_PORT", "8081")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080/api/")
	viper.SetDefault("API_TIMEOUT", 10*time.Second)

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			Path:     viper.GetString("DB_PATH"),
		},
		Redis: RedisConfig{
			Enabled:           viper.GetBool("REDIS_ENABLED"),
			Host:              viper.GetString("REDIS_HOST"),
			Port:              viper.GetString("REDIS_PORT"),
			Password:          viper.GetString("REDIS_PASSWORD"),
			DB:                viper.GetInt("REDIS_DB"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("JWT_SECRET"),
			WriteRoles: splitList(viper.GetString("JWT_WRITE_ROLES")),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("RABBITMQ_EXCHANGE"),
		},
		Web: WebConfig{
			Port:       viper.GetString("WEB_PORT"),
			APIBaseURL: viper.GetString("API_BASE_URL"),
			APITimeout: viper.GetDuration("API_TIMEOUT"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
