package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database  `envPrefix:"DATABASE_"`
	Auth        Auth      `envPrefix:"AUTH_"`
	RateLimit   RateLimit `envPrefix:"RATE_LIMIT_"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	Redis  Redis  `envPrefix:"REDIS_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"eur"`
	SuccessURL    string `env:"SUCCESS_URL" envDefault:"http://localhost:9500/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL     string `env:"CANCEL_URL" envDefault:"http://localhost:9500/cancel"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"mysql"` // mysql, sqlite
	URL    string `env:"URL"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type RateLimit struct {
	CheckoutPerMinute int64 `env:"CHECKOUT_PER_MINUTE" envDefault:"10"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"9500"`

	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Load reads an optional .env file into the process environment and parses Config from it.
func Load() (*Config, error) {
	// a missing .env is expected outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET is required")
	}
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return nil
}

func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}
