package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	TokenSecret string `env:"TOKEN_SECRET"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	Paypal Paypal `envPrefix:"PAYPAL_"`
	Resend Resend `envPrefix:"RESEND_"`
	Sanity Sanity `envPrefix:"SANITY_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

type Resend struct {
	APIKey     string `env:"API_KEY"`
	FromEmail  string `env:"FROM"`
	AdminEmail string `env:"ADMIN"`
}

type Sanity struct {
	ProjectID  string `env:"PROJECT_ID"`
	Dataset    string `env:"DATASET" envDefault:"production"`
	APIVersion string `env:"API_VERSION" envDefault:"2024-01-01"`
	Token      string `env:"TOKEN"`
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
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

// Validate fails fast on missing secrets instead of letting them surface as
// provider errors halfway through a checkout.
func (c *Config) Validate() error {
	var missing []string

	for key, value := range map[string]string{
		"DATABASE_URL":          c.DatabaseURL,
		"TOKEN_SECRET":          c.TokenSecret,
		"STRIPE_SECRET_KEY":     c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": c.Stripe.WebhookSecret,
		"PAYPAL_CLIENT_ID":      c.Paypal.ClientID,
		"PAYPAL_CLIENT_SECRET":  c.Paypal.ClientSecret,
		"RESEND_API_KEY":        c.Resend.APIKey,
		"RESEND_FROM":           c.Resend.FromEmail,
		"RESEND_ADMIN":          c.Resend.AdminEmail,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
