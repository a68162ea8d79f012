// Package config loads service settings from the environment, an optional
// .env file and an optional config file named by CONFIG_FILE.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inspectroom/internal/inspection"
)

type Config struct {
	HTTPPort            string
	LogLevel            string
	DatabaseURL         string
	DraftDir            string
	JWTSecret           string
	JWTExpiresIn        time.Duration
	ImageServiceURL     string
	ImageServiceTimeout time.Duration
	CORSAllowedOrigins  []string
	RequiredSigners     []inspection.Role
	SeedPassword        string
}

var defaults = map[string]any{
	"HTTP_PORT":             "8080",
	"LOG_LEVEL":             "info",
	"DATABASE_URL":          "sqlite://inspection.db",
	"DRAFT_DIR":             "./data/drafts",
	"JWT_SECRET":            "",
	"JWT_EXPIRES_IN":        "24h",
	"IMAGE_SERVICE_URL":     "",
	"IMAGE_SERVICE_TIMEOUT": "60s",
	"CORS_ALLOWED_ORIGINS":  "*",
	"REQUIRED_SIGNERS":      "INSPECTOR,SUPERVISOR,CUSTOMER",
	"SEED_PASSWORD":         "password123",
}

// Load reads the configuration. Environment variables win over the config
// file; a missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	c := Config{
		HTTPPort:           v.GetString("HTTP_PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DraftDir:           v.GetString("DRAFT_DIR"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		ImageServiceURL:    v.GetString("IMAGE_SERVICE_URL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		SeedPassword:       v.GetString("SEED_PASSWORD"),
	}
	var err error
	if c.JWTExpiresIn, err = time.ParseDuration(v.GetString("JWT_EXPIRES_IN")); err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if c.ImageServiceTimeout, err = time.ParseDuration(v.GetString("IMAGE_SERVICE_TIMEOUT")); err != nil {
		return Config{}, fmt.Errorf("IMAGE_SERVICE_TIMEOUT: %w", err)
	}
	for _, s := range splitList(v.GetString("REQUIRED_SIGNERS")) {
		role := inspection.Role(strings.ToUpper(s))
		if !role.IsValid() {
			return Config{}, fmt.Errorf("REQUIRED_SIGNERS: unknown role %q", s)
		}
		c.RequiredSigners = append(c.RequiredSigners, role)
	}
	return c, c.validate()
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is empty")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
