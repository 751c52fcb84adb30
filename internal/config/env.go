package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Host         string `envconfig:"DB_HOST" default:"127.0.0.1"`
	Port         string `envconfig:"DB_PORT" default:"3306"`
	User         string `envconfig:"DB_USER" default:"root"`
	Password     string `envconfig:"DB_PASSWORD"`
	Name         string `envconfig:"DB_NAME" default:"bus_booking"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
}

type AuthConfig struct {
	JWTSecret          string        `envconfig:"JWT_SECRET" default:"super-secret-key-change-me"`
	SessionTTL         time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	GoogleClientID     string        `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `envconfig:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/auth/google/callback"`
	AdminGoogleIDs     string        `envconfig:"ADMIN_GOOGLE_IDS"`
}

type Env struct {
	AppAddr     string `envconfig:"APP_ADDR" default:":8080"`
	GinMode     string `envconfig:"GIN_MODE"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`

	DB   DBConfig
	Auth AuthConfig
}

// LoadEnv reads an optional .env file, then decodes the process environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	env.AppAddr = strings.TrimSpace(env.AppAddr)
	env.GinMode = strings.TrimSpace(env.GinMode)
	return env, nil
}

// AdminIDs returns the trimmed, non-empty entries of ADMIN_GOOGLE_IDS.
func (a AuthConfig) AdminIDs() []string {
	return SplitList(a.AdminGoogleIDs)
}

func (e Env) AllowedOrigins() []string {
	return SplitList(e.CORSOrigins)
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
