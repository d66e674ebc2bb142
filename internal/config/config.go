package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultEnv            = "prod"
	defaultLogLevel       = "info"
	defaultSolverTimeout  = 30 * time.Second
	defaultSolverMaxNodes = 5000
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	DBPath         string
	Port           string
	LogLevel       string
	SolverTimeout  time.Duration
	SolverMaxNodes int
}

// Load reads environment variables, with a local .env file as fallback, and
// returns a populated Config.
func Load() Config {
	cfg, err := LoadFrom(".env")
	if err != nil {
		// A broken .env still leaves the process environment usable.
		cfg, _ = LoadFrom("")
	}
	return cfg
}

// LoadFrom is Load with an explicit dotenv path. An empty path skips the file.
func LoadFrom(dotenvPath string) (Config, error) {
	v := viper.New()
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("DB_PATH", defaultDBPath)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("SOLVER_TIMEOUT", defaultSolverTimeout)
	v.SetDefault("SOLVER_MAX_NODES", defaultSolverMaxNodes)
	v.AutomaticEnv()

	if dotenvPath != "" {
		if err := readDotEnv(v, dotenvPath); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Env:            v.GetString("APP_ENV"),
		DBPath:         v.GetString("DB_PATH"),
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		SolverTimeout:  v.GetDuration("SOLVER_TIMEOUT"),
		SolverMaxNodes: v.GetInt("SOLVER_MAX_NODES"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return cfg, nil
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Warnings lists settings that are accepted but probably wrong.
func (c Config) Warnings() []string {
	var out []string
	if c.SolverTimeout <= 0 {
		out = append(out, "SOLVER_TIMEOUT is not positive; solves are not time limited")
	}
	if c.SolverMaxNodes <= 0 {
		out = append(out, fmt.Sprintf("SOLVER_MAX_NODES=%d; using the solver default", c.SolverMaxNodes))
	}
	return out
}
