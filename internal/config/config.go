package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the .env file specified by BELIEFDRIFT_ENV (or .env by
// default), then the corresponding .secret sidecar if present. All config
// is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("BELIEFDRIFT_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// MetricsLogPath is where evaluation records are appended as JSONL.
// Defaults to metrics/divergence.jsonl.
func MetricsLogPath() string {
	p := os.Getenv("METRICS_LOG_PATH")
	if p == "" {
		return "metrics/divergence.jsonl"
	}
	return p
}

// DecisionConfigPath points at the YAML decision config. Empty means no
// decision config: the action hook stays disabled.
func DecisionConfigPath() string {
	return os.Getenv("DECISION_CONFIG_PATH")
}

// MonitorInterval returns how often the background monitor evaluates
// divergence. Defaults to 30 seconds.
func MonitorInterval() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("MONITOR_INTERVAL_SECONDS"))
	if err != nil || secs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// DivergenceMetric names the metric the monitor gates decisions on.
// Defaults to concept_js_divergence.
func DivergenceMetric() string {
	m := os.Getenv("DIVERGENCE_METRIC")
	if m == "" {
		return "concept_js_divergence"
	}
	return m
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// LoadDecisionConfig reads the YAML decision config into the raw option
// map the action selector resolves defaults over. A missing path returns a
// nil map, which disables the hook.
func LoadDecisionConfig(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decision config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse decision config: %w", err)
	}
	return raw, nil
}
