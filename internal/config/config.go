package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all toolkit settings, populated from environment variables.
type Config struct {
	InputDir  string
	OutputDir string

	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	ChartCacheSize  int

	// Import pipeline configuration.
	ImportBatchSize  int
	ImportAddMissing bool

	// Change event publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntInRange("IMPORT_BATCH_SIZE", 25, 1, 1000)
	if err != nil {
		return nil, err
	}

	chartCacheSize, err := parseIntInRange("CHART_CACHE_SIZE", 64, 0, 10000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputDir:         sharedcfg.EnvOrDefault("INPUT_DIR", defaultDataDir("input_data")),
		OutputDir:        sharedcfg.EnvOrDefault("OUTPUT_DIR", defaultDataDir("output_data")),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  shutdownTimeout,
		ChartCacheSize:   chartCacheSize,
		ImportBatchSize:  batchSize,
		ImportAddMissing: sharedcfg.EnvOrDefault("IMPORT_ADD_MISSING", "true") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "camels-de1h-changes"),
	}
	cfg.KafkaEnabled = os.Getenv("KAFKA_ENABLED") == "true"

	if cfg.InputDir == "" {
		return nil, errors.New("INPUT_DIR must not be empty")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR must not be empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// defaultDataDir places data folders next to the directory holding the
// executable, so an unpacked release finds ../input_data and ../output_data.
func defaultDataDir(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(filepath.Dir(exe)), name)
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q: must be between %d and %d", key, s, lo, hi)
	}
	return n, nil
}
