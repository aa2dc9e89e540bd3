package config

import (
	"os"
	"strconv"
	"strings"

	"leasing-catalog-api/internal/matching"
)

type Config struct {
	Database DatabaseConfig
	Batch    BatchConfig
	Match    matching.MatchPolicy
	APIPort  string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// BatchConfig holds the defaults of the batch jobs
type BatchConfig struct {
	Workers          int
	Limit            int
	MonitorPort      int
	EnableMonitoring bool
}

func Load() *Config {
	policy := matching.DefaultMatchPolicy()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "leasing"),
			User:     getEnv("DB_USER", "leasing"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Batch: BatchConfig{
			Workers:          getEnvInt("BATCH_WORKERS", 4),
			Limit:            getEnvInt("BATCH_LIMIT", 500),
			MonitorPort:      getEnvInt("BATCH_MONITOR_PORT", 9090),
			EnableMonitoring: getEnvBool("BATCH_MONITORING", true),
		},
		Match: matching.MatchPolicy{
			HorsepowerTolerance:        getEnvInt("MATCH_HP_TOLERANCE", policy.HorsepowerTolerance),
			NearHorsepowerScore:        getEnvFloat("MATCH_NEAR_HP_SCORE", policy.NearHorsepowerScore),
			HorsepowerFalloff:          getEnvInt("MATCH_HP_FALLOFF", policy.HorsepowerFalloff),
			FuzzyAcceptance:            getEnvFloat("MATCH_FUZZY_ACCEPTANCE", policy.FuzzyAcceptance),
			MaxFuzzyConfidence:         getEnvFloat("MATCH_MAX_FUZZY_CONFIDENCE", policy.MaxFuzzyConfidence),
			UnknownTransmissionMatches: getEnvBool("MATCH_UNKNOWN_TRANSMISSION_MATCHES", policy.UnknownTransmissionMatches),
			IdentityWeight:             getEnvFloat("MATCH_WEIGHT_IDENTITY", policy.IdentityWeight),
			HorsepowerWeight:           getEnvFloat("MATCH_WEIGHT_HORSEPOWER", policy.HorsepowerWeight),
			TransmissionWeight:         getEnvFloat("MATCH_WEIGHT_TRANSMISSION", policy.TransmissionWeight),
			AWDWeight:                  getEnvFloat("MATCH_WEIGHT_AWD", policy.AWDWeight),
		},
		APIPort:  getEnv("API_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
