package config

import (
	"os"
	"strconv"
	"strings"
)

const defaultStoplist = "https,http,www,com,the,and,for,with,that,this,from,your,have,will"

type Config struct {
	// Database
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Server
	Port string
	Host string

	// Auth Service
	AuthServiceURL string

	// RabbitMQ refresh listener
	AmqpURL      string
	AmqpExchange string
	AmqpQueue    string

	// Insight mining
	FeatureStoplist  []string
	TermStoplist     []string
	UseCaseStoplist  []string
	MinTermLength    int
	MinTermFrequency int
	TopTermsLimit    int

	// Views
	DefaultWindowDays int
	DefaultPageSize   int
}

func Load() *Config {
	cfg := &Config{
		DBUser:            getEnv("DB_USER", "server"),
		DBPassword:        getEnv("DB_PASSWORD", "secret_app"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "insights"),
		Port:              getEnv("PORT", "8080"),
		Host:              getEnv("HOST", "0.0.0.0"),
		AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://auth-service:8080"),
		AmqpURL:           getEnv("AMQP_URL", ""),
		AmqpExchange:      getEnv("AMQP_EXCHANGE", "insights"),
		AmqpQueue:         getEnv("AMQP_QUEUE", "report-refresh"),
		MinTermLength:     getEnvInt("MIN_TERM_LENGTH", 2),
		MinTermFrequency:  getEnvInt("MIN_TERM_FREQUENCY", 2),
		TopTermsLimit:     getEnvInt("TOP_TERMS_LIMIT", 10),
		DefaultWindowDays: getEnvInt("DEFAULT_WINDOW_DAYS", 30),
		DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 20),
	}

	cfg.FeatureStoplist = parseList(getEnv("FEATURE_STOPLIST", defaultStoplist))
	cfg.TermStoplist = parseList(getEnv("TERM_STOPLIST", defaultStoplist))
	cfg.UseCaseStoplist = parseList(getEnv("USECASE_STOPLIST", ""))

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func parseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	var clean []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			clean = append(clean, part)
		}
	}

	return clean
}

// StoplistSet converts a configured stoplist into the lowercase lookup set
// the noise filter expects
func StoplistSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		set[strings.ToLower(term)] = struct{}{}
	}
	return set
}
