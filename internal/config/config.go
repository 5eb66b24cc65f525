package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// MongoURIEnv is the environment variable for the MongoDB connection string.
	MongoURIEnv = "MONGODB_URI"

	// MongoDatabaseEnv is the environment variable for the MongoDB database name.
	MongoDatabaseEnv = "MONGODB_DATABASE"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "PORT"

	// Env is the environment variable for environment name.
	Env = "ENV"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// CORSAllowedOriginsEnv is the environment variable for the comma-separated list of allowed origins.
	CORSAllowedOriginsEnv = "CORS_ALLOWED_ORIGINS"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	// EnvProduction is the serverless deployment mode: the database is connected lazily per request.
	EnvProduction = "production"
	// EnvDevelopment is the default mode: the database is connected at startup.
	EnvDevelopment = "development"

	defaultHTTPServerPort     = "3000"
	defaultMongoDatabase      = "inventory"
	defaultProductsCollection = "products"
	defaultCORSAllowedOrigins = "http://localhost:3000,https://*.vercel.app"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Env           string
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	CORS          CORS
	AWS           AWSConfig
}

// IsProduction reports whether the service runs in the serverless production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	URI        string
	Name       string
	Collection string
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// CORS represents cross-origin policy settings.
type CORS struct {
	AllowedOrigins []string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		MongoURIEnv:      c.Database.URI,
		MongoDatabaseEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	ports := map[string]string{
		HTTPServerPortEnv: c.HTTPServer.Port,
	}
	// metrics server is optional
	if c.MetricsServer.Port != "" {
		ports[MetricsServerPortEnv] = c.MetricsServer.Port
	}
	if err := allNumbers(ports); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// publishing is optional, but a queue without a region cannot be reached
	if c.AWS.SQSQueueURL != "" {
		if err := allNonEmpty(map[string]string{
			AWSRegionEnv: c.AWS.Region,
		}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
	}

	return nil
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsList(name, defaultValue string) []string {
	var list []string
	for _, item := range strings.Split(getEnv(name, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	conf := load()
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadConsumerFromEnv loads the configuration of a queue consumer. It needs the queue
// but no database.
func LoadConsumerFromEnv() (*Config, error) {
	conf := load()
	if err := allNonEmpty(map[string]string{
		AWSRegionEnv:   conf.AWS.Region,
		SQSQueueURLEnv: conf.AWS.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("configuration validation failed: AWS configuration incomplete: %w", err)
	}
	return conf, nil
}

func load() *Config {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Env:       getEnv(Env, EnvDevelopment),
		Database: DB{
			URI:        os.Getenv(MongoURIEnv),
			Name:       getEnv(MongoDatabaseEnv, defaultMongoDatabase),
			Collection: defaultProductsCollection,
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, defaultHTTPServerPort),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		CORS: CORS{
			AllowedOrigins: getEnvAsList(CORSAllowedOriginsEnv, defaultCORSAllowedOrigins),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}
	return conf
}
