// Package config loads function settings from the environment (and a .env file when present).
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Emulator endpoints selected by ENV.
const (
	LocalEndpoint = "http://localstack:4566"
	TestEndpoint  = "http://localstack:14566"
)

// Store drivers
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// MaxBatch is the largest receive batch SQS accepts.
const MaxBatch = 10

// Config holds everything a function needs at start up
type Config struct {
	Env             string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	Bucket      string
	StoreDriver string

	QueueURL        string
	KeyPrefix       string
	MaxMessages     int64
	WaitTimeSeconds int64
	PartialBatch    bool

	LogLevel   string
	LogFormat  string
	ListenAddr string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper builds a Config from the given viper instance, applying defaults and binding env vars.
func FromViper(v *viper.Viper) (*Config, error) {

	v.SetDefault("ENV", "local")
	v.SetDefault("LOCALSTACK_ENDPOINT", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET_NAME", "lambda-s3-practice")
	v.SetDefault("STORE_DRIVER", DriverS3)
	v.SetDefault("QUEUE_URL", "")
	v.SetDefault("KEY_PREFIX", "")
	v.SetDefault("MAX_MESSAGES", MaxBatch)
	v.SetDefault("WAIT_TIME_SECONDS", 0)
	v.SetDefault("PARTIAL_BATCH", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.AutomaticEnv()

	c := &Config{
		Env:             strings.ToLower(v.GetString("ENV")),
		Region:          v.GetString("AWS_REGION"),
		AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		Bucket:          v.GetString("S3_BUCKET_NAME"),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		QueueURL:        v.GetString("QUEUE_URL"),
		KeyPrefix:       strings.Trim(v.GetString("KEY_PREFIX"), "/"),
		MaxMessages:     clamp(v.GetInt64("MAX_MESSAGES"), 1, MaxBatch),
		WaitTimeSeconds: clamp(v.GetInt64("WAIT_TIME_SECONDS"), 0, 20),
		PartialBatch:    v.GetBool("PARTIAL_BATCH"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		ListenAddr:      v.GetString("LISTEN_ADDR"),
	}

	c.Endpoint = ResolveEndpoint(c.Env, v.GetString("LOCALSTACK_ENDPOINT"))

	// the emulator accepts any credentials, but the SDK still wants some
	if c.Endpoint != "" {
		if c.AccessKeyID == "" {
			c.AccessKeyID = "test"
		}
		if c.SecretAccessKey == "" {
			c.SecretAccessKey = "test"
		}
	}

	switch c.StoreDriver {
	case DriverS3, DriverMinio:
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", c.StoreDriver)
	}

	if c.Bucket == "" {
		return nil, fmt.Errorf("missing bucket name")
	}

	return c, nil
}

// ResolveEndpoint returns the service endpoint for an environment name.
// An explicit override wins; unknown environments get no override at all.
func ResolveEndpoint(env, override string) string {
	if override != "" {
		return override
	}
	switch env {
	case "local":
		return LocalEndpoint
	case "test":
		return TestEndpoint
	}
	return ""
}

// RequireQueue reports whether a queue URL has been configured.
func (c *Config) RequireQueue() error {
	if c.QueueURL == "" {
		return fmt.Errorf("missing environment variable: QUEUE_URL")
	}
	return nil
}

func clamp(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
