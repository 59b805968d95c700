package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// Workflow modes for the retrieval trigger.
const (
	ModeStatic    = "static"
	ModeDirectory = "directory"
)

// Status store backends.
const (
	StoreDynamo   = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// AWSConfig selects the region and, for local stacks and S3-compatible
// object stores, a custom endpoint with static keys.
type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// SFTPConfig points the direct lister at the remote server. An empty Addr
// means directory listings go through the connector instead.
type SFTPConfig struct {
	Addr     string
	SecretID string
	HostKey  string
	Timeout  time.Duration
}

// WebhookConfig describes the optional batch-finished webhook. A ClientID
// switches the notifier to OAuth2 client-credentials auth.
type WebhookConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// ListingConfig bounds connector directory listings.
type ListingConfig struct {
	Prefix       string
	MaxItems     int
	PollInterval time.Duration
	MaxAttempts  int
}

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFormat   string

	ConnectorID   string
	BucketName    string
	DestPrefix    string
	SourceDir     string
	SendRemoteDir string

	WorkflowMode      string
	ReconcileStrategy string
	// ReconcileInterval drives the in-process reconcile ticker; zero leaves
	// reconciliation to external triggers only.
	ReconcileInterval time.Duration

	StateStore     string
	BatchTableName string
	FileTableName  string
	DBURL          string

	JWTSecret string

	AWS        AWSConfig
	SFTP       SFTPConfig
	Webhook    WebhookConfig
	Listing    ListingConfig
	CorsConfig cors.Options
}

// Load reads the environment (plus an optional env file) into a Config.
// Missing or inconsistent required values are an error; callers treat them as
// fatal.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),

		ConnectorID:   getEnv("CONNECTOR_ID", ""),
		BucketName:    getEnv("S3_BUCKET_NAME", ""),
		DestPrefix:    strings.TrimRight(getEnv("S3_DESTINATION_PREFIX", "retrieved"), "/"),
		SourceDir:     getEnv("SOURCE_DIRECTORY", "/uploads"),
		SendRemoteDir: getEnv("SEND_REMOTE_DIRECTORY", ""),

		WorkflowMode:      getEnv("WORKFLOW_MODE", ModeStatic),
		ReconcileStrategy: getEnv("RECONCILE_STRATEGY", ""),
		ReconcileInterval: getDurationEnv("RECONCILE_INTERVAL", 0),

		StateStore:     getEnv("STATE_STORE", StoreDynamo),
		BatchTableName: getEnv("BATCH_TABLE_NAME", "sftpflow_batches"),
		FileTableName:  getEnv("FILE_TABLE_NAME", "sftpflow_files"),
		DBURL:          getEnv("DB_URL", ""),

		JWTSecret: getEnv("API_JWT_SECRET", ""),

		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			Endpoint:        getEnv("AWS_ENDPOINT_URL", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		SFTP: SFTPConfig{
			Addr:     getEnv("SFTP_ADDR", ""),
			SecretID: getEnv("SFTP_SECRET_ID", ""),
			HostKey:  getEnv("SFTP_HOST_KEY", ""),
			Timeout:  getDurationEnv("SFTP_TIMEOUT", 30*time.Second),
		},
		Webhook: WebhookConfig{
			URL:          getEnv("WEBHOOK_URL", ""),
			ClientID:     getEnv("WEBHOOK_CLIENT_ID", ""),
			ClientSecret: getEnv("WEBHOOK_CLIENT_SECRET", ""),
			TokenURL:     getEnv("WEBHOOK_TOKEN_URL", ""),
		},
		Listing: ListingConfig{
			Prefix:       getEnv("LISTING_PREFIX", "listings"),
			MaxItems:     getIntEnv("LISTING_MAX_ITEMS", 1000),
			PollInterval: getDurationEnv("LISTING_POLL_INTERVAL", 2*time.Second),
			MaxAttempts:  getIntEnv("LISTING_MAX_ATTEMPTS", 30),
		},
		CorsConfig: corsConfig(splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))),
	}

	if cfg.ReconcileStrategy == "" {
		// The static workflow tracks no real transfer ids, so only the age
		// heuristic can close its batches.
		if cfg.WorkflowMode == ModeStatic {
			cfg.ReconcileStrategy = "heuristic"
		} else {
			cfg.ReconcileStrategy = "results"
		}
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.ConnectorID == "" {
		return fmt.Errorf("CONNECTOR_ID is required")
	}
	if c.BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}
	switch c.WorkflowMode {
	case ModeStatic, ModeDirectory:
	default:
		return fmt.Errorf("WORKFLOW_MODE must be %q or %q, got %q", ModeStatic, ModeDirectory, c.WorkflowMode)
	}
	switch c.ReconcileStrategy {
	case "results", "heuristic":
	default:
		return fmt.Errorf("RECONCILE_STRATEGY must be \"results\" or \"heuristic\", got %q", c.ReconcileStrategy)
	}
	switch c.StateStore {
	case StoreDynamo, StoreMemory:
	case StorePostgres:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STATE_STORE is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("STATE_STORE must be %q, %q or %q, got %q", StoreDynamo, StorePostgres, StoreMemory, c.StateStore)
	}
	if c.SFTP.Addr != "" && c.SFTP.SecretID == "" {
		return fmt.Errorf("SFTP_SECRET_ID is required when SFTP_ADDR is set")
	}
	if c.Webhook.ClientID != "" && c.Webhook.TokenURL == "" {
		return fmt.Errorf("WEBHOOK_TOKEN_URL is required when WEBHOOK_CLIENT_ID is set")
	}
	return nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Println("Ignoring invalid value for", key)
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Println("Ignoring invalid value for", key)
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func corsConfig(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}
}
