package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	VariantREST    = "rest"
	VariantGraphQL = "graphql"

	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageDynamoDB = "dynamodb"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV"`
	Port         int    `envconfig:"PORT" default:"8080"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile      string `envconfig:"LOG_FILE"`

	API struct {
		BaseURL           string  `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
		GraphQLURL        string  `envconfig:"API_GRAPHQL_URL" default:"http://localhost:8000/graphql"`
		TimeoutSeconds    int     `envconfig:"API_TIMEOUT" default:"15"`
		RetryAttempts     uint    `envconfig:"API_RETRY_ATTEMPTS" default:"3"`
		RequestsPerSecond float64 `envconfig:"API_REQUESTS_PER_SECOND" default:"10"`
		Burst             int     `envconfig:"API_BURST" default:"5"`
	}
	StoreVariant string `envconfig:"STORE_VARIANT" default:"rest"`

	Storage struct {
		Driver string `envconfig:"STORAGE_DRIVER" default:"file"`
		Dir    string `envconfig:"STORAGE_DIR" default:".moviehub"`
	}
	DB struct {
		Driver    string `envconfig:"DB_DRIVER"`
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
	}
	DynamoDB struct {
		Region       string `envconfig:"DDB_REGION"`
		Endpoint     string `envconfig:"DDB_ENDPOINT"`
		AccessKey    string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey    string `envconfig:"DDB_SECRET_KEY"`
		SessionToken string `envconfig:"DDB_SESSION_TOKEN"`
		KVTable      string `envconfig:"DDB_KV_TABLE" default:"moviehub_kv"`
	}
}

// APITimeout is the per-request timeout of the movie API clients.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreVariant {
	case VariantREST, VariantGraphQL:
	default:
		return fmt.Errorf("unknown STORE_VARIANT %q", c.StoreVariant)
	}
	switch c.Storage.Driver {
	case StorageFile, StoragePostgres, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	return nil
}
