package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Assignment modes for comments submitted between full runs.
const (
	AssignIsolated = "isolated"
	AssignNearest  = "nearest"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

type ServerConfig struct {
	Port            int        `mapstructure:"port"`
	Mode            string     `mapstructure:"mode"`
	CORS            CORSConfig `mapstructure:"cors"`
	ClassifyOnStart bool       `mapstructure:"classify_on_start"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SeedOnEmpty     bool          `mapstructure:"seed_on_empty"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type LLMConfig struct {
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Stop         string        `mapstructure:"stop"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SystemPrompt string        `mapstructure:"system_prompt"`
}

type PipelineConfig struct {
	Clusters       int     `mapstructure:"clusters"`
	ClusterSeed    int64   `mapstructure:"cluster_seed"`
	ProjectionSeed int64   `mapstructure:"projection_seed"`
	KMeansInit     int     `mapstructure:"kmeans_init"`
	KMeansMaxIter  int     `mapstructure:"kmeans_max_iter"`
	Perplexity     float64 `mapstructure:"tsne_perplexity"`
	TSNEIterations int     `mapstructure:"tsne_iterations"`
	AssignMode     string  `mapstructure:"assign_mode"`
	CacheEnabled   bool    `mapstructure:"cache_enabled"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

// SnapshotConfig controls where the theme map is exported after each run.
type SnapshotConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // local, s3, r2, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	LocalDir  string `mapstructure:"local_dir"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("snapshot.access_key", "S3_ACCESS_KEY")
	v.BindEnv("snapshot.secret_key", "S3_SECRET_KEY")
	v.BindEnv("snapshot.endpoint", "S3_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.classify_on_start", true)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/comments.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed_on_empty", true)

	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.max_tokens", 10000)
	v.SetDefault("llm.stop", "###")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("pipeline.clusters", 5)
	v.SetDefault("pipeline.cluster_seed", 16)
	v.SetDefault("pipeline.projection_seed", 42)
	v.SetDefault("pipeline.kmeans_init", 10)
	v.SetDefault("pipeline.kmeans_max_iter", 300)
	v.SetDefault("pipeline.tsne_perplexity", 30.0)
	v.SetDefault("pipeline.tsne_iterations", 1000)
	v.SetDefault("pipeline.assign_mode", AssignIsolated)
	v.SetDefault("pipeline.cache_enabled", true)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_interval", 500*time.Millisecond)
	v.SetDefault("retry.max_interval", 5*time.Second)
	v.SetDefault("retry.multiplier", 2.0)

	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.type", "local")
	v.SetDefault("snapshot.prefix", "themes")
	v.SetDefault("snapshot.local_dir", "./data/snapshots")
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.Clusters < 1 {
		return fmt.Errorf("pipeline.clusters must be at least 1, got %d", c.Pipeline.Clusters)
	}
	switch c.Pipeline.AssignMode {
	case AssignIsolated, AssignNearest:
	default:
		return fmt.Errorf("pipeline.assign_mode: unknown mode %q", c.Pipeline.AssignMode)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
