package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreDriverBolt      = "bolt"
	StoreDriverMongo     = "mongo"
	StoreDriverPostgREST = "postgrest"
	StoreDriverPostgres  = "postgres"
	StoreDriverRedis     = "redis"
)

// Image providers
const (
	ImageProviderCloudinary = "cloudinary"
	ImageProviderS3         = "s3"
	ImageProviderSupabase   = "supabase"
	ImageProviderLog        = "log"
)

// Config is the main configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Images  ImagesConfig  `yaml:"images"`
	Paths   PathsConfig   `yaml:"paths"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"` // Prometheus metrics configuration
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout   time.Duration `yaml:"write_timeout"`    // default: 30s
	IdleTimeout    time.Duration `yaml:"idle_timeout"`     // default: 60s
	MaxUploadBytes int64         `yaml:"max_upload_bytes"` // default: 10MB
	CORSOrigins    []string      `yaml:"cors_origins"`     // default: all
}

// StoreConfig selects and locates the template store
type StoreConfig struct {
	Driver     string        `yaml:"driver"` // bolt, mongo, postgrest, redis
	URL        string        `yaml:"url"`    // file path, mongodb://, http(s)://, redis://
	APIKey     string        `yaml:"api_key"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"` // collection, table or key prefix
	Timeout    time.Duration `yaml:"timeout"`    // connect timeout
}

// ImagesConfig contains the hosted image service settings
type ImagesConfig struct {
	Provider   string           `yaml:"provider"` // cloudinary, s3, supabase, log
	Folder     string           `yaml:"folder"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	S3         S3Config         `yaml:"s3"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
}

// CloudinaryConfig contains Cloudinary credentials
type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// S3Config contains settings for any S3-compatible object store
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"` // base URL objects are served from
}

// SupabaseConfig contains Supabase storage settings
type SupabaseConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
}

// PathsConfig contains local working directories
type PathsConfig struct {
	UploadDir   string `yaml:"upload_dir"`
	DownloadDir string `yaml:"download_dir"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled    bool     `yaml:"enabled"`
	ListenAddr string   `yaml:"listen_addr"` // Default: :9090
	Path       string   `yaml:"path"`        // Default: /metrics
	AllowedIPs []string `yaml:"allowed_ips"` // IP addresses/CIDRs allowed to access metrics
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load builds the configuration from an optional YAML file and the environment
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if port := get("PORT"); port != "" {
		c.Server.ListenAddr = ":" + port
	}

	if uri := get("MONGODB_CONNECTION_STRING"); uri != "" {
		if c.Store.Driver == "" {
			c.Store.Driver = StoreDriverMongo
		}
		if c.Store.Driver == StoreDriverMongo {
			c.Store.URL = uri
		}
	}
	if v := get("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := get("STORE_URL"); v != "" {
		c.Store.URL = v
	}

	name, key, secret := get("CLOUDINARY_CLOUD_NAME"), get("CLOUDINARY_API_KEY"), get("CLOUDINARY_API_SECRET")
	if name != "" {
		c.Images.Cloudinary.CloudName = name
	}
	if key != "" {
		c.Images.Cloudinary.APIKey = key
	}
	if secret != "" {
		c.Images.Cloudinary.APISecret = secret
	}
	if name != "" && key != "" && secret != "" && c.Images.Provider == "" {
		c.Images.Provider = ImageProviderCloudinary
	}
	if v := get("IMAGE_PROVIDER"); v != "" {
		c.Images.Provider = v
	}

	if v := get("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := get("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":3001"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 10 * 1024 * 1024 // 10MB
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverBolt
	}
	if c.Store.Driver == StoreDriverBolt && c.Store.URL == "" {
		c.Store.URL = "data/emailbuilder.db"
	}
	if c.Store.Database == "" {
		c.Store.Database = "emailbuilder"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "emailtemplates"
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 10 * time.Second
	}

	if c.Images.Folder == "" {
		c.Images.Folder = "email_templates"
	}
	if c.Images.S3.Region == "" {
		c.Images.S3.Region = "auto"
	}

	if c.Paths.UploadDir == "" {
		c.Paths.UploadDir = "uploads"
	}
	if c.Paths.DownloadDir == "" {
		c.Paths.DownloadDir = "downloads"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	// Metrics defaults
	if c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateImages(); err != nil {
		return err
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// validateStore validates store configuration
func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverBolt, StoreDriverMongo, StoreDriverPostgREST, StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("invalid store.driver: %s (must be bolt, mongo, postgrest, postgres or redis)", c.Store.Driver)
	}

	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required for driver %s", c.Store.Driver)
	}

	return nil
}

// validateImages validates image provider configuration
func (c *Config) validateImages() error {
	img := c.Images

	switch img.Provider {
	case ImageProviderCloudinary:
		if img.Cloudinary.CloudName == "" || img.Cloudinary.APIKey == "" || img.Cloudinary.APISecret == "" {
			return fmt.Errorf("images.cloudinary requires cloud_name, api_key and api_secret")
		}
	case ImageProviderS3:
		if img.S3.Bucket == "" {
			return fmt.Errorf("images.s3.bucket is required")
		}
		if img.S3.AccessKey == "" || img.S3.SecretKey == "" {
			return fmt.Errorf("images.s3 requires access_key and secret_key")
		}
	case ImageProviderSupabase:
		if img.Supabase.URL == "" || img.Supabase.Key == "" || img.Supabase.Bucket == "" {
			return fmt.Errorf("images.supabase requires url, key and bucket")
		}
	case ImageProviderLog:
	case "":
		// no provider: the service runs, every upload fails
	default:
		return fmt.Errorf("invalid images.provider: %s (must be cloudinary, s3, supabase, or log)", img.Provider)
	}

	return nil
}
