// Package config loads logpool settings from YAML, TOML or JSON files and
// turns them into engine options and a store.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/logpool"
	"github.com/hupe1980/logpool/blobstore"
	"github.com/hupe1980/logpool/blobstore/minio"
	"github.com/hupe1980/logpool/blobstore/s3"
	"github.com/hupe1980/logpool/codec"
	"github.com/hupe1980/logpool/compress"
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Backends accepted in Config.Backend.
const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
	BackendLocal = "local"
)

// Environment variables overriding credentials and endpoints.
const (
	EnvAccessKeyID     = "LOGPOOL_ACCESS_KEY_ID"
	EnvSecretAccessKey = "LOGPOOL_SECRET_ACCESS_KEY"
	EnvEndpoint        = "LOGPOOL_ENDPOINT"
	EnvPool            = "LOGPOOL_POOL"
)

// Config is the parsed logpool configuration.
type Config struct {
	// Pool is the remote pool (bucket) receiving uploads (required).
	Pool string `yaml:"pool" toml:"pool" json:"pool"`

	// Backend selects the store: s3, minio or local. Default: s3.
	Backend string `yaml:"backend" toml:"backend" json:"backend"`

	// TemporaryDirectory holds staging files. Default: $TMPDIR/logpool.
	TemporaryDirectory string `yaml:"temporary_directory" toml:"temporary_directory" json:"temporary_directory"`

	// Prefix is prepended to remote keys.
	Prefix string `yaml:"prefix" toml:"prefix" json:"prefix"`

	// SizeFile rotates files at this many bytes. 0 disables.
	SizeFile int64 `yaml:"size_file" toml:"size_file" json:"size_file"`

	// TimeFile rotates files after this many seconds. 0 disables.
	TimeFile float64 `yaml:"time_file" toml:"time_file" json:"time_file"`

	Tags []string `yaml:"tags" toml:"tags" json:"tags"`

	// Restore re-uploads leftover staging files on start. Default: true.
	Restore *bool `yaml:"restore" toml:"restore" json:"restore"`

	// Codec is "line" (default) or "json".
	Codec string `yaml:"codec" toml:"codec" json:"codec"`

	// Compression is "none" (default), "lz4" or "zstd".
	Compression string `yaml:"compression" toml:"compression" json:"compression"`

	KeepFailedUploads bool `yaml:"keep_failed_uploads" toml:"keep_failed_uploads" json:"keep_failed_uploads"`
	PermissionCheck   bool `yaml:"permission_check" toml:"permission_check" json:"permission_check"`

	Upload Upload `yaml:"upload" toml:"upload" json:"upload"`
	S3     S3     `yaml:"s3" toml:"s3" json:"s3"`
	MinIO  MinIO  `yaml:"minio" toml:"minio" json:"minio"`
	Local  Local  `yaml:"local" toml:"local" json:"local"`
	Log    Log    `yaml:"log" toml:"log" json:"log"`
}

// Upload tunes the upload worker pool.
type Upload struct {
	Workers   int   `yaml:"workers" toml:"workers" json:"workers"`
	QueueSize int   `yaml:"queue_size" toml:"queue_size" json:"queue_size"`
	RateLimit int64 `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
}

// S3 configures the S3 backend (AWS S3, Ceph RGW, R2).
type S3 struct {
	Region          string `yaml:"region" toml:"region" json:"region"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	PathStyle       bool   `yaml:"path_style" toml:"path_style" json:"path_style"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key" json:"secret_access_key"`
	PartSize        int64  `yaml:"part_size" toml:"part_size" json:"part_size"`
	Concurrency     int    `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
	DisableChecksum bool   `yaml:"disable_checksum" toml:"disable_checksum" json:"disable_checksum"`
}

// MinIO configures the MinIO backend.
type MinIO struct {
	Endpoint  string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" toml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key" json:"secret_key"`
	Secure    bool   `yaml:"secure" toml:"secure" json:"secure"`
}

// Local configures the directory-backed pool.
type Local struct {
	// Root is the directory holding pools; the pool is a subdirectory.
	Root string `yaml:"root" toml:"root" json:"root"`
}

// Log configures engine logging.
type Log struct {
	// Level is debug, info, warn or error. Default: info.
	Level string `yaml:"level" toml:"level" json:"level"`
	// Format is text or json. Default: text.
	Format string `yaml:"format" toml:"format" json:"format"`
}

// Load parses the config file at path. The format follows the extension.
func Load(path string) (*Config, error) {
	var parser func([]byte, *Config) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = parseYAML
	case ".toml":
		parser = parseTOML
	case ".json":
		parser = parseJSON
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := parser(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func parseYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict: error on unknown fields
	return decoder.Decode(cfg)
}

func parseTOML(data []byte, cfg *Config) error {
	_, err := toml.Decode(string(data), cfg)
	return err
}

func parseJSON(data []byte, cfg *Config) error {
	return gojson.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPool); v != "" {
		c.Pool = v
	}
	if v := os.Getenv(EnvAccessKeyID); v != "" {
		c.S3.AccessKeyID = v
		c.MinIO.AccessKey = v
	}
	if v := os.Getenv(EnvSecretAccessKey); v != "" {
		c.S3.SecretAccessKey = v
		c.MinIO.SecretKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.S3.Endpoint = v
		c.MinIO.Endpoint = v
	}
}

// Validate checks the config for errors. Every rejection matches
// logpool.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Pool == "" {
		return invalid("pool", "is required", nil)
	}

	switch c.Backend {
	case "", BackendS3, BackendLocal:
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			return invalid("minio.endpoint", "is required for the minio backend", nil)
		}
	default:
		return invalid("backend", fmt.Sprintf("unknown backend %q", c.Backend), nil)
	}

	if strings.ContainsAny(c.Prefix, "^`<>") {
		return invalid("prefix", fmt.Sprintf("%q contains one of ^ ` < >", c.Prefix), nil)
	}
	if c.SizeFile < 0 {
		return invalid("size_file", "must not be negative", nil)
	}
	if c.TimeFile < 0 {
		return invalid("time_file", "must not be negative", nil)
	}
	if c.Upload.Workers < 0 || c.Upload.QueueSize < 0 || c.Upload.RateLimit < 0 {
		return invalid("upload", "settings must not be negative", nil)
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		return invalid("codec", fmt.Sprintf("unknown codec %q", c.Codec), nil)
	}
	if _, err := compress.Parse(c.Compression); err != nil {
		return invalid("compression", err.Error(), err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", err.Error(), err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return invalid("log.format", fmt.Sprintf("unknown log format %q", c.Log.Format), nil)
	}

	return nil
}

func invalid(field, reason string, cause error) error {
	err := &logpool.ConfigError{Field: field, Reason: reason}
	if cause != nil {
		return fmt.Errorf("%w: %w", err, cause)
	}
	return err
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendS3
	}
	if c.TemporaryDirectory == "" {
		c.TemporaryDirectory = logpool.DefaultTemporaryDirectory()
	}
	if c.Restore == nil {
		restore := true
		c.Restore = &restore
	}
	if c.Codec == "" {
		c.Codec = "line"
	}
	if c.Compression == "" {
		c.Compression = compress.None.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Local.Root == "" {
		c.Local.Root = "."
	}
}

// TimeFileDuration returns TimeFile as a duration. Positive values too small
// to represent are raised to one nanosecond so periodic rotation stays on;
// the engine's timer floor applies from there.
func (c *Config) TimeFileDuration() time.Duration {
	d := time.Duration(c.TimeFile * float64(time.Second))
	if c.TimeFile > 0 && d <= 0 {
		return time.Nanosecond
	}
	return d
}

// Logger builds the engine logger from the log section.
func (c *Config) Logger() *logpool.Logger {
	level, _ := parseLevel(c.Log.Level)
	if c.Log.Format == "json" {
		return logpool.NewJSONLogger(level)
	}
	return logpool.NewTextLogger(level)
}

// Options converts the config into engine options. It expects a validated
// config as returned by Load.
func (c *Config) Options() []logpool.Option {
	cd, _ := codec.ByName(c.Codec)
	alg, _ := compress.Parse(c.Compression)

	restore := true
	if c.Restore != nil {
		restore = *c.Restore
	}

	return []logpool.Option{
		logpool.WithPool(c.Pool),
		logpool.WithTemporaryDirectory(c.TemporaryDirectory),
		logpool.WithPrefix(c.Prefix),
		logpool.WithSizeFile(c.SizeFile),
		logpool.WithTimeFile(c.TimeFileDuration()),
		logpool.WithTags(c.Tags...),
		logpool.WithRestore(restore),
		logpool.WithCodec(cd),
		logpool.WithCompression(alg),
		logpool.WithUploadWorkers(c.Upload.Workers),
		logpool.WithUploadQueueSize(c.Upload.QueueSize),
		logpool.WithUploadRateLimit(c.Upload.RateLimit),
		logpool.WithKeepFailedUploads(c.KeepFailedUploads),
		logpool.WithPermissionCheck(c.PermissionCheck),
		logpool.WithLogger(c.Logger()),
	}
}

// NewStore builds the store for the configured backend and pool.
func (c *Config) NewStore(ctx context.Context) (blobstore.Store, error) {
	switch c.Backend {
	case BackendS3, "":
		uploadCfg := s3.DefaultUploadConfig()
		if c.S3.PartSize > 0 {
			uploadCfg.PartSize = c.S3.PartSize
		}
		if c.S3.Concurrency > 0 {
			uploadCfg.Concurrency = c.S3.Concurrency
		}
		uploadCfg.EnableChecksum = !c.S3.DisableChecksum

		opts := []s3.Option{
			s3.WithRegion(c.S3.Region),
			s3.WithEndpoint(c.S3.Endpoint),
			s3.WithPathStyle(c.S3.PathStyle),
			s3.WithUploadConfig(uploadCfg),
		}
		if c.S3.AccessKeyID != "" {
			opts = append(opts, s3.WithCredentials(c.S3.AccessKeyID, c.S3.SecretAccessKey))
		}
		return s3.New(ctx, c.Pool, opts...)
	case BackendMinIO:
		return minio.Dial(c.MinIO.Endpoint, c.MinIO.AccessKey, c.MinIO.SecretKey, c.Pool, c.MinIO.Secure)
	case BackendLocal:
		return blobstore.NewLocalStore(filepath.Join(c.Local.Root, c.Pool)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
