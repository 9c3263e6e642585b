package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medigenie/internal/flagx"
	"github.com/dmitrijs2005/medigenie/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Keys missing from the file keep
// their current values.
type JsonConfig struct {
	StorageBackend string `json:"storage_backend"`
	SQLitePath     string `json:"sqlite_path"`
	PostgresDSN    string `json:"postgres_dsn"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`

	S3Endpoint  string `json:"s3_endpoint"`
	S3Region    string `json:"s3_region"`
	S3Bucket    string `json:"s3_bucket"`
	S3Prefix    string `json:"s3_prefix"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`

	InferenceBaseURL string         `json:"inference_base_url"`
	Model            string         `json:"model"`
	MapsModel        string         `json:"maps_model"`
	APIKey           string         `json:"api_key"`
	InferenceTimeout timex.Duration `json:"inference_timeout"`

	Passphrase string `json:"passphrase"`
	APIAddr    string `json:"api_addr"`

	LogBackend string `json:"log_backend"`
	LogLevel   string `json:"log_level"`
	LogFormat  string `json:"log_format"`
}

func toJson(c *Config) JsonConfig {
	return JsonConfig{
		StorageBackend:   c.StorageBackend,
		SQLitePath:       c.SQLitePath,
		PostgresDSN:      c.PostgresDSN,
		RedisAddr:        c.RedisAddr,
		RedisPassword:    c.RedisPassword,
		RedisDB:          c.RedisDB,
		RedisPrefix:      c.RedisPrefix,
		S3Endpoint:       c.S3Endpoint,
		S3Region:         c.S3Region,
		S3Bucket:         c.S3Bucket,
		S3Prefix:         c.S3Prefix,
		S3AccessKey:      c.S3AccessKey,
		S3SecretKey:      c.S3SecretKey,
		InferenceBaseURL: c.InferenceBaseURL,
		Model:            c.Model,
		MapsModel:        c.MapsModel,
		APIKey:           c.APIKey,
		InferenceTimeout: timex.Duration{Duration: c.InferenceTimeout},
		Passphrase:       c.Passphrase,
		APIAddr:          c.APIAddr,
		LogBackend:       c.LogBackend,
		LogLevel:         c.LogLevel,
		LogFormat:        c.LogFormat,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.StorageBackend = jc.StorageBackend
	c.SQLitePath = jc.SQLitePath
	c.PostgresDSN = jc.PostgresDSN
	c.RedisAddr = jc.RedisAddr
	c.RedisPassword = jc.RedisPassword
	c.RedisDB = jc.RedisDB
	c.RedisPrefix = jc.RedisPrefix
	c.S3Endpoint = jc.S3Endpoint
	c.S3Region = jc.S3Region
	c.S3Bucket = jc.S3Bucket
	c.S3Prefix = jc.S3Prefix
	c.S3AccessKey = jc.S3AccessKey
	c.S3SecretKey = jc.S3SecretKey
	c.InferenceBaseURL = jc.InferenceBaseURL
	c.Model = jc.Model
	c.MapsModel = jc.MapsModel
	c.APIKey = jc.APIKey
	c.InferenceTimeout = jc.InferenceTimeout.Duration
	c.Passphrase = jc.Passphrase
	c.APIAddr = jc.APIAddr
	c.LogBackend = jc.LogBackend
	c.LogLevel = jc.LogLevel
	c.LogFormat = jc.LogFormat
}

// parseJson overlays cfg with the JSON file named by -c/-config (or
// $MEDIGENIE_CONFIG). No path means nothing to do. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := toJson(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}
