package config

import (
	"encoding/json"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"jobstorage"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`

	MaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
}

type svcConfig struct {
	Address        string   `envconfig:"JOB_STORAGE_ADDRESS" default:":8080"`
	MetricsAddress string   `envconfig:"JOB_STORAGE_METRICS_ADDRESS" default:":8081"`
	LogLevel       string   `envconfig:"JOB_STORAGE_LOG_LEVEL" default:"info"`
	AllowedOrigins []string `envconfig:"JOB_STORAGE_ALLOWED_ORIGINS" default:"*"`
	// LatencyBuckets are the request latency histogram buckets, in milliseconds.
	LatencyBuckets []float64 `envconfig:"JOB_STORAGE_LATENCY_BUCKETS" default:"300,500,1000,5000"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewSqlite returns a configuration backed by a local sqlite file, used by tests and local runs.
func NewSqlite(path string) *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: path},
		Service: &svcConfig{
			Address:        ":8080",
			MetricsAddress: ":8081",
			LogLevel:       "debug",
			AllowedOrigins: []string{"*"},
			LatencyBuckets: []float64{300, 500, 1000, 5000},
		},
	}
}

func (c *Config) String() string {
	redacted := *c.Database
	redacted.Password = "********"
	val, _ := json.Marshal(struct {
		Database dbConfig
		Service  *svcConfig
	}{redacted, c.Service})
	return string(val)
}
