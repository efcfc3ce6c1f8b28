package daemon

import (
	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/blob"
	"github.com/mjgale/cams/internal/inmem"
	"github.com/mjgale/cams/internal/logr"
)

// Config configures the camsd daemon. Descriptions of each field can be found
// in the flag definitions in ./cmd/camsd
type Config struct {
	Address  string
	Database string
	Blob     blob.S3Config
	// DevMode swaps the blob store for an in-memory fake so camsd can run
	// without S3 credentials.
	DevMode bool

	CacheConfig *inmem.CacheConfig

	SSL                  bool
	CertFile, KeyFile    string
	EnableRequestLogging bool

	LogConfig logr.Config
}

// NewConfig constructs a camsd configuration with defaults.
func NewConfig() Config {
	return Config{
		CacheConfig: &inmem.CacheConfig{},
	}
}

func (cfg *Config) Valid() error {
	if cfg.Database == "" {
		return &internal.ErrMissingParameter{Parameter: "database"}
	}
	if !cfg.DevMode && cfg.Blob.Bucket == "" {
		return &internal.ErrMissingParameter{Parameter: "bucket"}
	}
	return nil
}
