package redis

import (
	"os"
	"strconv"

	"github.com/unkn0wn-root/cachefan"
)

// Environment keys for deployments that configure the store outside code.
const (
	EnvURL       = "CACHEFAN_REDIS_URL"
	EnvScanBatch = "CACHEFAN_SCAN_BATCH"
)

// FromEnv reads the store configuration from the environment. An unset URL
// is not an error: the resulting store is permanently not ready and callers
// run uncached. A malformed scan batch falls back to the default.
func FromEnv(log cachefan.Logger) Config {
	cfg := Config{
		URL:    os.Getenv(EnvURL),
		Logger: log,
	}
	if raw := os.Getenv(EnvScanBatch); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			if log != nil {
				log.Warn("ignoring bad scan batch value", cachefan.Fields{"value": raw})
			}
		} else {
			cfg.ScanBatch = n
		}
	}
	return cfg
}
