// internal/workers/customization/recommend-template/config.go
package recommendtemplate

import (
	"time"

	"job-applier/internal/common/config"
)

type Config struct {
	TopN    int
	Timeout time.Duration
}

// LoadConfig combines the worker section with the catalog's default TopN.
func LoadConfig(wcfg config.WorkerConfig, topN int) *Config {
	cfg := &Config{TopN: topN, Timeout: 5 * time.Second}
	if wcfg.Timeout > 0 {
		cfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return cfg
}
