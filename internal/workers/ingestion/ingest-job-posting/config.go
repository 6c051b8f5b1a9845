package ingestjobposting

import (
	"time"

	"job-applier/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives handler settings from the worker section.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 10 * time.Second}
	if wcfg.Timeout > 0 {
		cfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
	}
	return cfg
}
