package config

import (
	"os"
	"time"
)

var RenderCacheTTL time.Duration
var CompileTimeout time.Duration

func init() {
	RenderCacheTTL = 5 * time.Minute
	if raw := os.Getenv("RENDER_CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			RenderCacheTTL = d
		}
	}

	// Component source is author-supplied; compilation never runs unbounded.
	CompileTimeout = 2 * time.Second
	if raw := os.Getenv("COMPILE_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			CompileTimeout = d
		}
	}
}
