// Package config resolves this module's runtime settings with the same
// flags-then-env-then-defaults precedence and fsnotify-based directory
// watching that ManuGH-xg2g's internal/config package uses for its own
// reloadable configuration, scoped down here to the handful of settings
// mediaharden actually needs: where to find a WASM runtime for video
// decode, which WASM module directory to watch, and where to serve
// metrics.
package config

import (
	"flag"
	"os"
	"strconv"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
)

const (
	envWasmRuntime  = "MEDIAHARDEN_WASM_RUNTIME"
	envWasmDir      = "FFMPEG_WASM_PATH"
	envMetricsAddr  = "MEDIAHARDEN_METRICS_ADDR"
	envMemoryLimit  = "MEDIAHARDEN_MEMORY_LIMIT_BYTES"

	defaultWasmRuntime = "wasmtime"
	defaultMetricsAddr = "127.0.0.1:9090"
	defaultMemoryLimit = int64(2_000_000_000) // 2GB, matching the original source's default
)

// Config is the fully resolved runtime configuration.
type Config struct {
	WasmRuntime      string
	WasmModuleDir    string
	MetricsAddr      string
	MemoryLimitBytes int64
}

// Flags mirrors Config's fields as flag.FlagSet registrations so
// cmd/mediaharden can let command-line flags win over environment
// variables, which win over the built-in defaults.
type Flags struct {
	WasmRuntime   string
	WasmModuleDir string
	MetricsAddr   string
}

// RegisterFlags adds this package's flags to fs. Call before fs.Parse.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.WasmRuntime, "wasm-runtime", "", "WASM runtime binary for video decode (overrides "+envWasmRuntime+")")
	fs.StringVar(&f.WasmModuleDir, "wasm-module-dir", "", "directory containing WASM decode modules (overrides "+envWasmDir+")")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "address to serve /metrics and /health on (overrides "+envMetricsAddr+")")
	return f
}

// Load resolves Config from flags, then environment, then defaults, in
// that precedence order, logging which source won each setting the way
// ManuGH-xg2g's config.ParseString does.
func Load(f *Flags) *Config {
	cfg := &Config{
		WasmRuntime:      resolveString("wasm_runtime", f.WasmRuntime, envWasmRuntime, defaultWasmRuntime),
		WasmModuleDir:    resolveString("wasm_module_dir", f.WasmModuleDir, envWasmDir, ""),
		MetricsAddr:      resolveString("metrics_addr", f.MetricsAddr, envMetricsAddr, defaultMetricsAddr),
		MemoryLimitBytes: resolveInt64("memory_limit_bytes", envMemoryLimit, defaultMemoryLimit),
	}
	return cfg
}

func resolveString(field, flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		telemetrylog.WithField("field", field).WithField("source", "flag").Debugf("config resolved")
		return flagValue
	}
	if v, ok := os.LookupEnv(envKey); ok && v != "" {
		telemetrylog.WithField("field", field).WithField("source", "env").Debugf("config resolved")
		return v
	}
	telemetrylog.WithField("field", field).WithField("source", "default").Debugf("config resolved")
	return defaultValue
}

func resolveInt64(field, envKey string, defaultValue int64) int64 {
	if v, ok := os.LookupEnv(envKey); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			telemetrylog.WithField("field", field).WithField("source", "env").Debugf("config resolved")
			return n
		}
		telemetrylog.WithField("field", field).Warnf("config: invalid integer %q for %s, using default", v, envKey)
	}
	telemetrylog.WithField("field", field).WithField("source", "default").Debugf("config resolved")
	return defaultValue
}
