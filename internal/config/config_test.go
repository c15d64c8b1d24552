package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPrecedenceFlagBeatsEnvBeatsDefault(t *testing.T) {
	t.Setenv("MEDIAHARDEN_WASM_RUNTIME", "env-runtime")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-wasm-runtime", "flag-runtime"}))

	cfg := Load(f)
	require.Equal(t, "flag-runtime", cfg.WasmRuntime)
}

func TestLoadFallsBackToEnvThenDefault(t *testing.T) {
	t.Setenv("MEDIAHARDEN_METRICS_ADDR", "127.0.0.1:1234")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg := Load(f)
	require.Equal(t, "127.0.0.1:1234", cfg.MetricsAddr)
	require.Equal(t, defaultWasmRuntime, cfg.WasmRuntime)
	require.Equal(t, "", cfg.WasmModuleDir)
}

func TestLoadMemoryLimitInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("MEDIAHARDEN_MEMORY_LIMIT_BYTES", "not-a-number")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg := Load(f)
	require.Equal(t, defaultMemoryLimit, cfg.MemoryLimitBytes)
}
