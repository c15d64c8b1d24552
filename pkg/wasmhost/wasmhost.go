// Package wasmhost execs an external WebAssembly runtime binary to
// decode video, generalizing stash's pkg/ffmpeg command-wrapping shape
// (Generate/GenerateOutput: build a *exec.Cmd, tee stderr, classify the
// error) from an "ffmpeg" binary to a WASM runtime binary. It is
// deliberately a process boundary rather than an in-process WASM VM
// library: the same namespace/seccomp envelope pkg/sandbox builds for
// still-image decoding covers this path too, instead of needing a
// second, parallel capability model embedded in a Go WASM runtime.
package wasmhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

const (
	defaultRuntime = "wasmtime"
	envRuntime     = "MEDIAHARDEN_WASM_RUNTIME"
	envModulePath  = "FFMPEG_WASM_PATH"
)

// Options overrides the runtime binary and module path the environment
// would otherwise resolve.
type Options struct {
	Runtime    string
	ModulePath string
}

// Decode pipes data over the runtime's stdin and parses its stdout as
// container metadata. The runtime and module deny clock, filesystem,
// and network capabilities by construction (spec.md §4.7); this
// package only launches the process, it does not itself configure that
// sandbox — pkg/sandbox.Envelope wraps the whole call.
func Decode(ctx context.Context, data []byte, opts Options) (*decoded.MediaMetadata, error) {
	runtime := opts.Runtime
	if runtime == "" {
		runtime = os.Getenv(envRuntime)
	}
	if runtime == "" {
		runtime = defaultRuntime
	}

	modulePath := opts.ModulePath
	if modulePath == "" {
		modulePath = os.Getenv(envModulePath)
	}
	if modulePath == "" {
		return nil, mediaerr.New(mediaerr.SandboxFailure, "wasmhost: no WASM module path configured")
	}

	cmd := exec.CommandContext(ctx, runtime, "run", modulePath)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	telemetrylog.Infof("[wasmhost] running %s against module %s", runtime, modulePath)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			telemetrylog.Errorf("[wasmhost] stderr: %s", stderr.String())
		}
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "video", "wasm runtime invocation failed", err)
	}

	return parseReport(stdout.Bytes())
}

// parseReport reads the minimal line-oriented report the WASM module
// writes to stdout: "width height duration_seconds track_count". A
// fuller wire format is a natural follow-on once a concrete runtime is
// wired in; spec.md §4.7 only requires the MediaMetadata shape below.
func parseReport(out []byte) (*decoded.MediaMetadata, error) {
	var width, height, trackCount int
	var duration float64
	n, err := fmt.Sscan(string(out), &width, &height, &duration, &trackCount)
	if err != nil || n != 4 {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "video", "could not parse wasm runtime report", err)
	}
	return &decoded.MediaMetadata{
		ContainerFormat: "video",
		MaxWidth:        width,
		MaxHeight:       height,
		DurationSec:     duration,
		TrackCount:      trackCount,
		Validated:       true,
	}, nil
}
