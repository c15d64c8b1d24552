//go:build !linux

package sandbox

import (
	"context"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/dispatch"
)

// noopEnvelope decodes in-process with no namespace/seccomp/filesystem
// isolation. Every hardening technique in envelope_linux.go is a Linux
// primitive (namespaces, seccomp, Openat2); there is no portable
// equivalent, so other platforms get a plain decode with a log line
// making the gap explicit rather than a false sense of containment.
type noopEnvelope struct{}

func newPlatformEnvelope() Envelope {
	return noopEnvelope{}
}

func (noopEnvelope) Decode(ctx context.Context, profile Profile, data []byte, opts DecodeOptions) (*decoded.Decoded, error) {
	telemetrylog.Warnf("sandbox: process isolation unavailable on this platform, decoding without a sandbox envelope")
	return dispatch.DecodeWithOptions(ctx, data, dispatch.Options{
		WasmModulePath: opts.WasmModulePath,
		WasmRuntime:    opts.WasmRuntime,
	})
}

// RunWorker never runs on non-Linux builds: Decode above never re-execs
// a sandboxed child here, so cmd/mediaharden never sets WorkerFlag on
// argv in the first place. It exists only so main() links on every
// platform.
func RunWorker() int {
	telemetrylog.Errorf("sandbox: worker mode requested on an unsupported platform")
	return 2
}
