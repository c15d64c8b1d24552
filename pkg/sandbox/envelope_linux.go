//go:build linux

package sandbox

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/dispatch"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

type linuxEnvelope struct{}

func newPlatformEnvelope() Envelope {
	return linuxEnvelope{}
}

// Decode copies data into a fresh scratch directory, then re-execs
// /proc/self/exe with WorkerFlag under CLONE_NEWPID|CLONE_NEWNET|
// CLONE_NEWNS so the worker sees its own process/network/mount
// namespace. The worker restricts its filesystem view to the scratch
// directory and installs its seccomp filter before ever touching the
// decode logic; see RunWorker.
func (linuxEnvelope) Decode(ctx context.Context, profile Profile, data []byte, opts DecodeOptions) (*decoded.Decoded, error) {
	id := correlationID()
	telemetrylog.WithField("correlation_id", id).Infof("sandbox: starting isolated decode")

	scratchDir, err := os.MkdirTemp("", "mediaharden-sandbox-*")
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not create scratch directory", err)
	}
	defer os.RemoveAll(scratchDir)

	scratchPath := filepath.Join(scratchDir, "input")
	if err := os.WriteFile(scratchPath, data, 0o600); err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not stage scratch input", err)
	}

	self, err := os.Executable()
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not resolve own executable path", err)
	}

	cmd := exec.CommandContext(ctx, self, WorkerFlag)
	cmd.Env = append(os.Environ(),
		EnvScratchPath+"="+scratchPath,
		EnvProfile+"="+strconv.Itoa(int(profile)),
		EnvWasmModule+"="+opts.WasmModulePath,
		EnvWasmRuntime+"="+opts.WasmRuntime,
	)
	cmd.SysProcAttr = &unix.SysProcAttr{
		Cloneflags: unix.CLONE_NEWPID | unix.CLONE_NEWNET | unix.CLONE_NEWNS,
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		telemetrylog.WithField("correlation_id", id).Errorf("sandbox: worker failed: %s", stderr.String())
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "sandboxed worker exited with an error", err)
	}

	report, err := unmarshalReport(stdout.Bytes())
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not parse worker report", err)
	}
	if !report.OK {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, report.ErrorMsg)
	}

	telemetrylog.WithField("correlation_id", id).Infof("sandbox: decode completed")
	return decodeFromReport(report)
}

// RunWorker is the entry point cmd/mediaharden's main() calls when it
// detects WorkerFlag on argv. It reads the scratch file through Openat2
// rooted at the scratch directory, then installs the seccomp filter for
// the requested profile (which does not allow the plain openat that
// opening the directory needs), then runs the real decode and writes a
// single JSON report line to stdout.
func RunWorker() int {
	scratchPath := os.Getenv(EnvScratchPath)
	profile := Profile(atoiOrZero(os.Getenv(EnvProfile)))

	data, err := openRestricted(scratchPath)
	if err != nil {
		writeWorkerError(err)
		return 2
	}

	if err := installSeccomp(profile); err != nil {
		writeWorkerError(err)
		return 2
	}

	d, decodeErr := decodeInWorker(data, os.Getenv(EnvWasmModule), os.Getenv(EnvWasmRuntime))
	if decodeErr != nil {
		writeWorkerError(decodeErr)
		return 1
	}

	report, err := marshalReport(encodeReport(d))
	if err != nil {
		writeWorkerError(err)
		return 1
	}
	os.Stdout.Write(report)
	return 0
}

// openRestricted opens the scratch file through Openat2 with
// RESOLVE_BENEATH|RESOLVE_NO_SYMLINKS rooted at the scratch directory,
// the same mechanism spec.md §4.9's restrict_filesystem calls for, in
// place of Landlock (no mature Go binding exists in the corpus or
// the broader ecosystem as of this writing).
func openRestricted(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	dirFd, err := unix.Open(dir, unix.O_DIRECTORY|unix.O_RDONLY, 0)
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not open scratch directory", err)
	}
	defer unix.Close(dirFd)

	how := unix.OpenHow{
		Flags:   unix.O_RDONLY,
		Resolve: unix.RESOLVE_BENEATH | unix.RESOLVE_NO_SYMLINKS,
	}
	fd, err := unix.Openat2(dirFd, base, &how)
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.SandboxFailure, "", "openat2 rejected scratch file access", err)
	}
	defer unix.Close(fd)

	var buf bytes.Buffer
	chunk := make([]byte, 64*1024)
	for {
		n, err := unix.Read(fd, chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if n == 0 || err != nil {
			break
		}
	}
	return buf.Bytes(), nil
}

func writeWorkerError(err error) {
	report, _ := marshalReport(workerReport{OK: false, ErrorMsg: err.Error()})
	os.Stdout.Write(report)
}

func decodeInWorker(data []byte, wasmModule, wasmRuntime string) (*decoded.Decoded, error) {
	return dispatch.DecodeWithOptions(context.Background(), data, dispatch.Options{
		WasmModulePath: wasmModule,
		WasmRuntime:    wasmRuntime,
	})
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

