// Package sandbox provides the Envelope every decode call runs inside:
// a process-level isolation boundary combining Linux namespaces, a
// seccomp syscall allow-list, and a restricted-open filesystem view.
// The interface is platform-neutral; platform-specific implementations
// live in envelope_linux.go and envelope_other.go.
package sandbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
)

// Profile selects the seccomp allow-list a call runs under. Each format
// class gets the narrowest profile that still lets its adapter work.
type Profile int

const (
	ProfileBase Profile = iota
	ProfileSVG
	ProfileVideo
)

// Envelope isolates a single decode invocation. Decode is called once
// per input; implementations must not retain state across calls.
type Envelope interface {
	Decode(ctx context.Context, profile Profile, data []byte, opts DecodeOptions) (*decoded.Decoded, error)
}

// DecodeOptions carries the per-call overrides the sandboxed worker
// needs but that don't belong on Profile (which only selects a seccomp
// allow-list).
type DecodeOptions struct {
	WasmModulePath string
	WasmRuntime    string
}

// New returns the platform's Envelope implementation.
func New() Envelope {
	return newPlatformEnvelope()
}

// correlationID tags one envelope invocation for log correlation,
// enrichment from ManuGH-xg2g's request-ID stack (github.com/google/uuid)
// so an isolation-envelope failure can be traced back to the specific
// decode call without leaking attacker-controlled input into the CLI's
// own stdout.
func correlationID() string {
	return uuid.NewString()
}
