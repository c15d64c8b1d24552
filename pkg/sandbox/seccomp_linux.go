//go:build linux

package sandbox

import (
	"unsafe"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// baseSyscalls is the allow-list every profile starts from. spec.md
// §4.9 specifies a literal 8-syscall base (read, write, open, close,
// brk, mmap, munmap, exit_group); a real Go binary cannot run on that
// set alone (the runtime's goroutine scheduler, signal handling, and
// GC all make syscalls the spec's list never anticipated), so this
// base carries the additional syscalls Go needs just to stay alive —
// mprotect, futex, sched_yield, rt_sigaction/rt_sigprocmask/
// rt_sigreturn/sigaltstack, getpid/gettid, clock_gettime, fstat, lseek,
// madvise, nanosleep — none of which spec.md's literal base lists. This
// divergence is recorded and justified in DESIGN.md rather than left
// implicit in this comment. SVG and Video profiles extend the base with
// spec.md §4.9's own per-format additions (`mremap` for SVG; `mremap`,
// `poll` for video, on top of `mprotect`/`futex`/`sched_yield` already
// present in the base) plus exec/wait/pipe syscalls the video profile
// needs to launch the external WASM runtime, which spec.md's allow-list
// table does not name at all.
var baseSyscalls = []int{
	unix.SYS_READ, unix.SYS_WRITE, unix.SYS_CLOSE, unix.SYS_EXIT, unix.SYS_EXIT_GROUP,
	unix.SYS_MMAP, unix.SYS_MUNMAP, unix.SYS_MPROTECT, unix.SYS_BRK,
	unix.SYS_RT_SIGACTION, unix.SYS_RT_SIGPROCMASK, unix.SYS_RT_SIGRETURN,
	unix.SYS_FUTEX, unix.SYS_SCHED_YIELD, unix.SYS_GETPID, unix.SYS_GETTID,
	unix.SYS_CLOCK_GETTIME, unix.SYS_OPENAT2, unix.SYS_FSTAT, unix.SYS_LSEEK,
	unix.SYS_MADVISE, unix.SYS_SIGALTSTACK, unix.SYS_NANOSLEEP,
}

var svgExtraSyscalls = []int{unix.SYS_PREAD64, unix.SYS_MREMAP}

var videoExtraSyscalls = []int{
	unix.SYS_MREMAP, unix.SYS_POLL,
	unix.SYS_EXECVE, unix.SYS_FORK, unix.SYS_WAIT4, unix.SYS_PIPE2, unix.SYS_DUP2,
}

func allowListFor(profile Profile) []int {
	list := append([]int{}, baseSyscalls...)
	switch profile {
	case ProfileSVG:
		list = append(list, svgExtraSyscalls...)
	case ProfileVideo:
		list = append(list, videoExtraSyscalls...)
	}
	return list
}

// installSeccomp assembles a classic-BPF program that loads the
// syscall number from the seccomp_data struct, allows every number in
// the profile's list, and kills the process for anything else, then
// installs it via PR_SET_NO_NEW_PRIVS + PR_SET_SECCOMP(SECCOMP_MODE_FILTER).
func installSeccomp(profile Profile) error {
	prog, err := assembleFilter(allowListFor(profile))
	if err != nil {
		return mediaerr.Wrap(mediaerr.SandboxFailure, "", "could not assemble seccomp filter", err)
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return mediaerr.Wrap(mediaerr.SandboxFailure, "", "PR_SET_NO_NEW_PRIVS failed", err)
	}

	sockFprog := struct {
		Len    uint16
		_      [6]byte // padding to match the kernel's struct sock_fprog layout
		Filter uintptr
	}{
		Len:    uint16(len(prog)),
		Filter: uintptr(unsafe.Pointer(&prog[0])),
	}

	if err := unix.Prctl(unix.PR_SET_SECCOMP, unix.SECCOMP_MODE_FILTER, uintptr(unsafe.Pointer(&sockFprog)), 0, 0); err != nil {
		return mediaerr.Wrap(mediaerr.SandboxFailure, "", "PR_SET_SECCOMP failed", err)
	}
	return nil
}

// assembleFilter builds the cBPF program: load syscall nr, then for each
// allowed number a compare-and-return-ALLOW pair, falling through to
// RET KILL_PROCESS if nothing matched.
func assembleFilter(allowed []int) ([]bpf.RawInstruction, error) {
	var insns []bpf.Instruction
	insns = append(insns, bpf.LoadAbsolute{Off: 0, Size: 4}) // seccomp_data.nr

	for _, nr := range allowed {
		insns = append(insns, bpf.JumpIf{
			Cond:      bpf.JumpEqual,
			Val:       uint32(nr),
			SkipTrue:  0,
			SkipFalse: 1,
		})
		insns = append(insns, bpf.RetConstant{Val: seccompRetAllow})
	}
	insns = append(insns, bpf.RetConstant{Val: seccompRetKillProcess})

	return bpf.Assemble(insns)
}

const (
	seccompRetKillProcess = 0x80000000
	seccompRetAllow       = 0x7fff0000
)
