// Package quota holds the immutable, compile-time resource limits every
// format's validator enforces before any codec runs. Values are the
// authoritative defaults from spec.md §6.
package quota

import "github.com/hardenmedia/mediaharden/pkg/mediakind"

const (
	MiB = 1024 * 1024
)

// Policy is one quota record. Zero fields are simply not enforced for
// that kind (e.g. audio kinds don't carry MaxWidth).
type Policy struct {
	MaxBytes           int64
	MaxWidth           int
	MaxHeight          int
	MaxDurationSeconds float64
	MaxChannels        int
	MaxSampleRateHz    int
	MaxTrackCount      int
	MaxIFDCount        int
	MaxChunkCache      int
	MaxChunkMalloc     int
	MaxFrameRate       float64
	MaxBitrateBps      int64
}

// For returns the canonical policy for a kind. Callers must not mutate
// the returned value's backing store across calls; Policy is small enough
// to be handled by value everywhere.
func For(k mediakind.Kind) Policy {
	switch k {
	case mediakind.Png:
		return Policy{MaxWidth: 8192, MaxHeight: 8192, MaxChunkCache: 128, MaxChunkMalloc: 256 * 1024}
	case mediakind.Jpeg:
		return Policy{MaxWidth: 10000, MaxHeight: 10000, MaxBitrateBps: 0} // JPEG working memory cap enforced in codec, see pkg/codec/jpeg.go
	case mediakind.Gif:
		return Policy{MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.WebP:
		return Policy{MaxBytes: 50 * MiB, MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.Heif:
		return Policy{MaxBytes: 100 * MiB, MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.Avif:
		return Policy{MaxBytes: 256 * MiB, MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.JpegXl:
		return Policy{MaxBytes: 256 * MiB, MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.Tiff:
		return Policy{MaxBytes: 500 * MiB, MaxWidth: 16384, MaxHeight: 16384, MaxIFDCount: 100}
	case mediakind.OpenExr:
		return Policy{MaxBytes: 500 * MiB, MaxWidth: 16384, MaxHeight: 16384}
	case mediakind.Svg:
		return Policy{MaxWidth: 256, MaxHeight: 256}
	case mediakind.Mp3, mediakind.Vorbis, mediakind.Flac, mediakind.Opus:
		return Policy{MaxBytes: 100 * MiB, MaxDurationSeconds: 600, MaxChannels: 8, MaxSampleRateHz: 192000}
	case mediakind.VideoContainer:
		return Policy{
			MaxBytes:           500 * MiB,
			MaxWidth:           3840,
			MaxHeight:          2160,
			MaxDurationSeconds: 3600,
			MaxTrackCount:      8,
			MaxFrameRate:       120,
			MaxBitrateBps:      50_000_000,
		}
	default:
		return Policy{}
	}
}

// Metadata size caps that apply regardless of the carrying format.
const (
	MaxICCProfileBytes = 2 * MiB
	MaxEXIFBlockBytes  = 1 * MiB

	// JPEG decoder working-memory ceiling (spec.md §6).
	JPEGWorkingMemoryBytes = 64 * MiB
)
