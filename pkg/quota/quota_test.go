package quota

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediakind"
)

func TestForMatchesSpecDefaults(t *testing.T) {
	cases := []struct {
		kind   mediakind.Kind
		policy Policy
	}{
		{mediakind.Png, Policy{MaxWidth: 8192, MaxHeight: 8192, MaxChunkCache: 128, MaxChunkMalloc: 256 * 1024}},
		{mediakind.Jpeg, Policy{MaxWidth: 10000, MaxHeight: 10000}},
		{mediakind.WebP, Policy{MaxBytes: 50 * MiB, MaxWidth: 16384, MaxHeight: 16384}},
		{mediakind.Heif, Policy{MaxBytes: 100 * MiB, MaxWidth: 16384, MaxHeight: 16384}},
		{mediakind.VideoContainer, Policy{
			MaxBytes: 500 * MiB, MaxWidth: 3840, MaxHeight: 2160,
			MaxDurationSeconds: 3600, MaxTrackCount: 8, MaxFrameRate: 120, MaxBitrateBps: 50_000_000,
		}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.policy, For(tc.kind), "kind %v", tc.kind)
	}
}

func TestForUnknownKindIsZeroValue(t *testing.T) {
	require.Equal(t, Policy{}, For(mediakind.Unknown))
}

func TestMetadataCaps(t *testing.T) {
	require.Equal(t, int64(2*MiB), int64(MaxICCProfileBytes))
	require.Equal(t, int64(1*MiB), int64(MaxEXIFBlockBytes))
	require.Equal(t, int64(64*MiB), int64(JPEGWorkingMemoryBytes))
}
