package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// streaminfoOnlyFLAC builds a minimal FLAC stream consisting of just the
// "fLaC" magic, a single last-metadata-block STREAMINFO header, and the
// 34-byte STREAMINFO body, with sample_rate/channels/bits_per_sample
// packed into the spec's 20/3/5/36-bit layout and no frame data at all.
// DecodeFLAC's sample-rate cap check runs against stream.Info before
// any frame is parsed, so this is sufficient to exercise it.
//
// spec.md §8 scenario G describes this boundary as an MP3 frame
// declaring a 192 kHz sample rate, but MP3's frame header only selects
// from a fixed table of rates at or below 48 kHz (MPEG 1/2/2.5) — no
// real MP3 bitstream can declare 192 kHz. FLAC's STREAMINFO sample rate
// is an unconstrained 20-bit field, so it is used here as the feasible
// substitute for exercising the same SampleRateExceeded boundary (see
// DESIGN.md).
func streaminfoOnlyFLAC(sampleRate uint32, channels, bitsPerSample int) []byte {
	packed := make([]byte, 8)
	v := uint64(sampleRate&0xFFFFF) << 44
	v |= uint64((channels-1)&0x7) << 41
	v |= uint64((bitsPerSample-1)&0x1F) << 36
	for i := 0; i < 8; i++ {
		packed[i] = byte(v >> uint(56-8*i))
	}

	body := make([]byte, 34)
	body[0], body[1] = 0x10, 0x00 // min blocksize 4096
	body[2], body[3] = 0x10, 0x00 // max blocksize 4096
	// min/max framesize left zero
	copy(body[10:18], packed)
	// MD5 left zero

	data := []byte{'f', 'L', 'a', 'C', 0x80, 0x00, 0x00, 0x22}
	return append(data, body...)
}

func TestDecodeFLACScenarioG(t *testing.T) {
	_, err := DecodeFLAC(streaminfoOnlyFLAC(192001, 2, 16))
	require.True(t, mediaerr.Is(err, mediaerr.SampleRateExceeded))
}

func TestDecodeFLACAcceptsSampleRateAtCap(t *testing.T) {
	d, err := DecodeFLAC(streaminfoOnlyFLAC(192000, 2, 16))
	require.NoError(t, err)
	require.Equal(t, 192000, d.Audio.SampleRateHz)
	require.Equal(t, 2, d.Audio.Channels)
}
