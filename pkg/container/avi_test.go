package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

func riffChunk(id string, payload []byte) []byte {
	b := make([]byte, 8+len(payload))
	copy(b[0:4], id)
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(payload)))
	copy(b[8:], payload)
	return b
}

func avihPayload(microSecPerFrame, totalFrames uint32, width, height int) []byte {
	p := make([]byte, 56)
	binary.LittleEndian.PutUint32(p[0:4], microSecPerFrame)
	binary.LittleEndian.PutUint32(p[16:20], totalFrames)
	binary.LittleEndian.PutUint32(p[32:36], uint32(width))
	binary.LittleEndian.PutUint32(p[36:40], uint32(height))
	return p
}

func strhPayload(streamType string) []byte {
	p := make([]byte, 4)
	copy(p, streamType)
	return p
}

func buildAVI(width, height int) []byte {
	avih := riffChunk("avih", avihPayload(1000, 30, width, height))
	strh := riffChunk("strh", strhPayload("vids"))
	strl := append([]byte("strl"), strh...)
	strlList := riffChunk("LIST", strl)
	hdrl := append(append([]byte("hdrl"), avih...), strlList...)
	hdrlList := riffChunk("LIST", hdrl)

	body := append([]byte("AVI "), hdrlList...)
	riff := make([]byte, 8+len(body))
	copy(riff[0:4], "RIFF")
	binary.LittleEndian.PutUint32(riff[4:8], uint32(len(body)))
	copy(riff[8:], body)
	return riff
}

// Scenario D from spec.md §8: the RIFF declared size field disagrees
// with the chunk's actual length, which must fail closed rather than be
// tolerated as a soft mismatch.
func TestValidateAVIRejectsDeclaredSizeMismatch(t *testing.T) {
	data := buildAVI(320, 240)
	binary.LittleEndian.PutUint32(data[4:8], binary.LittleEndian.Uint32(data[4:8])+1)
	_, err := ValidateAVI(data)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))
}

func TestValidateAVIAcceptsWellFormedFile(t *testing.T) {
	data := buildAVI(320, 240)
	meta, err := ValidateAVI(data)
	require.NoError(t, err)
	require.Equal(t, 320, meta.MaxWidth)
	require.Equal(t, 240, meta.MaxHeight)
	require.True(t, meta.Validated)
}

func TestValidateAVIRejectsMissingSignature(t *testing.T) {
	_, err := ValidateAVI([]byte("RIFF\x00\x00\x00\x00WAVE"))
	require.True(t, mediaerr.Is(err, mediaerr.InvalidMagic))
}

func TestValidateAVIRejectsOversizedDimensions(t *testing.T) {
	data := buildAVI(7680, 4320)
	_, err := ValidateAVI(data)
	require.True(t, mediaerr.Is(err, mediaerr.DimensionExceeded))
}
