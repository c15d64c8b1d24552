package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// vint1 encodes n (n <= 0x7E) as a one-byte EBML size VINT.
func vint1(n byte) byte { return 0x80 | n }

// buildTrackEntry returns one TrackEntry element containing a single
// TrackType child of the given value.
func buildTrackEntry(trackType byte) []byte {
	trackTypeElem := []byte{idTrackType, vint1(1), trackType}
	entry := append([]byte{idTrackEntry, vint1(byte(len(trackTypeElem)))}, trackTypeElem...)
	return entry
}

func buildMKV(trackTypes ...byte) []byte {
	var tracksContent []byte
	for _, tt := range trackTypes {
		tracksContent = append(tracksContent, buildTrackEntry(tt)...)
	}
	tracksID := []byte{0x16, 0x54, 0xAE, 0x6B}
	tracksElem := append(append([]byte{}, tracksID...), vint1(byte(len(tracksContent))))
	tracksElem = append(tracksElem, tracksContent...)

	segmentID := []byte{0x18, 0x53, 0x80, 0x67}
	segmentElem := append(append([]byte{}, segmentID...), vint1(byte(len(tracksElem))))
	segmentElem = append(segmentElem, tracksElem...)

	ebmlHeaderID := []byte{0x1A, 0x45, 0xDF, 0xA3}
	ebmlHeader := append(append([]byte{}, ebmlHeaderID...), vint1(0))

	return append(ebmlHeader, segmentElem...)
}

func TestValidateMKVAcceptsSingleVideoTrack(t *testing.T) {
	data := buildMKV(trackTypeVideo)
	meta, err := ValidateMKV(data)
	require.NoError(t, err)
	require.Equal(t, "mkv", meta.ContainerFormat)
	require.Equal(t, 1, meta.TrackCount)
	require.True(t, meta.Validated)
}

func TestValidateMKVRejectsNoVideoTrack(t *testing.T) {
	data := buildMKV(trackTypeAudio)
	_, err := ValidateMKV(data)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))
}

func TestValidateMKVRejectsTrackCountOverCap(t *testing.T) {
	types := make([]byte, 0, 9)
	types = append(types, trackTypeVideo)
	for i := 0; i < 8; i++ {
		types = append(types, trackTypeAudio)
	}
	data := buildMKV(types...)
	_, err := ValidateMKV(data)
	require.True(t, mediaerr.Is(err, mediaerr.TrackLimitExceeded))
}

func TestVintLength(t *testing.T) {
	require.Equal(t, 1, vintLength(0x80))
	require.Equal(t, 2, vintLength(0x40))
	require.Equal(t, 4, vintLength(0x10))
	require.Equal(t, 0, vintLength(0x00))
}

func TestReadVintMasksLengthMarker(t *testing.T) {
	value, length, err := readVint([]byte{0x81})
	require.NoError(t, err)
	require.Equal(t, 1, length)
	require.Equal(t, uint64(1), value)

	value, length, err = readVint([]byte{0x40, 0x0A})
	require.NoError(t, err)
	require.Equal(t, 2, length)
	require.Equal(t, uint64(10), value)
}
