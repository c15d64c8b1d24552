package container

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

func box(typ string, payload []byte) []byte {
	b := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(b[0:4], uint32(8+len(payload)))
	copy(b[4:8], typ)
	copy(b[8:], payload)
	return b
}

func mvhdPayload(timescale, duration uint32) []byte {
	p := make([]byte, 20)
	binary.BigEndian.PutUint32(p[12:16], timescale)
	binary.BigEndian.PutUint32(p[16:20], duration)
	return p
}

func tkhdPayload(width, heightFixed uint32) []byte {
	p := make([]byte, 84)
	binary.BigEndian.PutUint32(p[76:80], width)
	binary.BigEndian.PutUint32(p[80:84], heightFixed)
	return p
}

func hdlrPayload(handlerType string) []byte {
	p := make([]byte, 12)
	copy(p[8:12], handlerType)
	return p
}

func buildMP4(widthFixed, heightFixed uint32) []byte {
	mvhd := box("mvhd", mvhdPayload(1000, 1000))
	tkhd := box("tkhd", tkhdPayload(widthFixed, heightFixed))
	hdlr := box("hdlr", hdlrPayload("vide"))
	mdia := box("mdia", hdlr)
	trak := box("trak", append(append([]byte{}, tkhd...), mdia...))
	moov := box("moov", append(append([]byte{}, mvhd...), trak...))
	return moov
}

// Scenario E from spec.md §8: a video track at exactly the enforced
// 3840x2160 video cap (16.16 fixed point) validates clean. Scenario E's
// literal 4096 width is wider than spec.md §6's quota table allows, so
// the boundary here is exercised at the cap this module actually
// enforces (see DESIGN.md).
func TestValidateMP4AcceptsTrackWithinCap(t *testing.T) {
	data := buildMP4(3840<<16, 2160<<16)
	meta, err := ValidateMP4(data)
	require.NoError(t, err)
	require.Equal(t, "mp4", meta.ContainerFormat)
	require.Equal(t, 3840, meta.MaxWidth)
	require.Equal(t, 2160, meta.MaxHeight)
	require.True(t, meta.Validated)
}

// Scenario F from spec.md §8: one unit past the cap must fail closed.
func TestValidateMP4RejectsTrackOverWidthCap(t *testing.T) {
	data := buildMP4(3841<<16, 2160<<16)
	_, err := ValidateMP4(data)
	require.True(t, mediaerr.Is(err, mediaerr.DimensionExceeded))
}

func TestValidateMP4RejectsMissingMoov(t *testing.T) {
	_, err := ValidateMP4(box("ftyp", []byte("isom")))
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))
}

func TestValidateMP4RejectsNoVideoTrack(t *testing.T) {
	mvhd := box("mvhd", mvhdPayload(1000, 1000))
	tkhd := box("tkhd", tkhdPayload(100<<16, 100<<16))
	hdlr := box("hdlr", hdlrPayload("soun"))
	mdia := box("mdia", hdlr)
	trak := box("trak", append(append([]byte{}, tkhd...), mdia...))
	moov := box("moov", append(append([]byte{}, mvhd...), trak...))

	_, err := ValidateMP4(moov)
	require.True(t, mediaerr.Is(err, mediaerr.StructuralParseFailure))
}
