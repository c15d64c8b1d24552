package codec

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// validGIF1x1 is a 1x1 canvas, global color table [black, white], single
// frame whose LZW stream decodes to palette index 1 (white).
var validGIF1x1 = []byte{
	'G', 'I', 'F', '8', '9', 'a',
	0x01, 0x00, // canvas width = 1
	0x01, 0x00, // canvas height = 1
	0x80, // packed: GCT present, 2 colors
	0x00, // background color index
	0x00, // pixel aspect ratio
	0x00, 0x00, 0x00, // color 0: black
	0xFF, 0xFF, 0xFF, // color 1: white
	0x2C,       // image descriptor
	0x00, 0x00, // left
	0x00, 0x00, // top
	0x01, 0x00, // width = 1
	0x01, 0x00, // height = 1
	0x00,       // packed: no LCT
	0x02,       // LZW minimum code size
	0x02,       // sub-block length
	0x4C, 0x01, // LZW data: clear(4), index 1, end(5)
	0x00, // block terminator
	0x3B, // trailer
}

// badColorTableGIF is identical to validGIF1x1 except its single pixel's
// LZW stream decodes to palette index 7, which is out of range for the
// 2-entry color table declared above.
var badColorTableGIF = []byte{
	'G', 'I', 'F', '8', '9', 'a',
	0x01, 0x00,
	0x01, 0x00,
	0x80,
	0x00,
	0x00,
	0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF,
	0x2C,
	0x00, 0x00,
	0x00, 0x00,
	0x01, 0x00,
	0x01, 0x00,
	0x00,
	0x03,       // LZW minimum code size 3, so literal code 7 exists
	0x02,       // sub-block length
	0x78, 0x09, // LZW data: clear(8), index 7, end(9)
	0x00,
	0x3B,
}

// Scenario B from spec.md §8: a 1x1 GIF with palette index 1 decodes to
// a single opaque white pixel.
func TestDecodeGIFScenarioB(t *testing.T) {
	d, err := DecodeGIF(validGIF1x1)
	require.NoError(t, err)
	require.Equal(t, 1, d.Image.Width)
	require.Equal(t, 1, d.Image.Height)
	rgba, ok := d.Image.Image.(*image.RGBA)
	require.True(t, ok)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, rgba.Pix)
}

// Scenario C from spec.md §8: the same frame shape but a palette index
// past the end of the color table must fail closed.
func TestDecodeGIFScenarioC(t *testing.T) {
	_, err := DecodeGIF(badColorTableGIF)
	require.True(t, mediaerr.Is(err, mediaerr.ColorTableOutOfRange))
}

func TestDecodeGIFRejectsFrameRectPastCanvas(t *testing.T) {
	data := append([]byte{}, validGIF1x1...)
	// image descriptor left field (byte offset 20) pushed past the 1px canvas
	data[20] = 0x05
	_, err := DecodeGIF(data)
	require.True(t, mediaerr.Is(err, mediaerr.ImageOutOfCanvas))
}

func TestDecodeGIFRejectsTruncatedHeader(t *testing.T) {
	_, err := DecodeGIF(validGIF1x1[:10])
	require.Error(t, err)
}
