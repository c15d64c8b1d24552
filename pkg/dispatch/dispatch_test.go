package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
)

var validPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x08, 0xD7, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D,
	0xB0, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestDecodeUnknownMagicIsInvalidMagic(t *testing.T) {
	_, err := Decode(context.Background(), []byte("not a media file at all"))
	require.True(t, mediaerr.Is(err, mediaerr.InvalidMagic))
}

func TestDecodePNGRoundTrip(t *testing.T) {
	d, err := Decode(context.Background(), validPNG)
	require.NoError(t, err)
	require.Equal(t, mediakind.Png, d.Kind)
	require.NotNil(t, d.Image)
	require.Equal(t, 1, d.Image.Width)
	require.Equal(t, 1, d.Image.Height)
}

func TestDecodeAudioRejectsNonAudioKind(t *testing.T) {
	_, err := DecodeAudio(validPNG)
	require.True(t, mediaerr.Is(err, mediaerr.UnsupportedFormat))
}

func TestValidateVideoContainerRejectsNonContainer(t *testing.T) {
	_, err := ValidateVideoContainer(validPNG)
	require.True(t, mediaerr.Is(err, mediaerr.UnsupportedFormat))
}

func TestSupportedFormatsNonEmpty(t *testing.T) {
	require.NotEmpty(t, SupportedFormats())
}

func TestVersionStringDefaultsToDev(t *testing.T) {
	require.Equal(t, "dev", VersionString())
}
