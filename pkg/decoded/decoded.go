// Package decoded holds the result types every codec adapter returns.
// Go has no tagged unions, so Decoded carries an explicit Kind
// discriminant alongside one populated payload field; callers must switch
// on Kind rather than probe fields for nilness.
package decoded

import (
	"image"

	"github.com/hardenmedia/mediaharden/pkg/mediakind"
)

// Decoded is the uniform result of a successful decode operation. Exactly
// one of Image, Audio, Video is non-nil, selected by Kind.
type Decoded struct {
	Kind  mediakind.Kind
	Image *ImagePayload
	Audio *AudioPayload
	Video *MediaMetadata
}

// ImagePayload carries a fully decoded raster plus the source format's
// incidental metadata. Formats validated but not pixel-decoded (HEIF,
// AVIF, JPEG XL, OpenEXR) never produce one of these: the validate-only
// codec path returns no payload at all, only an UnsupportedFormat error
// once its checks pass.
type ImagePayload struct {
	Image       image.Image
	Width       int
	Height      int
	ICCProfile  []byte
	EXIFPresent bool
}

// AudioPayload carries the fully decoded, interleaved PCM samples
// alongside their shape. Samples is channel-interleaved 16-bit signed
// PCM: len(Samples) == SampleRateHz * Channels * DurationSec.
type AudioPayload struct {
	Samples      []int16
	SampleRateHz int
	Channels     int
	DurationSec  float64
	BitrateBps   int64
}

// MediaMetadata is the container-level summary validate_video_container
// returns and a decoded video carries. Validated is false until
// every structural invariant for the format has been checked; no field
// is trustworthy while it is false.
type MediaMetadata struct {
	ContainerFormat string
	MaxWidth        int
	MaxHeight       int
	DurationSec     float64
	TrackCount      int
	FrameRate       float64
	BitrateBps      int64
	Validated       bool
}
