package codec

import (
	"bytes"
	"image"

	"golang.org/x/image/webp"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeWebP probes the VP8/VP8L/VP8X feature header before the real
// decode, the same features-before-pixels shape the retrieval corpus's
// from-scratch WebP decoder uses internally, except here the bit-level
// VP8/VP8L decode itself is delegated to golang.org/x/image/webp.
func DecodeWebP(data []byte) (*decoded.Decoded, error) {
	if len(data) < 30 {
		return nil, errTooSmall("webp", len(data))
	}
	p := quota.For(mediakind.WebP)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "webp: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "webp", "could not read feature header", err)
	}
	if cfg.Width > p.MaxWidth || cfg.Height > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "webp: %dx%d exceeds %dx%d", cfg.Width, cfg.Height, p.MaxWidth, p.MaxHeight)
	}

	img, err := decodeRecovered(func() (image.Image, error) {
		return webp.Decode(bytes.NewReader(data))
	})
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "webp", "decode failed", err)
	}

	rgba := toRGBA(img)
	return &decoded.Decoded{
		Kind: mediakind.WebP,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
		},
	}, nil
}
