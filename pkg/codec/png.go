package codec

import (
	"bytes"
	"image"
	"image/png"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodePNG validates dimensions against the PNG quota before running the
// real decode, the Go substitute for libpng's png_set_user_limits: we
// never ask image/png to allocate a canvas we already know is too big.
func DecodePNG(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Png)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "png", "could not read header", err)
	}
	if cfg.Width > p.MaxWidth || cfg.Height > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "png: %dx%d exceeds %dx%d", cfg.Width, cfg.Height, p.MaxWidth, p.MaxHeight)
	}

	img, err := decodeRecovered(func() (image.Image, error) {
		return png.Decode(bytes.NewReader(data))
	})
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "png", "decode failed", err)
	}

	rgba := toRGBA(img)
	return &decoded.Decoded{
		Kind: mediakind.Png,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
		},
	}, nil
}
