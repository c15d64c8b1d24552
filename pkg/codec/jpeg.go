package codec

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeJPEG mirrors DecodePNG's probe-then-decode shape: the dimension
// probe stands in for libjpeg's cinfo.image_width/image_height check
// ahead of jpeg_start_decompress, and the post-probe working-memory
// estimate (width * height * 4 for the RGBA output buffer) stands in for
// libjpeg's own memory manager ceiling.
func DecodeJPEG(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Jpeg)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "jpeg", "could not read header", err)
	}
	if cfg.Width > p.MaxWidth || cfg.Height > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "jpeg: %dx%d exceeds %dx%d", cfg.Width, cfg.Height, p.MaxWidth, p.MaxHeight)
	}
	if estimatedBytes := int64(cfg.Width) * int64(cfg.Height) * 4; estimatedBytes > quota.JPEGWorkingMemoryBytes {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "jpeg: decoded size %d bytes exceeds working memory cap %d", estimatedBytes, quota.JPEGWorkingMemoryBytes)
	}

	img, err := decodeRecovered(func() (image.Image, error) {
		return jpeg.Decode(bytes.NewReader(data))
	})
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "jpeg", "decode failed", err)
	}

	rgba := toRGBA(img)
	return &decoded.Decoded{
		Kind: mediakind.Jpeg,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
		},
	}, nil
}
