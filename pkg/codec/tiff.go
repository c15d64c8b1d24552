package codec

import (
	"bytes"
	"image"

	"golang.org/x/image/tiff"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeTIFF is the one "validate-only elsewhere" format that gets a
// real pixel decode: golang.org/x/image/tiff is pure Go, unlike
// HEIF/AVIF/JPEG XL/OpenEXR which have no such decoder in the corpus or
// the wider ecosystem. The IFD-count cap approximates libtiff's
// directory-chain loop guard; x/image/tiff doesn't expose a raw IFD
// walker, so we count directories ourselves before handing off to it.
func DecodeTIFF(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Tiff)

	if n, err := countIFDs(data); err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "tiff", "could not walk IFD chain", err)
	} else if n > p.MaxIFDCount {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "tiff: %d IFDs exceeds cap %d", n, p.MaxIFDCount)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "tiff", "could not read header", err)
	}
	if cfg.Width > p.MaxWidth || cfg.Height > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "tiff: %dx%d exceeds %dx%d", cfg.Width, cfg.Height, p.MaxWidth, p.MaxHeight)
	}

	img, err := decodeRecovered(func() (image.Image, error) {
		return tiff.Decode(bytes.NewReader(data))
	})
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "tiff", "decode failed", err)
	}

	rgba := toRGBA(img)
	return &decoded.Decoded{
		Kind: mediakind.Tiff,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  rgba.Bounds().Dx(),
			Height: rgba.Bounds().Dy(),
		},
	}, nil
}

// countIFDs walks the IFD chain by offset only, reading entry counts to
// skip each directory without decoding any tag values. It exists purely
// as a bound check ahead of the real decode.
func countIFDs(data []byte) (int, error) {
	if len(data) < 8 {
		return 0, mediaerr.New(mediaerr.FileTooSmall, "tiff: header shorter than 8 bytes")
	}
	var bo func([]byte) uint16
	var bo32 func([]byte) uint32
	switch {
	case bytes.Equal(data[0:2], []byte("II")):
		bo = le16
		bo32 = le32
	case bytes.Equal(data[0:2], []byte("MM")):
		bo = be16
		bo32 = be32
	default:
		return 0, mediaerr.New(mediaerr.InvalidMagic, "tiff: unrecognized byte order marker")
	}

	offset := bo32(data[4:8])
	count := 0
	seen := map[uint32]bool{}
	for offset != 0 {
		if count > 100000 {
			return count, mediaerr.New(mediaerr.StructuralParseFailure, "tiff: IFD chain did not terminate")
		}
		if seen[offset] {
			return count, mediaerr.New(mediaerr.StructuralParseFailure, "tiff: IFD chain contains a cycle")
		}
		seen[offset] = true
		if int(offset)+2 > len(data) {
			return count, mediaerr.New(mediaerr.StructuralParseFailure, "tiff: IFD offset out of bounds")
		}
		count++
		numEntries := bo(data[offset : offset+2])
		nextOff := int(offset) + 2 + int(numEntries)*12
		if nextOff+4 > len(data) {
			return count, mediaerr.New(mediaerr.StructuralParseFailure, "tiff: IFD next-pointer out of bounds")
		}
		offset = bo32(data[nextOff : nextOff+4])
	}
	return count, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func be16(b []byte) uint16 { return uint16(b[1]) | uint16(b[0])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func be32(b []byte) uint32 {
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}
