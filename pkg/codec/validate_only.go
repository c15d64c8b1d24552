package codec

import (
	"bytes"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// ValidateOnly checks the magic bytes and the file-size cap for a
// format with no pure-Go pixel decoder (HEIF, AVIF, JPEG XL, OpenEXR,
// Opus), then returns UnsupportedFormat. It does not walk boxes or read
// dimensions, and for JPEG XL the magic check is only a minimum length
// of 2 bytes. This mirrors the original
// Rust source's own formats/avif.rs, formats/exr.rs: those decode_*
// functions already do every check below and end with "not yet
// implemented — requires native FFI"; this adapter carries the same
// validation over a native FFI boundary Go has no equivalent need for,
// and keeps the same terminal error.
//
// dispatch.DecodeWithOptions is its only caller. A kind whose build tag
// is off is refused here with UnsupportedFormat before any check runs.
func ValidateOnly(k mediakind.Kind, data []byte) (*decoded.MediaMetadata, error) {
	if !mediakind.Enabled(k) {
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: not enabled in this build", k)
	}

	if err := validateMagic(k, data); err != nil {
		return nil, err
	}

	p := quota.For(k)
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "%s: %d bytes exceeds cap %d", k, len(data), p.MaxBytes)
	}

	return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: structurally valid, decoding not yet implemented for this build", k)
}

func validateMagic(k mediakind.Kind, data []byte) error {
	switch k {
	case mediakind.Avif, mediakind.Heif:
		if len(data) < 12 {
			return mediaerr.New(mediaerr.FileTooSmall, "file too small to carry an ftyp box")
		}
		if !bytes.Equal(data[4:8], []byte("ftyp")) {
			return mediaerr.New(mediaerr.InvalidMagic, "missing ftyp box")
		}
	case mediakind.JpegXl:
		if len(data) < 2 {
			return mediaerr.New(mediaerr.FileTooSmall, "file too small to carry a JPEG XL signature")
		}
	case mediakind.OpenExr:
		if len(data) < 4 || !bytes.Equal(data[0:4], []byte{0x76, 0x2F, 0x31, 0x01}) {
			return mediaerr.New(mediaerr.InvalidMagic, "invalid OpenEXR magic bytes")
		}
	case mediakind.Opus:
		if len(data) < 4 || !bytes.Equal(data[0:4], []byte("OggS")) {
			return mediaerr.New(mediaerr.InvalidMagic, "invalid Ogg container magic bytes")
		}
	}
	return nil
}
