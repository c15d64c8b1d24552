// Package mediakind classifies raw bytes into a MediaKind by leading
// signature. Detection is a pure function of the first 50 bytes and never
// fails; an input matching nothing is Unknown.
//
// The signature table is adapted from stash's pkg/threatscan magic-byte
// constants (mp4Magic, mkvMagic, aviMagic, oggMagic and friends), which
// stash used to fingerprint containers ahead of its own content-threat
// regex scan. That scanning is out of scope here (spec non-goal); only the
// signature table survives the port.
package mediakind

import "bytes"

// Kind is the closed media-kind enumeration. Heif, Avif, JpegXl, OpenExr
// and Opus are gated by build-time capability flags; the other variants
// are always available. See capabilities.go.
type Kind int

const (
	Unknown Kind = iota
	Png
	Jpeg
	Gif
	WebP
	Heif
	Svg
	Avif
	JpegXl
	Tiff
	OpenExr
	Mp3
	Vorbis
	Flac
	Opus
	VideoContainer
)

func (k Kind) String() string {
	switch k {
	case Png:
		return "png"
	case Jpeg:
		return "jpeg"
	case Gif:
		return "gif"
	case WebP:
		return "webp"
	case Heif:
		return "heif"
	case Svg:
		return "svg"
	case Avif:
		return "avif"
	case JpegXl:
		return "jxl"
	case Tiff:
		return "tiff"
	case OpenExr:
		return "openexr"
	case Mp3:
		return "mp3"
	case Vorbis:
		return "vorbis"
	case Flac:
		return "flac"
	case Opus:
		return "opus"
	case VideoContainer:
		return "video"
	default:
		return "unknown"
	}
}

var (
	pngMagic   = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic  = []byte{0xFF, 0xD8}
	gif87Magic = []byte("GIF87a")
	gif89Magic = []byte("GIF89a")
	riffMagic  = []byte("RIFF")
	webpMagic  = []byte("WEBP")
	ftypMagic  = []byte("ftyp")
	flacMagic  = []byte("fLaC")
	oggMagic   = []byte("OggS")
	exrMagic   = []byte{0x76, 0x2F, 0x31, 0x01}
	tiffLE     = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffBE     = []byte{0x4D, 0x4D, 0x00, 0x2A}
	mkvMagic   = []byte{0x1A, 0x45, 0xDF, 0xA3}
	aviSub     = []byte("AVI ")
	jxlISOBMFF = []byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}
	jxlBare    = []byte{0xFF, 0x0A}

	heifBrands = [][]byte{[]byte("heic"), []byte("heix"), []byte("mif1"), []byte("msf1"), []byte("hevc"), []byte("hevx")}
)

// Detect classifies data by its leading bytes. First match in the table
// wins, in the order spec.md §4.1 lists them.
func Detect(data []byte) Kind {
	if len(data) >= 8 && bytes.Equal(data[0:8], pngMagic) {
		return Png
	}
	if len(data) >= 2 && bytes.Equal(data[0:2], jpegMagic) {
		return Jpeg
	}
	if len(data) >= 6 && (bytes.Equal(data[0:6], gif87Magic) || bytes.Equal(data[0:6], gif89Magic)) {
		return Gif
	}
	if len(data) >= 12 && bytes.Equal(data[0:4], riffMagic) {
		switch {
		case bytes.Equal(data[8:12], webpMagic):
			return WebP
		case bytes.Equal(data[8:12], aviSub):
			return VideoContainer
		}
	}
	if len(data) >= 12 && bytes.Equal(data[4:8], ftypMagic) {
		brand := data[8:12]
		for _, b := range heifBrands {
			if bytes.Equal(brand, b) {
				return Heif
			}
		}
		if hasAvifBrand(data) {
			return Avif
		}
		return VideoContainer
	}
	if len(data) >= 12 && bytes.Equal(data[0:12], jxlISOBMFF) {
		return JpegXl
	}
	if len(data) >= 2 && bytes.Equal(data[0:2], jxlBare) {
		return JpegXl
	}
	if len(data) >= 4 && (bytes.Equal(data[0:4], tiffLE) || bytes.Equal(data[0:4], tiffBE)) {
		return Tiff
	}
	if len(data) >= 4 && bytes.Equal(data[0:4], exrMagic) {
		return OpenExr
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return Mp3
	}
	if len(data) >= 4 && bytes.Equal(data[0:4], oggMagic) {
		return Vorbis
	}
	if len(data) >= 4 && bytes.Equal(data[0:4], flacMagic) {
		return Flac
	}
	if len(data) >= 4 && bytes.Equal(data[0:4], mkvMagic) {
		return VideoContainer
	}
	return Unknown
}

// hasAvifBrand scans the ftyp box's major brand and compatible-brand list
// (4-byte fields starting at offset 8) for "avif". ISO/IEC 14496-12 puts
// the box size in the first 4 bytes; we bound the scan to min(boxSize, 50)
// to avoid walking past a short/overlong declared size and to stay within
// the leading 50 bytes Detect depends on.
func hasAvifBrand(data []byte) bool {
	if len(data) < 16 {
		return false
	}
	boxSize := int(uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]))
	end := boxSize
	if end <= 0 || end > len(data) {
		end = len(data)
	}
	if end > 50 {
		end = 50
	}
	for off := 8; off+4 <= end; off += 4 {
		if bytes.Equal(data[off:off+4], []byte("avif")) {
			return true
		}
	}
	return false
}
