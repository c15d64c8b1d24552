package mediakind

// Capability flags gate the optional formats, mirroring the original
// Rust crate's #[cfg(feature = "...")] conditionals (spec.md §9). A
// disabled kind must be rejected with UnsupportedFormat by the dispatch
// switch, never silently fall through to a different decoder.
//
// Build with -tags avif,jxl,heif,openexr,opus to enable the corresponding
// format; the default build enables none of them. The icc and exif tags
// only set IccEnabled and ExifEnabled, which no decode path reads.

var (
	AvifEnabled    = avifEnabled
	JpegXlEnabled  = jxlEnabled
	HeifEnabled    = heifEnabled
	OpenExrEnabled = openexrEnabled
	IccEnabled     = iccEnabled
	ExifEnabled    = exifEnabled
	OpusEnabled    = opusEnabled
)

// Enabled reports whether kind is available in this build. Core kinds
// (Png, Jpeg, Gif, WebP, Svg, Tiff, Mp3, Vorbis, Flac, VideoContainer) are
// always available.
func Enabled(k Kind) bool {
	switch k {
	case Avif:
		return AvifEnabled
	case JpegXl:
		return JpegXlEnabled
	case Heif:
		return HeifEnabled
	case OpenExr:
		return OpenExrEnabled
	case Opus:
		return OpusEnabled
	case Png, Jpeg, Gif, WebP, Svg, Tiff, Mp3, Vorbis, Flac, VideoContainer:
		return true
	default:
		return false
	}
}

// SupportedFormats enumerates the kind names live in this build, for the
// dispatch surface's supported_formats() operation.
func SupportedFormats() []string {
	all := []Kind{Png, Jpeg, Gif, WebP, Svg, Tiff, Mp3, Vorbis, Flac, VideoContainer, Heif, Avif, JpegXl, OpenExr, Opus}
	out := make([]string, 0, len(all))
	for _, k := range all {
		if Enabled(k) {
			out = append(out, k.String())
		}
	}
	return out
}
