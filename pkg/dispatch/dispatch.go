// Package dispatch is the single public entry point the CLI and any
// other caller goes through: exactly the six operations spec.md §4.8
// lists, each re-entrant and holding no cross-call state.
package dispatch

import (
	"context"

	"github.com/hardenmedia/mediaharden/pkg/codec"
	"github.com/hardenmedia/mediaharden/pkg/container"
	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/wasmhost"
)

// Version is set at build time via -ldflags "-X .../dispatch.Version=...";
// it defaults to "dev" for local builds.
var Version = "dev"

// Options customizes a single decode call. The zero value selects every
// built-in default, including wasmhost's own $MEDIAHARDEN_WASM_RUNTIME /
// $FFMPEG_WASM_PATH resolution for video.
type Options struct {
	WasmModulePath string
	WasmRuntime    string
}

// Decode classifies data by magic bytes and runs the matching adapter
// with default options.
func Decode(ctx context.Context, data []byte) (*decoded.Decoded, error) {
	return DecodeWithOptions(ctx, data, Options{})
}

// DecodeWithOptions is Decode plus format-specific overrides; today only
// the video path reads Options.
func DecodeWithOptions(ctx context.Context, data []byte, opts Options) (*decoded.Decoded, error) {
	kind := mediakind.Detect(data)
	if kind == mediakind.Unknown {
		return nil, mediaerr.New(mediaerr.InvalidMagic, "input does not match any known media signature")
	}
	if !mediakind.Enabled(kind) {
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: disabled in this build", kind)
	}

	switch kind {
	case mediakind.Png:
		return codec.DecodePNG(data)
	case mediakind.Jpeg:
		return codec.DecodeJPEG(data)
	case mediakind.Gif:
		return codec.DecodeGIF(data)
	case mediakind.WebP:
		return codec.DecodeWebP(data)
	case mediakind.Tiff:
		return codec.DecodeTIFF(data)
	case mediakind.Svg:
		return codec.DecodeSVG(data)
	case mediakind.Mp3:
		return codec.DecodeMP3(data)
	case mediakind.Vorbis:
		return codec.DecodeVorbis(data)
	case mediakind.Flac:
		return codec.DecodeFLAC(data)
	case mediakind.Heif, mediakind.Avif, mediakind.JpegXl, mediakind.OpenExr, mediakind.Opus:
		if _, err := codec.ValidateOnly(kind, data); err != nil {
			return nil, err
		}
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: validate-only in this build, pixel decode not available", kind)
	case mediakind.VideoContainer:
		return decodeVideo(ctx, data, opts)
	default:
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: no adapter registered", kind)
	}
}

// DecodeAudio auto-detects among MP3/Vorbis/FLAC by magic byte and
// decodes with the matching adapter; any other kind is UnsupportedFormat.
func DecodeAudio(data []byte) (*decoded.Decoded, error) {
	kind := mediakind.Detect(data)
	switch kind {
	case mediakind.Mp3:
		return codec.DecodeMP3(data)
	case mediakind.Vorbis:
		return codec.DecodeVorbis(data)
	case mediakind.Flac:
		return codec.DecodeFLAC(data)
	default:
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: not a recognized audio format", kind)
	}
}

// ValidateVideoContainer runs the box/EBML/RIFF walker matching the
// detected container kind without invoking the WebAssembly decode path.
func ValidateVideoContainer(data []byte) (*decoded.MediaMetadata, error) {
	kind := mediakind.Detect(data)
	if kind != mediakind.VideoContainer {
		return nil, mediaerr.Newf(mediaerr.UnsupportedFormat, "%s: not a recognized video container", kind)
	}
	return validateContainer(data)
}

func validateContainer(data []byte) (*decoded.MediaMetadata, error) {
	switch {
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		return container.ValidateMP4(data)
	case len(data) >= 4 && data[0] == 0x1A && data[1] == 0x45 && data[2] == 0xDF && data[3] == 0xA3:
		return container.ValidateMKV(data)
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "AVI ":
		return container.ValidateAVI(data)
	default:
		return nil, mediaerr.New(mediaerr.InvalidMagic, "video: container signature not recognized by any validator")
	}
}

func decodeVideo(ctx context.Context, data []byte, opts Options) (*decoded.Decoded, error) {
	meta, err := validateContainer(data)
	if err != nil {
		return nil, err
	}

	report, err := wasmhost.Decode(ctx, data, wasmhost.Options{
		ModulePath: opts.WasmModulePath,
		Runtime:    opts.WasmRuntime,
	})
	if err != nil {
		// Runtime/module unavailable: fall back to the container metadata
		// alone, per spec.md §4.7's minimum contract.
		return &decoded.Decoded{Kind: mediakind.VideoContainer, Video: meta}, nil
	}

	return &decoded.Decoded{Kind: mediakind.VideoContainer, Video: report}, nil
}

// SupportedFormats reflects the build's capability flags.
func SupportedFormats() []string {
	return mediakind.SupportedFormats()
}

// VersionString reports the dispatcher's build version.
func VersionString() string {
	return Version
}
