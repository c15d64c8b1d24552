// Package codec holds one adapter per media kind. Every adapter takes
// the whole file in memory (the isolation envelope already bounded the
// file size before handing bytes here) and returns a *decoded.Decoded or
// a typed *mediaerr.Error. The PNG, JPEG, TIFF and WebP adapters run their
// third-party decode call under decodeRecovered, so a panic there becomes
// a typed error; the other adapters do not recover panics.
package codec

import (
	"image"
	"image/draw"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
)

// decodeRecovered calls fn and converts any panic raised by a
// third-party decoder into a StructuralParseFailure. This is the Go
// substitute for the setjmp/longjmp trust boundary a C decoder would
// need: native image libraries in other languages crash the process on
// malformed input, Go libraries panic, and both need to be contained at
// exactly one point per call.
func decodeRecovered(fn func() (image.Image, error)) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = mediaerr.Newf(mediaerr.StructuralParseFailure, "decoder panicked: %v", r)
		}
	}()
	return fn()
}

// toRGBA forces any decoded image.Image to 8-bit RGBA, matching the
// spec's "output is always a decoded raster in RGBA" contract regardless
// of the source's native color model.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

func errTooSmall(format string, n int) error {
	return mediaerr.Newf(mediaerr.FileTooSmall, "%s: input of %d bytes below minimum header size", format, n)
}
