package codec

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// ValidateEXIF bounds the block size and delegates IFD walking to
// goexif rather than the byte-offset arithmetic the original source's
// formats/exif.rs hand-rolls: goexif is a direct dependency of both
// stash and perkeep in the retrieval pack, and tag-table walking is
// exactly its job.
func ValidateEXIF(data []byte) error {
	if len(data) == 0 {
		return mediaerr.New(mediaerr.StructuralParseFailure, "exif: empty block")
	}
	if int64(len(data)) > quota.MaxEXIFBlockBytes {
		return mediaerr.Newf(mediaerr.FileTooLarge, "exif: %d bytes exceeds cap %d", len(data), quota.MaxEXIFBlockBytes)
	}

	if _, err := exif.Decode(bytes.NewReader(data)); err != nil {
		return mediaerr.Wrap(mediaerr.StructuralParseFailure, "exif", "could not walk IFD", err)
	}
	return nil
}
