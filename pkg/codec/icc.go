package codec

import (
	"encoding/binary"

	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// ICCProfile is the parsed header summary of a validated ICC color
// profile, the payload returned alongside an image whose container
// carried one.
type ICCProfile struct {
	VersionMajor byte
	VersionMinor byte
	ProfileSize  uint32
	TagCount     uint32
}

const (
	iccMagicOffset = 36
	iccMaxTagCount = 256
)

var iccMagic = []byte("acsp")

// ValidateICCProfile is hand-rolled: no corpus repo or ecosystem
// library exposes a profile-header validator at this level, only full
// color-management stacks (lcms2-style) that are far more than this
// adapter needs. The byte offsets below (profile size at 0, version at
// 8-9, 'acsp' signature at 36, tag count at 128) are ICC.1:2010 §7.2
// header layout, ported one-for-one from the original source's own
// validate_icc_profile.
func ValidateICCProfile(data []byte) (*ICCProfile, error) {
	if len(data) == 0 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "icc: empty profile")
	}
	if int64(len(data)) > quota.MaxICCProfileBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "icc: %d bytes exceeds cap %d", len(data), quota.MaxICCProfileBytes)
	}
	if len(data) < 128 {
		return nil, mediaerr.New(mediaerr.FileTooSmall, "icc: profile smaller than the 128-byte header")
	}

	profileSize := binary.BigEndian.Uint32(data[0:4])
	if int(profileSize) != len(data) {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "icc: header size %d does not match actual %d", profileSize, len(data))
	}

	if len(data) < iccMagicOffset+4 {
		return nil, mediaerr.New(mediaerr.FileTooSmall, "icc: profile too small for signature")
	}
	for i, b := range iccMagic {
		if data[iccMagicOffset+i] != b {
			return nil, mediaerr.New(mediaerr.InvalidMagic, "icc: missing 'acsp' signature")
		}
	}

	versionMajor, versionMinor := data[8], data[9]

	if len(data) < 132 {
		return nil, mediaerr.New(mediaerr.FileTooSmall, "icc: profile too small for tag count")
	}
	tagCount := binary.BigEndian.Uint32(data[128:132])
	if tagCount > iccMaxTagCount {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "icc: tag count %d exceeds cap %d", tagCount, iccMaxTagCount)
	}

	return &ICCProfile{
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		ProfileSize:  profileSize,
		TagCount:     tagCount,
	}, nil
}
