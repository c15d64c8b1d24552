package container

import (
	"encoding/binary"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// ValidateAVI is the RIFF-chunk walk spec.md §4.4 describes, field
// layout grounded on other_examples' avixer AVIMainHeader struct
// (MicroSecPerFrame at offset 0, Width/Height at offsets 32/36 of the
// avih payload).
func ValidateAVI(data []byte) (*decoded.MediaMetadata, error) {
	p := quota.For(mediakind.VideoContainer)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "avi: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}
	if len(data) < 12 {
		return nil, mediaerr.New(mediaerr.FileTooSmall, "avi: shorter than RIFF header")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "AVI " {
		return nil, mediaerr.New(mediaerr.InvalidMagic, "avi: missing RIFF....AVI  signature")
	}
	declaredSize := binary.LittleEndian.Uint32(data[4:8])
	if int64(declaredSize)+8 != int64(len(data)) {
		return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "avi: declared size %d+8 does not match actual %d", declaredSize, len(data))
	}

	var avih []byte
	var videoStreams int
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		payloadStart := off + 8
		payloadEnd := payloadStart + int(size)
		if payloadEnd < payloadStart || payloadEnd > len(data) {
			// declared size runs past buffer: fail closed rather than report success
			return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "avi: chunk %q size %d runs past buffer", id, size)
		}
		payload := data[payloadStart:payloadEnd]

		switch id {
		case "LIST":
			if len(payload) >= 4 {
				listType := string(payload[0:4])
				body := payload[4:]
				if listType == "hdrl" {
					a, streams, err := scanHdrl(body)
					if err != nil {
						return nil, err
					}
					if a != nil {
						avih = a
					}
					videoStreams += streams
				}
			}
		case "avih":
			avih = payload
		}

		next := payloadEnd
		if size%2 == 1 {
			next++ // odd chunks are padded to even length
		}
		off = next
	}

	if avih == nil {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "avi: no avih chunk found")
	}
	if len(avih) < 56 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "avi: avih chunk shorter than 56 bytes")
	}

	microSecPerFrame := binary.LittleEndian.Uint32(avih[0:4])
	totalFrames := binary.LittleEndian.Uint32(avih[16:20])
	width := int(binary.LittleEndian.Uint32(avih[32:36]))
	height := int(binary.LittleEndian.Uint32(avih[36:40]))

	if width > p.MaxWidth || height > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "avi: %dx%d exceeds %dx%d", width, height, p.MaxWidth, p.MaxHeight)
	}
	if videoStreams < 1 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "avi: no video stream present")
	}

	var duration float64
	if microSecPerFrame > 0 {
		duration = float64(microSecPerFrame) * float64(totalFrames) / 1_000_000
	}
	if duration > p.MaxDurationSeconds {
		return nil, mediaerr.Newf(mediaerr.DurationExceeded, "avi: duration %.1fs exceeds cap %.0fs", duration, p.MaxDurationSeconds)
	}

	return &decoded.MediaMetadata{
		ContainerFormat: "avi",
		MaxWidth:        width,
		MaxHeight:       height,
		DurationSec:     duration,
		TrackCount:      videoStreams,
		Validated:       true,
	}, nil
}

// scanHdrl walks the hdrl LIST body for the avih chunk and for each
// strl sub-list's strh chunk, counting video ("vids") streams.
func scanHdrl(data []byte) (avih []byte, videoStreams int, err error) {
	off := 0
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		payloadStart := off + 8
		payloadEnd := payloadStart + int(size)
		if payloadEnd < payloadStart || payloadEnd > len(data) {
			return nil, 0, mediaerr.Newf(mediaerr.StructuralParseFailure, "avi: hdrl chunk %q size %d runs past list", id, size)
		}
		payload := data[payloadStart:payloadEnd]

		switch id {
		case "avih":
			avih = payload
		case "LIST":
			if len(payload) >= 4 && string(payload[0:4]) == "strl" {
				if isVideoStrl(payload[4:]) {
					videoStreams++
				}
			}
		}

		next := payloadEnd
		if size%2 == 1 {
			next++
		}
		off = next
	}
	return avih, videoStreams, nil
}

func isVideoStrl(data []byte) bool {
	off := 0
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		payloadStart := off + 8
		payloadEnd := payloadStart + int(size)
		if payloadEnd < payloadStart || payloadEnd > len(data) {
			break
		}
		if id == "strh" && len(data[payloadStart:payloadEnd]) >= 4 {
			if string(data[payloadStart:payloadStart+4]) == "vids" {
				return true
			}
		}
		next := payloadEnd
		if size%2 == 1 {
			next++
		}
		off = next
	}
	return false
}
