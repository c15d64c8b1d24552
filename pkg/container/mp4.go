// Package container validates video container structure without
// decoding any media sample. The walkers below refuse overlong
// boxes/chunks (a declared size running past the enclosing buffer)
// rather than skip them permissively; box and chunk types they do not
// interpret are skipped, not refused. This follows the box-tree idiom in other_examples' fmp4_demuxer.go and vulkango's
// avformat/mp4.go, adapted to return a bounded MediaMetadata rather than
// demux actual frames.
package container

import (
	"encoding/binary"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

type mp4Box struct {
	typ     string
	payload []byte
}

// ValidateMP4 walks the top-level box tree, descends into moov/trak/mdia
// to find each track's tkhd width/height (16.16 fixed point) and the
// mvhd duration/timescale pair, and enforces spec quotas as it goes.
func ValidateMP4(data []byte) (*decoded.MediaMetadata, error) {
	p := quota.For(mediakind.VideoContainer)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "mp4: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}

	top, err := readBoxes(data)
	if err != nil {
		return nil, err
	}

	var moov *mp4Box
	for i := range top {
		if top[i].typ == "moov" {
			moov = &top[i]
			break
		}
	}
	if moov == nil {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: no moov box")
	}

	moovChildren, err := readBoxes(moov.payload)
	if err != nil {
		return nil, err
	}

	meta := &decoded.MediaMetadata{ContainerFormat: "mp4"}
	trackCount := 0
	videoTrackCount := 0

	for _, b := range moovChildren {
		switch b.typ {
		case "mvhd":
			dur, timescale, err := parseMVHD(b.payload)
			if err != nil {
				return nil, err
			}
			if timescale > 0 {
				seconds := float64(dur) / float64(timescale)
				if seconds > p.MaxDurationSeconds {
					return nil, mediaerr.Newf(mediaerr.DurationExceeded, "mp4: duration %.1fs exceeds cap %.0fs", seconds, p.MaxDurationSeconds)
				}
				if seconds > meta.DurationSec {
					meta.DurationSec = seconds
				}
			}
		case "trak":
			trackCount++
			isVideo, width, height, err := parseTrak(b.payload)
			if err != nil {
				return nil, err
			}
			if isVideo {
				videoTrackCount++
				if width > p.MaxWidth || height > p.MaxHeight {
					return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "mp4: track %dx%d exceeds %dx%d", width, height, p.MaxWidth, p.MaxHeight)
				}
				if width > meta.MaxWidth {
					meta.MaxWidth = width
				}
				if height > meta.MaxHeight {
					meta.MaxHeight = height
				}
			}
		}
	}

	if trackCount > p.MaxTrackCount {
		return nil, mediaerr.Newf(mediaerr.TrackLimitExceeded, "mp4: %d tracks exceeds cap %d", trackCount, p.MaxTrackCount)
	}
	if videoTrackCount < 1 {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: no video track present")
	}

	meta.TrackCount = trackCount
	meta.Validated = true
	return meta, nil
}

// readBoxes parses a flat sequence of size(4)|type(4)|payload boxes,
// refusing any box whose declared size would run past the buffer. A
// size of 1 (64-bit extended size) and size of 0 (box extends to end of
// buffer) are both refused: neither appears in a conformant moov tree
// at the depth this validator walks.
func readBoxes(data []byte) ([]mp4Box, error) {
	var boxes []mp4Box
	off := 0
	for off < len(data) {
		if off+8 > len(data) {
			return nil, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: truncated box header")
		}
		size := binary.BigEndian.Uint32(data[off : off+4])
		typ := string(data[off+4 : off+8])
		if size < 8 {
			return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "mp4: box %q declares implausible size %d", typ, size)
		}
		end := off + int(size)
		if end < off || end > len(data) {
			return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "mp4: box %q size %d runs past buffer", typ, size)
		}
		boxes = append(boxes, mp4Box{typ: typ, payload: data[off+8 : end]})
		off = end
	}
	return boxes, nil
}

func parseMVHD(payload []byte) (duration, timescale uint32, err error) {
	if len(payload) < 1 {
		return 0, 0, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: empty mvhd")
	}
	version := payload[0]
	var tsOff, durOff int
	if version == 1 {
		tsOff, durOff = 20, 24
		if len(payload) < durOff+8 {
			return 0, 0, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: mvhd (v1) too short")
		}
		timescale = binary.BigEndian.Uint32(payload[tsOff : tsOff+4])
		duration = uint32(binary.BigEndian.Uint64(payload[durOff : durOff+8]))
		return duration, timescale, nil
	}
	tsOff, durOff = 12, 16
	if len(payload) < durOff+4 {
		return 0, 0, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: mvhd too short")
	}
	timescale = binary.BigEndian.Uint32(payload[tsOff : tsOff+4])
	duration = binary.BigEndian.Uint32(payload[durOff : durOff+4])
	return duration, timescale, nil
}

// parseTrak reads the tkhd box's width/height (16.16 fixed point at
// fixed offsets relative to the version byte) and classifies the track
// by walking into mdia/hdlr for its handler type.
func parseTrak(payload []byte) (isVideo bool, width, height int, err error) {
	children, err := readBoxes(payload)
	if err != nil {
		return false, 0, 0, err
	}

	for _, b := range children {
		if b.typ == "tkhd" {
			w, h, terr := parseTKHD(b.payload)
			if terr != nil {
				return false, 0, 0, terr
			}
			width, height = w, h
		}
		if b.typ == "mdia" {
			if isVideoHandler(b.payload) {
				isVideo = true
			}
		}
	}
	return isVideo, width, height, nil
}

func parseTKHD(payload []byte) (width, height int, err error) {
	if len(payload) < 1 {
		return 0, 0, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: empty tkhd")
	}
	version := payload[0]
	var widthOff int
	if version == 1 {
		widthOff = 88
	} else {
		widthOff = 76
	}
	if len(payload) < widthOff+8 {
		return 0, 0, mediaerr.New(mediaerr.StructuralParseFailure, "mp4: tkhd too short for dimensions")
	}
	widthFixed := binary.BigEndian.Uint32(payload[widthOff : widthOff+4])
	heightFixed := binary.BigEndian.Uint32(payload[widthOff+4 : widthOff+8])
	return int(widthFixed >> 16), int(heightFixed >> 16), nil
}

func isVideoHandler(mdiaPayload []byte) bool {
	children, err := readBoxes(mdiaPayload)
	if err != nil {
		return false
	}
	for _, b := range children {
		if b.typ == "hdlr" && len(b.payload) >= 12 {
			handlerType := string(b.payload[8:12])
			if handlerType == "vide" {
				return true
			}
		}
	}
	return false
}
