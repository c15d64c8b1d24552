package codec

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeGIF is hand-rolled rather than built on image/gif: the mitigation
// sequence below (local-then-global color table resolution, explicit
// color-count bound, frame-rectangle-against-canvas bound, per-pixel
// palette-index bound) is the literal CVE fix list this adapter exists
// to enforce, and needs access to the raw block layout to apply each
// check at the point the vulnerable field is read rather than after a
// library has already trusted it.
func DecodeGIF(data []byte) (*decoded.Decoded, error) {
	if len(data) < 13 {
		return nil, errTooSmall("gif", len(data))
	}
	p := quota.For(mediakind.Gif)

	canvasWidth := int(binary.LittleEndian.Uint16(data[6:8]))
	canvasHeight := int(binary.LittleEndian.Uint16(data[8:10]))
	if canvasWidth > p.MaxWidth || canvasHeight > p.MaxHeight {
		return nil, mediaerr.Newf(mediaerr.DimensionExceeded, "gif: canvas %dx%d exceeds %dx%d", canvasWidth, canvasHeight, p.MaxWidth, p.MaxHeight)
	}

	packed := data[10]
	gctFlag := packed&0x80 != 0
	gctSize := 2 << (packed & 0x07)

	off := 13
	var globalTable []color.RGBA
	if gctFlag {
		if err := needBytes(data, off, gctSize*3); err != nil {
			return nil, err
		}
		globalTable = readColorTable(data[off : off+gctSize*3])
		off += gctSize * 3
	}

	for off < len(data) {
		switch data[off] {
		case 0x21: // extension block, skip
			off += 2
			for off < len(data) && data[off] != 0 {
				off += int(data[off]) + 1
			}
			off++
		case 0x2C: // image descriptor
			return decodeGIFFrame(data, off, canvasWidth, canvasHeight, globalTable)
		case 0x3B: // trailer, no image found
			return nil, mediaerr.New(mediaerr.StructuralParseFailure, "gif: no image descriptor before trailer")
		default:
			return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "gif: unrecognized block introducer 0x%02x", data[off])
		}
	}
	return nil, mediaerr.New(mediaerr.StructuralParseFailure, "gif: truncated before any image descriptor")
}

func decodeGIFFrame(data []byte, off, canvasWidth, canvasHeight int, globalTable []color.RGBA) (*decoded.Decoded, error) {
	if err := needBytes(data, off, 10); err != nil {
		return nil, err
	}
	left := int(binary.LittleEndian.Uint16(data[off+1 : off+3]))
	top := int(binary.LittleEndian.Uint16(data[off+3 : off+5]))
	width := int(binary.LittleEndian.Uint16(data[off+5 : off+7]))
	height := int(binary.LittleEndian.Uint16(data[off+7 : off+9]))
	packed := data[off+9]
	off += 10

	if left+width > canvasWidth || top+height > canvasHeight {
		return nil, mediaerr.Newf(mediaerr.ImageOutOfCanvas, "gif: frame rect (%d,%d)+(%dx%d) exceeds canvas %dx%d", left, top, width, height, canvasWidth, canvasHeight)
	}

	table := globalTable
	lctFlag := packed&0x80 != 0
	if lctFlag {
		lctSize := 2 << (packed & 0x07)
		if err := needBytes(data, off, lctSize*3); err != nil {
			return nil, err
		}
		table = readColorTable(data[off : off+lctSize*3])
		off += lctSize * 3
	}
	if table == nil {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "gif: neither local nor global color table present")
	}
	colorCount := len(table)
	if colorCount <= 0 || colorCount > 256 {
		return nil, mediaerr.Newf(mediaerr.ColorTableOutOfRange, "gif: color table size %d out of range", colorCount)
	}

	if off >= len(data) {
		return nil, mediaerr.New(mediaerr.StructuralParseFailure, "gif: missing LZW minimum code size")
	}
	minCodeSize := int(data[off])
	off++

	indices, err := lzwDecodeGIF(data, off, minCodeSize, width*height)
	if err != nil {
		return nil, err
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, idx := range indices {
		if int(idx) >= colorCount {
			return nil, mediaerr.Newf(mediaerr.ColorTableOutOfRange, "gif: palette index %d >= color count %d", idx, colorCount)
		}
		rgba.Set(i%width, i/width, table[idx])
	}

	return &decoded.Decoded{
		Kind: mediakind.Gif,
		Image: &decoded.ImagePayload{
			Image:  rgba,
			Width:  width,
			Height: height,
		},
	}, nil
}

func readColorTable(raw []byte) []color.RGBA {
	n := len(raw) / 3
	table := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		table[i] = color.RGBA{R: raw[i*3], G: raw[i*3+1], B: raw[i*3+2], A: 255}
	}
	return table
}

func needBytes(data []byte, off, n int) error {
	if off+n > len(data) || off < 0 {
		return mediaerr.New(mediaerr.StructuralParseFailure, "gif: block runs past end of file")
	}
	return nil
}

// lzwDecodeGIF decodes the sub-block-framed LZW data starting at off,
// stopping as soon as wantPixels indices have been produced so a
// corrupt/oversized stream cannot force unbounded decompression.
func lzwDecodeGIF(data []byte, off, minCodeSize, wantPixels int) ([]byte, error) {
	var blocks []byte
	for off < len(data) {
		blockLen := int(data[off])
		off++
		if blockLen == 0 {
			break
		}
		if err := needBytes(data, off, blockLen); err != nil {
			return nil, err
		}
		blocks = append(blocks, data[off:off+blockLen]...)
		off += blockLen
		if len(blocks)*4 > wantPixels*4+1<<20 {
			break // guard against unbounded sub-block accumulation
		}
	}

	clearCode := 1 << minCodeSize
	endCode := clearCode + 1
	codeSize := minCodeSize + 1

	dict := make([][]byte, endCode+1)
	for i := 0; i < clearCode; i++ {
		dict[i] = []byte{byte(i)}
	}

	out := make([]byte, 0, wantPixels)
	var bitBuf uint32
	var bitCount uint
	bytePos := 0
	var prev []byte

	readCode := func() (int, bool) {
		for bitCount < uint(codeSize) {
			if bytePos >= len(blocks) {
				return 0, false
			}
			bitBuf |= uint32(blocks[bytePos]) << bitCount
			bytePos++
			bitCount += 8
		}
		code := int(bitBuf & ((1 << uint(codeSize)) - 1))
		bitBuf >>= uint(codeSize)
		bitCount -= uint(codeSize)
		return code, true
	}

	for len(out) < wantPixels {
		code, ok := readCode()
		if !ok {
			break
		}
		switch {
		case code == clearCode:
			dict = dict[:endCode+1]
			codeSize = minCodeSize + 1
			prev = nil
			continue
		case code == endCode:
			return out, nil
		}

		var entry []byte
		switch {
		case code < len(dict) && dict[code] != nil:
			entry = dict[code]
		case code == len(dict) && prev != nil:
			entry = append(append([]byte{}, prev...), prev[0])
		default:
			return nil, mediaerr.Newf(mediaerr.StructuralParseFailure, "gif: invalid LZW code %d", code)
		}
		out = append(out, entry...)

		if prev != nil && len(dict) < 4096 {
			newEntry := append(append([]byte{}, prev...), entry[0])
			dict = append(dict, newEntry)
			if len(dict) == 1<<codeSize && codeSize < 12 {
				codeSize++
			}
		}
		prev = entry
	}
	if len(out) > wantPixels {
		out = out[:wantPixels]
	}
	return out, nil
}
