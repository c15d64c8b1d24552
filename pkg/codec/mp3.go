package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeMP3 streams frames through go-mp3 rather than reading them all
// up front. Sample rate and channel count are checked once, when the
// stream is opened; the running duration is checked after every chunk of
// decoded PCM instead of after a full decode. Samples are retained as they stream
// past the quota check, not re-read afterward.
func DecodeMP3(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Mp3)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "mp3: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "mp3", "could not open stream", err)
	}

	sampleRate := dec.SampleRate()
	if sampleRate > p.MaxSampleRateHz {
		return nil, mediaerr.Newf(mediaerr.SampleRateExceeded, "mp3: sample rate %d exceeds cap %d", sampleRate, p.MaxSampleRateHz)
	}
	const channels = 2 // go-mp3 always produces interleaved stereo PCM
	if channels > p.MaxChannels {
		return nil, mediaerr.Newf(mediaerr.ChannelCountExceeded, "mp3: channel count %d exceeds cap %d", channels, p.MaxChannels)
	}

	var samples []int16
	var totalFrames int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := dec.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(buf[i:i+2])))
		}
		totalFrames += int64(n) / 4 // 2 bytes/sample * 2 channels
		if durationSoFar := float64(totalFrames) / float64(sampleRate); durationSoFar > p.MaxDurationSeconds {
			return nil, mediaerr.Newf(mediaerr.DurationExceeded, "mp3: duration exceeds cap %.0fs", p.MaxDurationSeconds)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "mp3", "frame decode failed", readErr)
		}
	}

	return &decoded.Decoded{
		Kind: mediakind.Mp3,
		Audio: &decoded.AudioPayload{
			Samples:      samples,
			SampleRateHz: sampleRate,
			Channels:     channels,
			DurationSec:  float64(totalFrames) / float64(sampleRate),
		},
	}, nil
}
