package codec

import (
	"bytes"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeVorbis mirrors DecodeMP3's streaming-enforcement shape over
// oggvorbis's per-sample reader, converting its float32 output to the
// interleaved int16 PCM every AudioPayload carries.
func DecodeVorbis(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Vorbis)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "vorbis: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}

	r, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "vorbis", "could not open stream", err)
	}

	sampleRate := r.SampleRate()
	channels := r.Channels()
	if sampleRate > p.MaxSampleRateHz {
		return nil, mediaerr.Newf(mediaerr.SampleRateExceeded, "vorbis: sample rate %d exceeds cap %d", sampleRate, p.MaxSampleRateHz)
	}
	if channels > p.MaxChannels {
		return nil, mediaerr.Newf(mediaerr.ChannelCountExceeded, "vorbis: channel count %d exceeds cap %d", channels, p.MaxChannels)
	}

	var samples []int16
	buf := make([]float32, 4096)
	var totalSamples int64
	for {
		n, readErr := r.Read(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, floatToPCM16(buf[i]))
		}
		totalSamples += int64(n / channels)
		if durationSoFar := float64(totalSamples) / float64(sampleRate); durationSoFar > p.MaxDurationSeconds {
			return nil, mediaerr.Newf(mediaerr.DurationExceeded, "vorbis: duration exceeds cap %.0fs", p.MaxDurationSeconds)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "vorbis", "frame decode failed", readErr)
		}
	}

	return &decoded.Decoded{
		Kind: mediakind.Vorbis,
		Audio: &decoded.AudioPayload{
			Samples:      samples,
			SampleRateHz: sampleRate,
			Channels:     channels,
			DurationSec:  float64(totalSamples) / float64(sampleRate),
		},
	}, nil
}

// floatToPCM16 converts a [-1, 1] float sample to clamped 16-bit PCM.
func floatToPCM16(f float32) int16 {
	v := f * 32767
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
