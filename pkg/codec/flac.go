package codec

import (
	"bytes"
	"io"

	"github.com/mewkiz/flac"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediaerr"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
	"github.com/hardenmedia/mediaharden/pkg/quota"
)

// DecodeFLAC is grounded directly on the retrieved mewkiz/flac sources
// (meta/meta.go's block-type switch, frame/subframe.go's frame reader),
// here used through the package's own published top-level API rather
// than reimplemented. Sample rate and channel count are checked once,
// from the StreamInfo block. Duration is checked up front from
// StreamInfo's total-sample count and again after every decoded frame
// from the running sample count, so a stream whose StreamInfo leaves the
// total unknown (zero) is still bounded. Higher
// bit-depth streams are down-shifted to 16-bit as each frame's samples
// are interleaved, per the down-shift rule spec.md specifies for FLAC.
func DecodeFLAC(data []byte) (*decoded.Decoded, error) {
	p := quota.For(mediakind.Flac)
	if int64(len(data)) > p.MaxBytes {
		return nil, mediaerr.Newf(mediaerr.FileTooLarge, "flac: %d bytes exceeds cap %d", len(data), p.MaxBytes)
	}

	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "flac", "could not parse stream", err)
	}
	defer stream.Close()

	info := stream.Info
	if int(info.SampleRate) > p.MaxSampleRateHz {
		return nil, mediaerr.Newf(mediaerr.SampleRateExceeded, "flac: sample rate %d exceeds cap %d", info.SampleRate, p.MaxSampleRateHz)
	}
	if int(info.NChannels) > p.MaxChannels {
		return nil, mediaerr.Newf(mediaerr.ChannelCountExceeded, "flac: channel count %d exceeds cap %d", info.NChannels, p.MaxChannels)
	}

	duration := float64(info.NSamples) / float64(info.SampleRate)
	if duration > p.MaxDurationSeconds {
		return nil, mediaerr.Newf(mediaerr.DurationExceeded, "flac: duration %.1fs exceeds cap %.0fs", duration, p.MaxDurationSeconds)
	}

	shift := uint(0)
	if info.BitsPerSample > 16 {
		shift = uint(info.BitsPerSample - 16)
	}

	var samples []int16
	var decodedSamples int64
	for {
		f, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, mediaerr.Wrap(mediaerr.StructuralParseFailure, "flac", "malformed frame", err)
		}
		nsamples := 0
		if len(f.Subframes) > 0 {
			nsamples = f.Subframes[0].NSamples
		}
		decodedSamples += int64(nsamples)
		if float64(decodedSamples)/float64(info.SampleRate) > p.MaxDurationSeconds {
			return nil, mediaerr.Newf(mediaerr.DurationExceeded, "flac: decoded duration exceeds cap %.0fs", p.MaxDurationSeconds)
		}
		for i := 0; i < nsamples; i++ {
			for _, sub := range f.Subframes {
				samples = append(samples, downshiftPCM(sub.Samples[i], shift))
			}
		}
	}

	return &decoded.Decoded{
		Kind: mediakind.Flac,
		Audio: &decoded.AudioPayload{
			Samples:      samples,
			SampleRateHz: int(info.SampleRate),
			Channels:     int(info.NChannels),
			DurationSec:  duration,
		},
	}, nil
}

// downshiftPCM arithmetic-shifts a decoded sample down by shift bits and
// clamps to the int16 range, the down-conversion every higher-bit-depth
// FLAC stream needs before its samples fit an AudioPayload.
func downshiftPCM(v int32, shift uint) int16 {
	shifted := v >> shift
	switch {
	case shifted > 32767:
		return 32767
	case shifted < -32768:
		return -32768
	default:
		return int16(shifted)
	}
}
