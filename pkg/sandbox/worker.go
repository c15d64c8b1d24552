package sandbox

import (
	"bytes"
	"encoding/json"
	"image/png"

	"github.com/hardenmedia/mediaharden/pkg/decoded"
	"github.com/hardenmedia/mediaharden/pkg/mediakind"
)

// WorkerFlag is the argv[0]-adjacent sentinel flag cmd/mediaharden's
// main() checks for before doing anything else. When present, the
// process is the re-exec'd sandboxed child, not the original CLI
// invocation, and main() calls RunWorker instead of the normal CLI path.
const WorkerFlag = "__mediaharden_sandboxed_worker__"

// EnvScratchPath and EnvProfile pass the scratch file location and
// seccomp profile from parent to child across the re-exec, since a
// freshly exec'd process cannot inherit Go closures or open fds beyond
// what's explicitly wired through ExtraFiles/env.
const (
	EnvScratchPath = "MEDIAHARDEN_SANDBOX_SCRATCH"
	EnvProfile     = "MEDIAHARDEN_SANDBOX_PROFILE"
	EnvWasmModule  = "MEDIAHARDEN_SANDBOX_WASM_MODULE"
	EnvWasmRuntime = "MEDIAHARDEN_SANDBOX_WASM_RUNTIME"
)

// workerReport is the wire format the sandboxed child writes to stdout:
// a single JSON line describing the decode outcome. Image pixels travel
// as PNG bytes; audio and video payloads are summarized rather than
// serialized byte-for-byte, since the
// envelope's job is to prove the decode happened inside the sandbox, not
// to be a general RPC framework.
type workerReport struct {
	OK       bool    `json:"ok"`
	ErrorMsg string  `json:"error,omitempty"`
	Kind     string  `json:"kind,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Duration float64 `json:"duration_sec,omitempty"`
	Channels int     `json:"channels,omitempty"`
	PNGBytes []byte  `json:"png_bytes,omitempty"`
}

// encodeReport builds the child's wire report. Image payloads are
// re-encoded as PNG so the pixel data survives the process boundary;
// audio payloads are reduced to duration and channel count (the PCM
// samples and sample rate are not relayed) and video payloads to width,
// height and duration.
func encodeReport(d *decoded.Decoded) workerReport {
	r := workerReport{OK: true, Kind: d.Kind.String()}
	switch {
	case d.Image != nil:
		r.Width, r.Height = d.Image.Width, d.Image.Height
		var buf bytes.Buffer
		if err := png.Encode(&buf, d.Image.Image); err == nil {
			r.PNGBytes = buf.Bytes()
		}
	case d.Audio != nil:
		r.Duration = d.Audio.DurationSec
		r.Channels = d.Audio.Channels
	case d.Video != nil:
		r.Width, r.Height = d.Video.MaxWidth, d.Video.MaxHeight
		r.Duration = d.Video.DurationSec
	}
	return r
}

// decodeFromReport reconstructs a Decoded from a worker report,
// re-decoding the relayed PNG bytes for image kinds.
func decodeFromReport(r workerReport) (*decoded.Decoded, error) {
	kind := mediakind.Unknown
	for _, k := range []mediakind.Kind{
		mediakind.Png, mediakind.Jpeg, mediakind.Gif, mediakind.WebP, mediakind.Svg,
		mediakind.Tiff, mediakind.Mp3, mediakind.Vorbis, mediakind.Flac, mediakind.VideoContainer,
	} {
		if k.String() == r.Kind {
			kind = k
			break
		}
	}

	d := &decoded.Decoded{Kind: kind}
	switch {
	case len(r.PNGBytes) > 0:
		img, err := png.Decode(bytes.NewReader(r.PNGBytes))
		if err != nil {
			return nil, err
		}
		d.Image = &decoded.ImagePayload{Image: img, Width: r.Width, Height: r.Height}
	case kind == mediakind.VideoContainer:
		d.Video = &decoded.MediaMetadata{MaxWidth: r.Width, MaxHeight: r.Height, DurationSec: r.Duration, Validated: true}
	default:
		d.Audio = &decoded.AudioPayload{DurationSec: r.Duration, Channels: r.Channels}
	}
	return d, nil
}

func marshalReport(r workerReport) ([]byte, error) {
	return json.Marshal(r)
}

func unmarshalReport(b []byte) (workerReport, error) {
	var r workerReport
	err := json.Unmarshal(b, &r)
	return r, err
}
