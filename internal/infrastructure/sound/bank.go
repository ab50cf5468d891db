package sound

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
)

// Format is the format every cue clip is rendered in
var Format = beep.Format{
	SampleRate:  beep.SampleRate(22050),
	NumChannels: 1,
	Precision:   2,
}

// Clip is an encoded cue ready to serve
type Clip struct {
	Cue         types.Cue
	Data        []byte
	ContentType string
	Duration    time.Duration
}

// Bank holds the rendered clip of every cue
type Bank struct {
	volume float64
	clips  map[types.Cue]Clip
}

// NewBank renders all cues at the given master volume (0.0 to 1.0)
func NewBank(volume float64) (*Bank, error) {
	volume = math.Max(0, math.Min(1, volume))

	b := &Bank{
		volume: volume,
		clips:  make(map[types.Cue]Clip, len(types.AllCues)),
	}
	for _, cue := range types.AllCues {
		clip, err := render(cue, volume)
		if err != nil {
			return nil, fmt.Errorf("render %s cue: %w", cue, err)
		}
		b.clips[cue] = clip
	}
	return b, nil
}

// Clip returns the rendered clip for cue
func (b *Bank) Clip(cue types.Cue) (Clip, bool) {
	clip, ok := b.clips[cue]
	return clip, ok
}

// Volume returns the master volume the bank was rendered at
func (b *Bank) Volume() float64 {
	return b.volume
}

func render(cue types.Cue, volume float64) (Clip, error) {
	r, ok := recipes[cue]
	if !ok {
		return Clip{}, errors.New("no recipe")
	}

	var streamer beep.Streamer = r.streamer(Format.SampleRate)
	if volume < 1 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   math.Log2(volume),
			Silent:   volume == 0,
		}
	}

	out := &memFile{}
	if err := wav.Encode(out, streamer, Format); err != nil {
		return Clip{}, err
	}

	return Clip{
		Cue:         cue,
		Data:        out.buf,
		ContentType: mimetype.Detect(out.buf).String(),
		Duration:    r.length(),
	}, nil
}

// memFile is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch header sizes once the stream is drained.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if next < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = int(next)
	return next, nil
}
