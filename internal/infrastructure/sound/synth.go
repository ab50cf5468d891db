package sound

import (
	"math"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/gopxl/beep/v2"
)

// silence is the floor exponential ramps decay towards
const silence = 0.0001

type waveform func(phase float64) float64

func sine(p float64) float64 {
	return math.Sin(2 * math.Pi * p)
}

func triangle(p float64) float64 {
	return 4*math.Abs(p-math.Floor(p+0.5)) - 1
}

func square(p float64) float64 {
	if p-math.Floor(p) < 0.5 {
		return 1
	}
	return -1
}

// voice is one oscillator with a gain envelope, timed from the start of the cue
type voice struct {
	wave  waveform
	from  float64 // Start frequency in Hz
	to    float64 // Frequency reached at stop, swept exponentially
	start time.Duration
	// attack is the linear ramp from zero to peak. Zero starts at peak.
	attack time.Duration
	peak   float64
	stop   time.Duration
}

func (v voice) frequency(t time.Duration) float64 {
	if v.from == v.to || t <= v.start {
		return v.from
	}
	frac := float64(t-v.start) / float64(v.stop-v.start)
	return v.from * math.Pow(v.to/v.from, frac)
}

func (v voice) gain(t time.Duration) float64 {
	if t < v.start || t >= v.stop {
		return 0
	}
	decayFrom := v.start + v.attack
	if t < decayFrom {
		return v.peak * float64(t-v.start) / float64(v.attack)
	}
	frac := float64(t-decayFrom) / float64(v.stop-decayFrom)
	return v.peak * math.Pow(silence/v.peak, frac)
}

// tone streams a voice at a fixed sample rate until its stop time
type tone struct {
	voice voice
	rate  beep.SampleRate
	pos   int
	total int
	phase float64
}

func newTone(v voice, rate beep.SampleRate) *tone {
	return &tone{voice: v, rate: rate, total: rate.N(v.stop)}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}
		at := t.rate.D(t.pos)
		value := 0.0
		if at >= t.voice.start {
			value = t.voice.wave(t.phase) * t.voice.gain(at)
			t.phase += t.voice.frequency(at) / float64(t.rate)
			t.phase -= math.Floor(t.phase)
		}
		samples[i][0] = value
		samples[i][1] = value
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error {
	return nil
}

// recipe is the set of voices making up a cue
type recipe []voice

func (r recipe) length() time.Duration {
	var longest time.Duration
	for _, v := range r {
		if v.stop > longest {
			longest = v.stop
		}
	}
	return longest
}

func (r recipe) streamer(rate beep.SampleRate) beep.Streamer {
	tones := make([]beep.Streamer, len(r))
	for i, v := range r {
		tones[i] = newTone(v, rate)
	}
	return beep.Take(rate.N(r.length()), beep.Mix(tones...))
}

func chord(freqs []float64, stagger, attack time.Duration, peak float64, stop time.Duration) recipe {
	r := make(recipe, len(freqs))
	for i, f := range freqs {
		r[i] = voice{
			wave:   sine,
			from:   f,
			to:     f,
			start:  time.Duration(i) * stagger,
			attack: attack,
			peak:   peak,
			stop:   stop,
		}
	}
	return r
}

func sweep(wave waveform, from, to, peak float64, stop time.Duration) recipe {
	return recipe{{wave: wave, from: from, to: to, peak: peak, stop: stop}}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// recipes maps every cue to its oscillator layout
var recipes = map[types.Cue]recipe{
	// C major triad, staggered
	types.CueStartup:  chord([]float64{261.63, 329.63, 392.00}, ms(50), ms(100), 0.1, ms(800)),
	types.CueOpen:     sweep(triangle, 440, 880, 0.2, ms(150)),
	types.CueClose:    sweep(triangle, 880, 440, 0.2, ms(150)),
	types.CueMinimize: sweep(square, 600, 150, 0.15, ms(200)),
	types.CueClick:    sweep(sine, 1000, 1000, 0.3, ms(50)),
	// Descending C arpeggio
	types.CueShutdown: chord([]float64{261.63, 196.00, 164.81, 130.81}, ms(100), ms(50), 0.15, ms(1200)),
}
