package sound

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	played  []string
	dropped []string
}

func (r *recordingObserver) RecordCue(cue string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, cue)
}

func (r *recordingObserver) RecordCueDropped(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, reason)
}

func (r *recordingObserver) drops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dropped...)
}

func TestDispatcherDropsUntilUnlocked(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDispatcher(Options{Enabled: true, Observer: obs}, nil)

	var mu sync.Mutex
	var got []types.Cue
	d.Subscribe(func(cue types.Cue) {
		mu.Lock()
		got = append(got, cue)
		mu.Unlock()
	})

	d.Notify(types.CueStartup)
	assert.Equal(t, []string{DropLocked}, obs.drops())

	d.Unlock()
	d.Unlock()
	assert.True(t, d.Unlocked())

	d.Notify(types.CueOpen)
	d.Notify(types.CueClose)
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []types.Cue{types.CueOpen, types.CueClose}, got)
	assert.Equal(t, []string{"open", "close"}, obs.played)
}

func TestDispatcherDisabled(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDispatcher(Options{Enabled: false, Observer: obs}, nil)
	defer d.Close()

	d.Unlock()
	d.Notify(types.CueClick)
	assert.Equal(t, []string{DropDisabled}, obs.drops())
}

func TestDispatcherUnknownCue(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDispatcher(Options{Enabled: true, Observer: obs}, nil)
	defer d.Close()

	d.Unlock()
	d.Notify(types.Cue("fanfare"))
	assert.Equal(t, []string{DropUnknown}, obs.drops())
}

func TestDispatcherNeverBlocks(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDispatcher(Options{Enabled: true, QueueSize: 1, Observer: obs}, nil)
	d.Unlock()

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	d.Subscribe(func(types.Cue) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})

	// First cue parks the delivery goroutine inside the sink
	d.Notify(types.CueOpen)
	<-entered

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(types.CueClick)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	assert.Contains(t, obs.drops(), DropFull)
	close(release)
	d.Close()
}

func TestDispatcherAfterClose(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDispatcher(Options{Enabled: true, Observer: obs}, nil)
	d.Unlock()
	d.Close()
	d.Close()

	assert.NotPanics(t, func() { d.Notify(types.CueOpen) })
	assert.Equal(t, []string{DropClosed}, obs.drops())
}

func TestBankRendersEveryCue(t *testing.T) {
	bank, err := NewBank(1)
	require.NoError(t, err)

	for _, cue := range types.AllCues {
		t.Run(string(cue), func(t *testing.T) {
			clip, ok := bank.Clip(cue)
			require.True(t, ok)
			assert.Equal(t, "audio/wav", clip.ContentType)
			assert.Equal(t, recipes[cue].length(), clip.Duration)

			streamer, format, err := wav.Decode(bytes.NewReader(clip.Data))
			require.NoError(t, err)
			defer streamer.Close()

			assert.Equal(t, Format.SampleRate, format.SampleRate)
			assert.Equal(t, Format.SampleRate.N(clip.Duration), streamer.Len())
		})
	}

	_, ok := bank.Clip(types.Cue("fanfare"))
	assert.False(t, ok)
}

func TestBankVolumeIsClamped(t *testing.T) {
	bank, err := NewBank(3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, bank.Volume())

	muted, err := NewBank(-1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, muted.Volume())
}

func TestVoiceEnvelope(t *testing.T) {
	startup := recipes[types.CueStartup]
	second := startup[1]

	assert.Zero(t, second.gain(ms(40)), "second voice has not started yet")
	assert.InDelta(t, 0.05, second.gain(ms(100)), 1e-9, "halfway through the attack")
	assert.InDelta(t, 0.1, second.gain(ms(150)), 1e-9, "peak at the end of the attack")
	assert.Zero(t, second.gain(ms(800)))

	open := recipes[types.CueOpen][0]
	assert.InDelta(t, 440, open.frequency(0), 1e-9)
	assert.InDelta(t, 440*1.4142135623730951, open.frequency(ms(75)), 1e-6)
}

func TestMemFileSeekAndOverwrite(t *testing.T) {
	f := &memFile{}
	_, _ = f.Write([]byte("hello world"))

	pos, err := f.Seek(0, 0)
	require.NoError(t, err)
	assert.Zero(t, pos)

	_, _ = f.Write([]byte("HELLO"))
	assert.Equal(t, "HELLO world", string(f.buf))

	_, err = f.Seek(-1, 0)
	assert.Error(t, err)
}
