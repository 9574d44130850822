// Package audio plays short optional cues while a story is told.
// Every method is safe to call when the speaker could not be opened.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue identifies one of the story sounds
type Cue int

const (
	CueClick Cue = iota // word revealed
	CueChime            // page turned
	CueBuzz             // command failed
)

func (c Cue) String() string {
	switch c {
	case CueClick:
		return "click"
	case CueChime:
		return "chime"
	case CueBuzz:
		return "buzz"
	}
	return fmt.Sprintf("Cue(%d)", int(c))
}

// Cues owns the speaker mixer
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	enabled     bool
	initialized bool
}

// New creates a cue player; nothing is opened until Init
func New(enabled bool, volume float64) *Cues {
	return &Cues{
		mixer:   &beep.Mixer{},
		volume:  min(max(volume, 0), 1),
		enabled: enabled,
	}
}

// Init opens the speaker. Disabled players succeed without touching it.
func (c *Cues) Init() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close silences pending cues and releases the speaker
func (c *Cues) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// Play queues cue on the mixer
func (c *Cues) Play(cue Cue) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	s := Streamer(cue, c.volume)
	if s == nil {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

func (c *Cues) Click() { c.Play(CueClick) }
func (c *Cues) Chime() { c.Play(CueChime) }
func (c *Cues) Buzz()  { c.Play(CueBuzz) }

// Streamer builds the finite stream for cue at the given volume
func Streamer(cue Cue, volume float64) beep.Streamer {
	switch cue {
	case CueClick:
		d := 12 * time.Millisecond
		s := newShape(newTone(0, d, WaveNoise, sampleRate), d, time.Millisecond, 8*time.Millisecond, sampleRate)
		return gain(s, 0.3*volume)
	case CueChime:
		d := 220 * time.Millisecond
		sine, err := generators.SineTone(sampleRate, 880)
		if err != nil {
			return nil
		}
		fund := newShape(beep.Take(sampleRate.N(d), sine), d, 5*time.Millisecond, 180*time.Millisecond, sampleRate)
		over := newShape(newTone(1760, d, WaveSine, sampleRate), d, 5*time.Millisecond, 120*time.Millisecond, sampleRate)
		return gain(beep.Mix(gain(fund, 0.7), gain(over, 0.3)), volume)
	case CueBuzz:
		d := 150 * time.Millisecond
		s := newShape(newTone(100, d, WaveSaw, sampleRate), d, 10*time.Millisecond, 60*time.Millisecond, sampleRate)
		return gain(s, 0.4*volume)
	}
	return nil
}
