package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave selects the oscillator shape
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// tone is a fixed-length oscillator
type tone struct {
	freq  float64
	phase float64
	left  int
	wave  Wave
	rate  beep.SampleRate
	rng   *rand.Rand
}

func newTone(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &tone{
		freq: freq,
		left: rate.N(d),
		wave: wave,
		rate: rate,
		rng:  rand.New(rand.NewSource(int64(freq*1000) + int64(d))),
	}
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.left <= 0 {
		return 0, false
	}
	n := min(len(samples), t.left)
	for i := 0; i < n; i++ {
		var v float64
		switch t.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case WaveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (t.phase - 0.5)
		case WaveNoise:
			v = t.rng.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
	}
	t.left -= n
	return n, true
}

func (t *tone) Err() error { return nil }

// shape applies a linear attack and release to a fixed-length stream
type shape struct {
	s               beep.Streamer
	pos             int
	attack, release int
	total           int
}

func newShape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &shape{
		s:       s,
		attack:  rate.N(attack),
		release: rate.N(release),
		total:   rate.N(d),
	}
}

func (e *shape) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	relStart := e.total - e.release
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, i > 0
		}
		g := 1.0
		if e.pos < e.attack {
			g = float64(e.pos) / float64(e.attack)
		} else if e.release > 0 && e.pos >= relStart {
			g = float64(e.total-e.pos) / float64(e.release)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *shape) Err() error { return e.s.Err() }

// gain scales s by a linear volume; zero silences it
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
