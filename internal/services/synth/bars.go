package synth

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"FxPilot/internal/domain/models"
	domsvc "FxPilot/internal/domain/service"
)

// Option configures Synthesizer.
type Option func(*Synthesizer)

// WithSeed fixes the noise source so output is reproducible.
func WithSeed(seed int64) Option {
	return func(s *Synthesizer) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithLength sets how many bars are produced.
func WithLength(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.length = n
		}
	}
}

// WithInterval sets the spacing between bars.
func WithInterval(d time.Duration) Option {
	return func(s *Synthesizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Synthesizer builds a sine-shaped bar series with small random noise. It is
// only used when real market data is unavailable.
type Synthesizer struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	length   int
	interval time.Duration
}

// New creates a Synthesizer producing 120 hourly bars by default.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		length:   120,
		interval: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// BasePrice is the level the synthetic series oscillates around.
func BasePrice(symbol string) float64 {
	if symbol == "XAUUSD" {
		return 2300
	}
	return 1.08
}

// Synthesize returns the configured number of bars, or minBars if that is
// larger, ending one interval before end.
func (s *Synthesizer) Synthesize(symbol string, end time.Time, minBars int) []models.PriceBar {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := max(s.length, minBars)
	base := BasePrice(symbol)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		closePx := base + math.Sin(float64(i)/6)*0.001 + s.rnd.Float64()*0.0004
		openPx := closePx - s.rnd.Float64()*0.0004
		bars[i] = models.PriceBar{
			Time:   end.Add(-time.Duration(n-i) * s.interval),
			Open:   openPx,
			High:   math.Max(openPx, closePx) + s.rnd.Float64()*0.0007,
			Low:    math.Min(openPx, closePx) - s.rnd.Float64()*0.0007,
			Close:  closePx,
			Volume: 800 + s.rnd.Float64()*200,
		}
	}
	return bars
}

var _ domsvc.BarSynthesizer = (*Synthesizer)(nil)
