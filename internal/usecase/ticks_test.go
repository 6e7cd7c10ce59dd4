package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/internal/middleware"
	"FxPilot/pkg/logger"
)

func TestKafkaTicksHandlerFeedsAggregator(t *testing.T) {
	agg := NewBarAggregator(domrepo.TF1m, 10)
	pipe := middleware.NewTickPipeline(agg, newCountingMetrics(), middleware.WithMaxRPS(0))
	h := NewKafkaTicksHandler("fxpilot.ticks", pipe, newCountingMetrics())

	if h.Topic() != "fxpilot.ticks" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"EURUSD","t":1709283600000,"p":1.0851,"v":3}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"EURUSD","t":1709283601,"p":-1,"v":3}`)); err != nil {
		t.Fatalf("malformed ticks are dropped, got %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}

	bars, _ := agg.LatestBars(context.Background(), "EURUSD", 5, domrepo.TF1m)
	if len(bars) != 1 || bars[0].Close != 1.0851 || bars[0].Volume != 3 {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

type fakeStream struct {
	mu         sync.Mutex
	reads      int
	reconnects atomic.Int32
	connected  bool
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *fakeStream) Subscribe(context.Context) error { return nil }

// Read fails the first connection after one tick and serves one more tick on
// the next.
func (s *fakeStream) Read(context.Context) (<-chan models.Tick, <-chan error) {
	s.mu.Lock()
	s.reads++
	n := s.reads
	s.mu.Unlock()

	ticks := make(chan models.Tick, 1)
	errs := make(chan error, 1)
	ticks <- models.Tick{Symbol: "EURUSD", Time: time.Unix(1709283600+int64(n), 0), Price: 1.08, Volume: 1}
	if n == 1 {
		go func() {
			time.Sleep(10 * time.Millisecond)
			errs <- errors.New("connection reset")
			close(errs)
		}()
	}
	return ticks, errs
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.reconnects.Add(1)
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

type lockedSink struct {
	mu    sync.Mutex
	ticks []models.Tick
}

func (s *lockedSink) Add(t models.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, t)
}

func (s *lockedSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

func TestTickCollectorReconnectsAndResumes(t *testing.T) {
	stream := &fakeStream{}
	sink := &lockedSink{}
	pipe := middleware.NewTickPipeline(sink, newCountingMetrics(), middleware.WithMaxRPS(0))
	c := NewTickCollector(stream, pipe, newCountingMetrics(), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !c.IsConnected() {
		t.Fatalf("expected connected")
	}

	if !waitFor(time.Second, func() bool { return sink.len() == 2 }) {
		t.Fatalf("expected ticks from both connections, got %d", sink.len())
	}
	if stream.reconnects.Load() != 1 {
		t.Fatalf("expected one reconnect, got %d", stream.reconnects.Load())
	}
	if err := c.Shutdown(context.Background()); err != nil || c.IsConnected() {
		t.Fatalf("shutdown: %v", err)
	}
}
