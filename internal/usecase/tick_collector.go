package usecase

import (
	"context"
	"errors"

	"FxPilot/internal/domain/models"
	drepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/logger"
)

type tickProcessor interface {
	Process(ctx context.Context, t models.Tick) error
}

// TickCollector pumps ticks from a live stream through the pipeline.
type TickCollector struct {
	stream  drepo.TickStream
	pipe    tickProcessor
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewTickCollector(stream drepo.TickStream, pipe tickProcessor, metrics drepo.Metrics, log *logger.Logger) *TickCollector {
	return &TickCollector{
		stream:  stream,
		pipe:    pipe,
		metrics: metrics,
		log:     log.With(logger.String("component", "tick_collector")),
	}
}

func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects and subscribes, then consumes in the background until ctx is
// done.
func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	go c.consume(ctx)
	return nil
}

func (c *TickCollector) consume(ctx context.Context) {
	ticks, errs := c.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.metrics.RecordError("stream")
			c.log.Warn("stream failed, reconnecting", logger.Error(err))
			if !c.reconnect(ctx) {
				return
			}
			ticks, errs = c.stream.Read(ctx)
		case t, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			if err := c.pipe.Process(ctx, t); err != nil && !errors.Is(err, models.ErrInvalidMarketData) {
				c.log.Warn("process tick", logger.String("symbol", t.Symbol), logger.Error(err))
			}
		}
	}
}

// reconnect retries until it succeeds or ctx is done.
func (c *TickCollector) reconnect(ctx context.Context) bool {
	for {
		err := c.stream.Reconnect(ctx)
		if err == nil {
			c.log.Info("stream reconnected")
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		c.metrics.RecordError("stream_reconnect")
		c.log.Warn("reconnect failed", logger.Error(err))
	}
}

func (c *TickCollector) Shutdown(context.Context) error {
	return c.stream.Close()
}
