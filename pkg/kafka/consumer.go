package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"FxPilot/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics and hands messages to a worker pool.
// Failed messages are retried with jittered backoff, then sent to the DLQ
// (if configured) and committed.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	msgs     chan kafka.Message
	dlq      *kafka.Writer
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "fxpilot",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := &Consumer{
		cfg:      cfg,
		log:      log.With(logger.String("component", "kafka_consumer")),
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		msgs:     make(chan kafka.Message, cfg.BufferSize),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}
	return c, nil
}

// RegisterHandler must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// Start launches one reader per topic plus the worker pool. It returns
// immediately; use Stop to shut down.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	var readers sync.WaitGroup
	for topic, reader := range c.readers {
		readers.Add(1)
		go func(topic string, r *kafka.Reader) {
			defer readers.Done()
			c.read(ctx, topic, r)
		}(topic, reader)
	}
	// Workers drain msgs until every reader has stopped.
	go func() {
		readers.Wait()
		close(c.msgs)
	}()

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.work(ctx)
	}

	c.log.Info("kafka consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.Int("topics", len(c.readers)),
	)
	return nil
}

// Stop cancels reading and waits for in-flight messages up to ctx.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}

		for topic, r := range c.readers {
			if err := r.Close(); err != nil {
				c.log.Warn("close reader failed", logger.String("topic", topic), logger.Error(err))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return stopErr
}

func (c *Consumer) read(ctx context.Context, topic string, r *kafka.Reader) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			c.log.Warn("fetch failed", logger.String("topic", topic), logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.BackoffMin):
			}
			continue
		}

		select {
		case c.msgs <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) work(ctx context.Context) {
	defer c.wg.Done()
	for msg := range c.msgs {
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	h, ok := c.handlers[msg.Topic]
	if !ok {
		return
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = c.safeHandle(ctx, h, msg.Value)
		if err == nil || attempt > c.cfg.RetryMax {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		}
	}

	if err != nil {
		c.log.Error("message handling failed",
			logger.String("topic", msg.Topic),
			logger.Int64("offset", msg.Offset),
			logger.Error(err),
		)
		if c.dlq == nil {
			return
		}
		if dlqErr := c.dlq.WriteMessages(context.Background(), kafka.Message{
			Topic:   c.cfg.DLQTopic,
			Key:     msg.Key,
			Value:   msg.Value,
			Headers: []kafka.Header{{Key: "source_topic", Value: []byte(msg.Topic)}},
		}); dlqErr != nil {
			c.log.Error("dlq write failed", logger.Error(dlqErr))
			return
		}
	}

	commitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if r := c.readers[msg.Topic]; r != nil {
		if err := r.CommitMessages(commitCtx, msg); err != nil {
			c.log.Warn("commit failed", logger.String("topic", msg.Topic), logger.Error(err))
		}
	}
}

func (c *Consumer) safeHandle(ctx context.Context, h MessageHandler, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, data)
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	exp := min << uint(attempt-1)
	if exp > max || exp <= 0 {
		exp = max
	}
	// up to 50% jitter
	if half := int64(exp) / 2; half > 0 {
		exp -= time.Duration(rand.Int63n(half))
	}
	return exp
}
