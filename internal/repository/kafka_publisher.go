package repository

import (
	"context"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
)

// producer is the subset of pkg/kafka.Producer used here.
type producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	Close() error
}

// SignalEvent is the payload written to the signal topic.
type SignalEvent struct {
	Type   string        `json:"type"`
	Signal models.Signal `json:"signal"`
}

// ExecutionEvent is the payload written to the execution topic.
type ExecutionEvent struct {
	Type   string                 `json:"type"`
	Result models.ExecutionResult `json:"result"`
}

// KafkaPublisher keys every event by symbol.
type KafkaPublisher struct {
	producer       producer
	signalTopic    string
	executionTopic string
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p producer, signalTopic, executionTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, signalTopic: signalTopic, executionTopic: executionTopic}
}

func (p *KafkaPublisher) PublishSignal(ctx context.Context, sig models.Signal) error {
	return p.producer.Publish(ctx, p.signalTopic, sig.Symbol, SignalEvent{Type: "signal", Signal: sig})
}

func (p *KafkaPublisher) PublishExecution(ctx context.Context, res models.ExecutionResult) error {
	return p.producer.Publish(ctx, p.executionTopic, res.Request.Symbol, ExecutionEvent{Type: "execution", Result: res})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

var _ domrepo.EventPublisher = NopPublisher{}

func (NopPublisher) PublishSignal(context.Context, models.Signal) error             { return nil }
func (NopPublisher) PublishExecution(context.Context, models.ExecutionResult) error { return nil }
func (NopPublisher) Close() error                                                   { return nil }
