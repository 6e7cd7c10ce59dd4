package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	pkgkafka "FxPilot/pkg/kafka"
	"FxPilot/pkg/util"
)

// KafkaTicksHandler feeds ticks published on a Kafka topic into the pipeline.
type KafkaTicksHandler struct {
	topic   string
	pipe    tickProcessor
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, pipe tickProcessor, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, p, v}, t in seconds or milliseconds
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		P      float64 `json:"p"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode tick: %w", err)
	}

	tick := models.Tick{Symbol: m.Symbol, Time: util.FromUnixAuto(m.T), Price: m.P, Volume: m.V}
	h.metrics.RecordLatency("ingest_e2e", time.Since(tick.Time).Seconds())

	// Malformed ticks will not get better on retry.
	if err := h.pipe.Process(ctx, tick); err != nil && !errors.Is(err, models.ErrInvalidMarketData) {
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
