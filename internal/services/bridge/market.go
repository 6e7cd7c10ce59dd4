package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"FxPilot/internal/domain/models"
	"FxPilot/internal/domain/repository"
	"FxPilot/pkg/util"
)

type signalPayload struct {
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	Price      float64 `json:"price"`
	Timestamp  string  `json:"timestamp"`
}

// MarketSource asks the bridge for a ready-made signal.
type MarketSource struct {
	c   *Client
	now func() time.Time
}

var _ repository.MarketSignalSource = (*MarketSource)(nil)

func NewMarketSource(c *Client) *MarketSource {
	return &MarketSource{c: c, now: time.Now}
}

func (m *MarketSource) FetchSignal(ctx context.Context, symbol string, params models.StrategyParameters) (models.Signal, error) {
	var p signalPayload
	err := m.c.GetJSON(ctx, "/signal", map[string][]string{
		"symbol":      {symbol},
		"shortWindow": {strconv.Itoa(params.ShortWindow)},
		"longWindow":  {strconv.Itoa(params.LongWindow)},
		"riskReward":  {strconv.FormatFloat(params.RiskReward, 'f', -1, 64)},
	}, &p)
	if err != nil {
		return models.Signal{}, fmt.Errorf("bridge signal %s: %w: %v", symbol, models.ErrCollaboratorUnavailable, err)
	}

	action := models.Action(p.Action)
	if !action.Valid() {
		return models.Signal{}, fmt.Errorf("bridge signal %s: action %q: %w", symbol, p.Action, models.ErrCollaboratorUnavailable)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return models.Signal{}, fmt.Errorf("bridge signal %s: confidence %v out of range: %w", symbol, p.Confidence, models.ErrCollaboratorUnavailable)
	}

	return models.Signal{
		Symbol:     symbol,
		Action:     action,
		Confidence: p.Confidence,
		StopLoss:   p.StopLoss,
		TakeProfit: p.TakeProfit,
		Price:      p.Price,
		Timestamp:  util.ParseTimeDefault(p.Timestamp, m.now().UTC()),
		Source:     models.SourceMarket,
	}, nil
}
