package bridge

import (
	"context"
	"fmt"

	"FxPilot/internal/domain/models"
	"FxPilot/internal/domain/repository"
)

// Broker reads account state from the bridge.
type Broker struct {
	c *Client
}

var _ repository.Broker = (*Broker)(nil)

func NewBroker(c *Client) *Broker {
	return &Broker{c: c}
}

func (b *Broker) Status(ctx context.Context) (models.BrokerStatus, error) {
	var st models.BrokerStatus
	if err := b.c.GetJSON(ctx, "/account/status", nil, &st); err != nil {
		return models.BrokerStatus{}, fmt.Errorf("broker status: %w", err)
	}
	return st, nil
}

func (b *Broker) AccountMetrics(ctx context.Context) (models.AccountMetrics, error) {
	var m models.AccountMetrics
	if err := b.c.GetJSON(ctx, "/account/metrics", nil, &m); err != nil {
		return models.AccountMetrics{}, fmt.Errorf("account metrics: %w", err)
	}
	m.Live = true
	return m, nil
}

// position is the bridge's view of an open trade; only the ticket encoding
// differs from models.OpenTrade.
type position struct {
	models.OpenTrade
	Ticket ticketID `json:"ticket"`
}

func (b *Broker) OpenTrades(ctx context.Context) ([]models.OpenTrade, error) {
	var positions []position
	if err := b.c.GetJSON(ctx, "/positions", nil, &positions); err != nil {
		return nil, fmt.Errorf("open trades: %w", err)
	}
	trades := make([]models.OpenTrade, 0, len(positions))
	for _, p := range positions {
		tr := p.OpenTrade
		tr.Ticket = string(p.Ticket)
		trades = append(trades, tr)
	}
	return trades, nil
}
