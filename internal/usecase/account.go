package usecase

import (
	"context"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/logger"
)

// AccountService reads broker state and substitutes the demo values whenever
// the bridge cannot answer.
type AccountService struct {
	broker domrepo.Broker
	log    *logger.Logger
	now    func() time.Time
}

func NewAccountService(broker domrepo.Broker, log *logger.Logger) *AccountService {
	return &AccountService{
		broker: broker,
		log:    log.With(logger.String("component", "account")),
		now:    time.Now,
	}
}

func (s *AccountService) Status(ctx context.Context) models.BrokerStatus {
	st, err := s.broker.Status(ctx)
	if err != nil {
		s.log.Warn("broker status unavailable, reporting disconnected", logger.Error(err))
		return models.DisconnectedStatus()
	}
	return st
}

// Metrics returns live account metrics, or the demo account with Live unset.
func (s *AccountService) Metrics(ctx context.Context) models.AccountMetrics {
	m, err := s.broker.AccountMetrics(ctx)
	if err != nil {
		s.log.Warn("account metrics unavailable, using fallback", logger.Error(err))
		return models.FallbackAccountMetrics()
	}
	return m
}

// OpenTrades returns the broker's open positions, or the demo positions.
func (s *AccountService) OpenTrades(ctx context.Context) models.TradeBook {
	trades, err := s.broker.OpenTrades(ctx)
	if err != nil {
		s.log.Warn("open trades unavailable, using fallback", logger.Error(err))
		return models.TradeBook{Trades: models.FallbackTrades(s.now()), Live: false}
	}
	return models.TradeBook{Trades: trades, Live: true}
}
