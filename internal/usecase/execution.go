package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FxPilot/internal/domain/models"
	domrepo "FxPilot/internal/domain/repository"
	"FxPilot/internal/service/ratelimit"
	"FxPilot/pkg/logger"

	"github.com/google/uuid"
)

const (
	holdDiagnostic     = "nothing to execute for HOLD"
	throttleDiagnostic = "execution throttled"
)

// ExecutionService sits in front of the broker adapter. It filters out
// requests that must never reach the broker, throttles per symbol and keeps a
// bounded journal of every result.
type ExecutionService struct {
	executor  domrepo.Executor
	limiter   *ratelimit.Limiter
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	journal []models.ExecutionResult
	next    int
	full    bool
}

func NewExecutionService(
	executor domrepo.Executor,
	limiter *ratelimit.Limiter,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	journalSize int,
) *ExecutionService {
	if journalSize <= 0 {
		journalSize = 200
	}
	return &ExecutionService{
		executor:  executor,
		limiter:   limiter,
		publisher: publisher,
		metrics:   metrics,
		log:       log.With(logger.String("component", "execution")),
		now:       time.Now,
		journal:   make([]models.ExecutionResult, journalSize),
	}
}

// Submit runs req through the adapter and always returns a result.
func (s *ExecutionService) Submit(ctx context.Context, req models.ExecutionRequest, origin models.ExecutionOrigin) models.ExecutionResult {
	start := s.now()
	res := s.execute(ctx, req)
	res.ID = uuid.NewString()
	res.Origin = origin
	res.SubmittedAt = start

	s.metrics.RecordLatency("execute", s.now().Sub(start).Seconds())
	s.metrics.RecordExecution(res)
	s.append(res)

	if res.Filled() {
		s.log.Info("order filled",
			logger.String("symbol", req.Symbol),
			logger.String("action", string(req.Action)),
			logger.String("ticket", res.Ticket),
			logger.String("origin", string(origin)),
		)
	} else {
		s.log.Warn("order not filled",
			logger.String("symbol", req.Symbol),
			logger.String("action", string(req.Action)),
			logger.String("diagnostic", res.Diagnostic),
			logger.String("cause", res.Cause),
			logger.String("origin", string(origin)),
		)
	}

	if err := s.publisher.PublishExecution(ctx, res); err != nil {
		s.metrics.RecordError("publish_execution")
		s.log.Warn("publish execution event", logger.String("symbol", req.Symbol), logger.Error(err))
	}
	return res
}

func (s *ExecutionService) execute(ctx context.Context, req models.ExecutionRequest) (res models.ExecutionResult) {
	if req.Action == models.ActionHold {
		return models.FailedResult(req, holdDiagnostic, nil)
	}
	if !s.limiter.Allow(req.Symbol) {
		return models.FailedResult(req, throttleDiagnostic, fmt.Errorf("%w: rate limit for %s", models.ErrExecutionFailure, req.Symbol))
	}

	defer func() {
		if r := recover(); r != nil {
			res = models.FailedResult(req, models.BridgeDiagnostic, fmt.Errorf("%w: panic: %v", models.ErrExecutionFailure, r))
		}
	}()
	return s.executor.Execute(ctx, req)
}

func (s *ExecutionService) append(res models.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal[s.next] = res
	s.next = (s.next + 1) % len(s.journal)
	if s.next == 0 {
		s.full = true
	}
}

// Journal returns up to limit results, newest first.
func (s *ExecutionService) Journal(limit int) []models.ExecutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.journal)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]models.ExecutionResult, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.journal)) % len(s.journal)
		out = append(out, s.journal[idx])
	}
	return out
}
