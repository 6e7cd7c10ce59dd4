package usecase

import (
	"context"
	"fmt"
	"sync"

	"FxPilot/internal/domain/models"
	"FxPilot/pkg/validation"
)

// StrategySnapshot is a consistent copy of the store taken under one lock.
type StrategySnapshot struct {
	Params    models.StrategyParameters
	Autopilot bool
}

// StrategyStore owns the active strategy parameters and the autopilot flag.
// Callers only ever receive copies.
type StrategyStore struct {
	mu        sync.RWMutex
	params    models.StrategyParameters
	autopilot bool
	subs      []chan bool
}

// NewStrategyStore validates initial and returns a store with autopilot off.
func NewStrategyStore(initial models.StrategyParameters) (*StrategyStore, error) {
	if err := ValidateStrategy(initial); err != nil {
		return nil, fmt.Errorf("initial strategy: %w", err)
	}
	return &StrategyStore{params: initial}, nil
}

// Strategy returns the committed parameters.
func (s *StrategyStore) Strategy() models.StrategyParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// UpdateStrategy replaces the parameters as a whole. A rejected candidate
// leaves the previous value untouched.
func (s *StrategyStore) UpdateStrategy(candidate models.StrategyParameters) (models.StrategyParameters, error) {
	if err := ValidateStrategy(candidate); err != nil {
		return models.StrategyParameters{}, err
	}
	s.mu.Lock()
	s.params = candidate
	s.mu.Unlock()
	return candidate, nil
}

func (s *StrategyStore) AutopilotEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autopilot
}

// SetAutopilotState is the only way to engage or disengage the autopilot.
// Subscribers are told about every call; a slow subscriber only sees the
// latest value.
func (s *StrategyStore) SetAutopilotState(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autopilot = enabled
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- enabled
	}
}

func (s *StrategyStore) Snapshot() StrategySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StrategySnapshot{Params: s.params, Autopilot: s.autopilot}
}

// Subscribe returns a channel that receives the autopilot flag after each
// SetAutopilotState call.
func (s *StrategyStore) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// ValidateStrategy checks every range rule and the window ordering.
func ValidateStrategy(p models.StrategyParameters) error {
	ferrs, err := validation.Struct(context.Background(), &p)
	if err != nil {
		return fmt.Errorf("validate strategy: %w", err)
	}
	if len(ferrs) == 0 {
		return nil
	}
	verr := &models.ValidationError{Violations: make([]models.FieldViolation, 0, len(ferrs))}
	for _, fe := range ferrs {
		verr.Violations = append(verr.Violations, models.FieldViolation{
			Field:   fe.Field,
			Rule:    fe.Tag,
			Param:   fe.Param,
			Message: fe.Message,
		})
	}
	return verr
}
