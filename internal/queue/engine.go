package queue

import (
	"context"
	"errors"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// Engine applies state transitions against the authoritative request store.
type Engine struct {
	requests  repository.RequestRepository
	publisher notify.Publisher
	log       logger.Logger
}

// NewEngine creates an Engine.
func NewEngine(requests repository.RequestRepository, publisher notify.Publisher, log logger.Logger) *Engine {
	return &Engine{
		requests:  requests,
		publisher: publisher,
		log:       log.WithFields(logger.String("component", "queue")),
	}
}

// MarkPlayed moves a queued request to played.
func (e *Engine) MarkPlayed(ctx context.Context, requestID string) error {
	return e.transition(ctx, requestID, domain.StatusPlayed)
}

// Cancel moves a queued request to cancelled.
func (e *Engine) Cancel(ctx context.Context, requestID string) error {
	return e.transition(ctx, requestID, domain.StatusCancelled)
}

// transition is a compare-and-set on status. When the CAS loses, the row is
// re-read and the state rules decide between no-op, InvalidState and NotFound.
// Failures are reported, never retried.
func (e *Engine) transition(ctx context.Context, requestID string, target domain.RequestStatus) error {
	if requestID == "" {
		return domain.ErrRequestNotFound
	}

	updated, err := e.requests.UpdateStatusIf(ctx, requestID, domain.StatusQueued, target)
	if err != nil {
		metrics.RecordTransition(string(target), "error")
		return err
	}

	if !updated {
		current, err := e.requests.Get(ctx, requestID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			metrics.RecordTransition(string(target), "error")
			return err
		}
		if _, err := Transition(current, target); err != nil {
			metrics.RecordTransition(string(target), "rejected")
			return err
		}
		// already in target state
		metrics.RecordTransition(string(target), "noop")
		return nil
	}

	metrics.RecordTransition(string(target), "changed")
	e.log.WithContext(ctx).Info("request transitioned",
		logger.String("request_id", requestID),
		logger.String("status", string(target)),
	)

	if err := e.publisher.Publish(ctx, notify.TableRequests); err != nil {
		// the write is durable; the periodic resync will pick it up
		e.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
	return nil
}
