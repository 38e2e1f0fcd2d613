package emitter

import (
	"context"

	"motorcover/internal/notification/models"
	dErrors "motorcover/pkg/domain-errors"
)

// OutboxWriter is the slice of the outbox store the emitter needs.
type OutboxWriter interface {
	Create(ctx context.Context, event *models.Event) error
}

// Emitter appends events to the outbox. Services call Emit after a state
// transition; when the store is transaction-aware the event commits with
// the transition that produced it, and the relay picks it up afterwards.
type Emitter struct {
	outbox OutboxWriter
}

func New(outbox OutboxWriter) *Emitter {
	return &Emitter{outbox: outbox}
}

func (e *Emitter) Emit(ctx context.Context, event *models.Event) error {
	if event == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "notification event is required")
	}
	if err := e.outbox.Create(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue notification")
	}
	return nil
}
