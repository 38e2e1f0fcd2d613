package relay

import (
	"context"
	"log/slog"
	"time"

	"motorcover/internal/notification/mailer"
	"motorcover/internal/notification/models"
	"motorcover/internal/platform/metrics"
	id "motorcover/pkg/domain"
	"motorcover/pkg/requestcontext"
)

const (
	defaultInterval  = 15 * time.Second
	defaultBatchSize = 50
	// maxAttempts caps retries per event. Beyond this the row stays
	// failed and an operator follows up.
	maxAttempts = 5
)

// Outbox is the slice of the notification store the relay needs.
type Outbox interface {
	ListPending(ctx context.Context, limit int) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
}

// RecipientResolver maps a user to a deliverable address.
type RecipientResolver interface {
	EmailOf(ctx context.Context, userID id.UserID) (string, error)
}

// Publisher mirrors delivered events onto the event stream. Optional;
// stream failures never block mail delivery.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event) error
}

// Relay drains the outbox on a fixed interval: resolve the recipient, send
// the mail, mirror to the stream, record the outcome. One failing event
// does not stop the batch.
type Relay struct {
	outbox    Outbox
	mailer    mailer.Mailer
	users     RecipientResolver
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
	batchSize int
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(r *Relay) { r.publisher = p }
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

func New(outbox Outbox, m mailer.Mailer, users RecipientResolver, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		mailer:    m,
		users:     users,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.DispatchPending(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox dispatch pass failed", "error", err)
			}
		}
	}
}

// DispatchPending processes one batch. Exported so tests and the CLI can
// drain the outbox without the ticker.
func (r *Relay) DispatchPending(ctx context.Context) error {
	events, err := r.outbox.ListPending(ctx, r.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if event.Attempts >= maxAttempts {
			continue
		}
		r.dispatch(ctx, event)
	}
	return nil
}

func (r *Relay) dispatch(ctx context.Context, event *models.Event) {
	now := requestcontext.Now(ctx)

	email, err := r.users.EmailOf(ctx, event.RecipientID)
	if err != nil {
		r.recordFailure(ctx, event, err, now)
		return
	}

	err = r.mailer.Send(ctx, mailer.Message{
		To:             email,
		Subject:        event.Subject,
		Body:           event.Body,
		Attachment:     event.Attachment,
		AttachmentName: event.AttachmentName,
	})
	if err != nil {
		r.recordFailure(ctx, event, err, now)
		return
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.WarnContext(ctx, "event stream publish failed",
				"event_id", event.ID, "type", event.Type, "error", err)
		}
	}

	event.MarkSent(now)
	if err := r.outbox.Update(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "sent event not recorded, delivery may repeat",
			"event_id", event.ID, "error", err)
		return
	}
	r.logger.InfoContext(ctx, "notification delivered",
		"event_id", event.ID, "type", event.Type, "recipient_id", event.RecipientID)
}

func (r *Relay) recordFailure(ctx context.Context, event *models.Event, cause error, now time.Time) {
	event.MarkFailed(cause, now)
	if err := r.outbox.Update(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "failed event not recorded",
			"event_id", event.ID, "error", err)
	}
	if r.metrics != nil {
		r.metrics.NotificationErrors.Inc()
	}
	r.logger.WarnContext(ctx, "notification delivery failed",
		"event_id", event.ID, "type", event.Type,
		"attempts", event.Attempts, "error", cause)
}
