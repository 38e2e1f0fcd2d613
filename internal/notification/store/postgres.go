package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"motorcover/internal/notification/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/sentinel"
	"motorcover/pkg/platform/tx"
)

// Postgres persists outbox events in PostgreSQL. Create joins an ambient
// transaction when one is present, so an event commits or rolls back with
// the state transition that produced it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const eventColumns = `id, type, recipient_id, subject, body, attachment, attachment_name,
	status, attempts, last_error, last_attempt_at, created_at, sent_at`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) q(ctx context.Context) querier {
	if t := tx.From(ctx); t != nil {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO notification_outbox (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID), string(event.Type), uuid.UUID(event.RecipientID),
		event.Subject, event.Body, event.Attachment, event.AttachmentName,
		string(event.Status), event.Attempts, nullString(event.LastError),
		nullTime(event.LastAttemptAt), event.CreatedAt, nullTime(event.SentAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create outbox event: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create outbox event: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, eventID id.NotificationID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM notification_outbox WHERE id = $1`
	event, err := scanEvent(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("outbox event %s: %w", eventID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find outbox event: %w", err)
	}
	return event, nil
}

// ListPending returns undelivered events oldest first, up to limit. Failed
// events are included so the relay retries them. FOR UPDATE SKIP LOCKED
// keeps concurrent relay instances from dispatching the same event twice.
func (s *Postgres) ListPending(ctx context.Context, limit int) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM notification_outbox
		WHERE status <> $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, string(models.EventStatusSent), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// Update persists delivery bookkeeping written by MarkSent or MarkFailed.
func (s *Postgres) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE notification_outbox
		SET status = $2, attempts = $3, last_error = $4, last_attempt_at = $5, sent_at = $6
		WHERE id = $1
	`
	result, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID), string(event.Status), event.Attempts,
		nullString(event.LastError), nullTime(event.LastAttemptAt), nullTime(event.SentAt),
	)
	if err != nil {
		return fmt.Errorf("update outbox event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox event: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("outbox event %s: %w", event.ID, sentinel.ErrNotFound)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (*models.Event, error) {
	var event models.Event
	var eventID, recipientID uuid.UUID
	var eventType, status string
	var lastError sql.NullString
	var lastAttemptAt, sentAt sql.NullTime
	if err := row.Scan(&eventID, &eventType, &recipientID, &event.Subject, &event.Body,
		&event.Attachment, &event.AttachmentName, &status, &event.Attempts,
		&lastError, &lastAttemptAt, &event.CreatedAt, &sentAt); err != nil {
		return nil, err
	}
	event.ID = id.NotificationID(eventID)
	event.Type = models.EventType(eventType)
	event.RecipientID = id.UserID(recipientID)
	event.Status = models.EventStatus(status)
	event.LastError = lastError.String
	if lastAttemptAt.Valid {
		t := lastAttemptAt.Time
		event.LastAttemptAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		event.SentAt = &t
	}
	return &event, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
