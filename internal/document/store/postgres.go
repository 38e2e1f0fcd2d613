package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"motorcover/internal/document/models"
	id "motorcover/pkg/domain"
	"motorcover/pkg/platform/tx"
)

// Postgres persists document records in PostgreSQL. A partial unique index
// on (proposal_id, type) and (claim_id, type) backs the replace-on-reupload
// rule; Upsert deletes the earlier row first so its locator can be handed
// back for blob cleanup.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const documentColumns = `id, proposal_id, claim_id, type, filename, locator, size_bytes, uploaded_at`

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

func (s *Postgres) Upsert(ctx context.Context, doc *models.Document) (*models.Document, error) {
	var replaced *models.Document
	var parentClause string
	var parentArg any
	switch {
	case doc.ProposalID != nil:
		parentClause = "proposal_id = $1"
		parentArg = uuid.UUID(*doc.ProposalID)
	case doc.ClaimID != nil:
		parentClause = "claim_id = $1"
		parentArg = uuid.UUID(*doc.ClaimID)
	default:
		return nil, fmt.Errorf("document %s has no parent", doc.ID)
	}

	selectOld := `SELECT ` + documentColumns + ` FROM documents WHERE ` + parentClause + ` AND type = $2`
	old, err := scanDocument(s.q(ctx).QueryRowContext(ctx, selectOld, parentArg, doc.Type))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find replaced document: %w", err)
	}
	if err == nil {
		replaced = old
		if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, uuid.UUID(old.ID)); err != nil {
			return nil, fmt.Errorf("delete replaced document: %w", err)
		}
	}

	insert := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := s.q(ctx).ExecContext(ctx, insert,
		uuid.UUID(doc.ID), nullProposalID(doc.ProposalID), nullClaimID(doc.ClaimID),
		doc.Type, doc.Filename, doc.Locator, doc.SizeBytes, doc.UploadedAt,
	); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return replaced, nil
}

func (s *Postgres) ListByProposal(ctx context.Context, proposalID id.ProposalID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE proposal_id = $1 ORDER BY uploaded_at DESC`
	return s.queryDocuments(ctx, query, uuid.UUID(proposalID))
}

func (s *Postgres) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE claim_id = $1 ORDER BY uploaded_at DESC`
	return s.queryDocuments(ctx, query, uuid.UUID(claimID))
}

func (s *Postgres) DeleteByProposal(ctx context.Context, proposalID id.ProposalID) ([]*models.Document, error) {
	query := `DELETE FROM documents WHERE proposal_id = $1 RETURNING ` + documentColumns
	return s.queryDocuments(ctx, query, uuid.UUID(proposalID))
}

func (s *Postgres) DeleteByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Document, error) {
	query := `DELETE FROM documents WHERE claim_id = $1 RETURNING ` + documentColumns
	return s.queryDocuments(ctx, query, uuid.UUID(claimID))
}

func (s *Postgres) queryDocuments(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	documents := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return documents, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*models.Document, error) {
	var doc models.Document
	var documentID uuid.UUID
	var proposalID, claimID uuid.NullUUID
	if err := row.Scan(&documentID, &proposalID, &claimID, &doc.Type,
		&doc.Filename, &doc.Locator, &doc.SizeBytes, &doc.UploadedAt); err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(documentID)
	if proposalID.Valid {
		parent := id.ProposalID(proposalID.UUID)
		doc.ProposalID = &parent
	}
	if claimID.Valid {
		parent := id.ClaimID(claimID.UUID)
		doc.ClaimID = &parent
	}
	return &doc, nil
}

func nullProposalID(value *id.ProposalID) uuid.NullUUID {
	if value == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*value), Valid: true}
}

func nullClaimID(value *id.ClaimID) uuid.NullUUID {
	if value == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*value), Valid: true}
}
