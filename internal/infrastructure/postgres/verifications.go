package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bahir-ride/api/internal/domain"
	"github.com/bahir-ride/api/internal/pkg/id"
)

// VerificationRepo persists the durable audit trail of issued codes.
type VerificationRepo struct {
	db *sql.DB
}

func NewVerificationRepo(db *sql.DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// Replace invalidates prior unverified records of the same kind and inserts
// a fresh one, keeping at most one unverified record per (identity, kind).
func (r *VerificationRepo) Replace(ctx context.Context, identityID string, kind domain.VerificationKind, code string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM verification_records
		WHERE identity_id = $1 AND kind = $2 AND verified = FALSE`, identityID, kind); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verification_records (id, identity_id, kind, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)`, id.New(), identityID, kind, code, expiresAt); err != nil {
		return err
	}
	return tx.Commit()
}

// Create inserts an unverified record without touching prior ones. Used for
// document-kind records awaiting back-office review.
func (r *VerificationRepo) Create(ctx context.Context, rec *domain.VerificationRecord) error {
	if rec.ID == "" {
		rec.ID = id.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_records (id, identity_id, kind, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.IdentityID, rec.Kind, rec.Code, rec.ExpiresAt)
	return err
}

// ListByIdentity returns the identity's verification history, newest first.
func (r *VerificationRepo) ListByIdentity(ctx context.Context, identityID string) ([]domain.VerificationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, identity_id, kind, verified, verified_at, expires_at, created_at
		FROM verification_records
		WHERE identity_id = $1
		ORDER BY created_at DESC`, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.VerificationRecord
	for rows.Next() {
		var (
			rec        domain.VerificationRecord
			verifiedAt sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.IdentityID, &rec.Kind, &rec.Verified,
			&verifiedAt, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if verifiedAt.Valid {
			rec.VerifiedAt = &verifiedAt.Time
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
