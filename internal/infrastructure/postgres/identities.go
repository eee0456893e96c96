package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bahir-ride/api/internal/domain"
	"github.com/bahir-ride/api/internal/pkg/id"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const identityColumns = `id, phone_number, COALESCE(email,''), password_hash,
	first_name, last_name, role, status,
	COALESCE(to_char(date_of_birth, 'YYYY-MM-DD'),''), COALESCE(gender,''), token_version,
	COALESCE(fayda_id,''), COALESCE(fayda_id_front_url,''), COALESCE(fayda_id_back_url,''),
	last_login_at, created_at, updated_at`

// IdentityRepo persists identities and their role-specific profile rows.
type IdentityRepo struct {
	db *sql.DB
}

func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{db: db}
}

func scanIdentity(row interface{ Scan(...any) error }) (*domain.Identity, error) {
	var (
		u         domain.Identity
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.PhoneNumber, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Role, &u.Status,
		&u.DateOfBirth, &u.Gender, &u.TokenVersion,
		&u.FaydaID, &u.FaydaFrontURL, &u.FaydaBackURL,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

// identifierColumn picks the lookup column for a canonical identifier.
func identifierColumn(identifier string) string {
	if strings.Contains(identifier, "@") {
		return "email"
	}
	return "phone_number"
}

// GetByIdentifier looks up an identity by canonical phone number or email.
func (r *IdentityRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	q := fmt.Sprintf(`SELECT %s FROM identities WHERE %s = $1`, identityColumns, identifierColumn(identifier))
	return scanIdentity(r.db.QueryRowContext(ctx, q, identifier))
}

// Get looks up an identity by primary key.
func (r *IdentityRepo) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	q := fmt.Sprintf(`SELECT %s FROM identities WHERE id = $1`, identityColumns)
	return scanIdentity(r.db.QueryRowContext(ctx, q, identityID))
}

// CreateWithProfile inserts the identity row and its role-specific profile
// row in one transaction. Concurrent registrations for the same identifier
// serialize through the unique constraint; the loser gets
// domain.ErrAlreadyRegistered.
func (r *IdentityRepo) CreateWithProfile(ctx context.Context, u *domain.Identity) error {
	if u.ID == "" {
		u.ID = id.New()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (
			id, phone_number, email, password_hash, first_name, last_name,
			role, status, date_of_birth, gender, token_version,
			fayda_id, fayda_id_front_url, fayda_id_back_url
		) VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,NULLIF($9,'')::date,NULLIF($10,''),$11,
			NULLIF($12,''),NULLIF($13,''),NULLIF($14,''))`,
		u.ID, u.PhoneNumber, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Role, u.Status, u.DateOfBirth, u.Gender, u.TokenVersion,
		u.FaydaID, u.FaydaFrontURL, u.FaydaBackURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyRegistered
		}
		return err
	}

	switch u.Role {
	case domain.RolePassenger:
		_, err = tx.ExecContext(ctx, `INSERT INTO passengers (identity_id) VALUES ($1)`, u.ID)
	case domain.RoleDriver:
		_, err = tx.ExecContext(ctx, `INSERT INTO drivers (identity_id) VALUES ($1)`, u.ID)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Activate flips a pending identity to active after a successful code
// verification: inside one transaction it re-reads the row with a lock,
// rejects suspended/inactive terminally, marks the matching verification
// record verified and stamps last_login_at. Any failure rolls everything
// back and no tokens may be issued.
func (r *IdentityRepo) Activate(ctx context.Context, identifier string, kind domain.VerificationKind) (*domain.Identity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	q := fmt.Sprintf(`SELECT %s FROM identities WHERE %s = $1 FOR UPDATE`,
		identityColumns, identifierColumn(identifier))
	u, err := scanIdentity(tx.QueryRowContext(ctx, q, identifier))
	if err != nil {
		return nil, err
	}

	switch u.Status {
	case domain.StatusSuspended, domain.StatusInactive:
		return nil, domain.ErrUserSuspended
	case domain.StatusPending:
		if _, err := tx.ExecContext(ctx,
			`UPDATE identities SET status = 'active', updated_at = NOW() WHERE id = $1`, u.ID); err != nil {
			return nil, err
		}
		u.Status = domain.StatusActive
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE verification_records SET verified = TRUE, verified_at = NOW()
		WHERE identity_id = $1 AND kind = $2 AND verified = FALSE`, u.ID, kind); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE identities SET last_login_at = $2, updated_at = NOW() WHERE id = $1`, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLoginAt = &now

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

// TouchLastLogin stamps a successful password login.
func (r *IdentityRepo) TouchLastLogin(ctx context.Context, identityID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, identityID)
	return err
}

// UpdatePasswordHash rewrites the password credential.
func (r *IdentityRepo) UpdatePasswordHash(ctx context.Context, identityID, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities SET password_hash = $2, updated_at = NOW() WHERE id = $1`, identityID, hash)
	return err
}

// UpdateStatus is the privileged transition to suspended/inactive/active.
func (r *IdentityRepo) UpdateStatus(ctx context.Context, identityID string, status domain.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET status = $2, updated_at = NOW() WHERE id = $1`, identityID, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// BumpTokenVersion increments the identity's token version, invalidating
// previously issued tokens once verifiers compare against the stored value.
func (r *IdentityRepo) BumpTokenVersion(ctx context.Context, identityID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities SET token_version = token_version + 1, updated_at = NOW() WHERE id = $1`, identityID)
	return err
}

// GetPassengerProfile returns the passenger row for an identity, or
// domain.ErrUserNotFound when none exists.
func (r *IdentityRepo) GetPassengerProfile(ctx context.Context, identityID string) (*domain.PassengerProfile, error) {
	var p domain.PassengerProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT identity_id, created_at FROM passengers WHERE identity_id = $1`, identityID).
		Scan(&p.IdentityID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDriverProfile returns the driver row for an identity, or
// domain.ErrUserNotFound when none exists.
func (r *IdentityRepo) GetDriverProfile(ctx context.Context, identityID string) (*domain.DriverProfile, error) {
	var d domain.DriverProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT identity_id, created_at FROM drivers WHERE identity_id = $1`, identityID).
		Scan(&d.IdentityID, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDocuments records uploaded identity-document URLs.
func (r *IdentityRepo) UpdateDocuments(ctx context.Context, identityID, frontURL, backURL string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE identities SET
			fayda_id_front_url = COALESCE(NULLIF($2,''), fayda_id_front_url),
			fayda_id_back_url  = COALESCE(NULLIF($3,''), fayda_id_back_url),
			updated_at = NOW()
		WHERE id = $1`, identityID, frontURL, backURL)
	return err
}
