package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qivlabs/qiv-auth/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

const identityColumns = `id, username, email, auth_type, password_hash, federated_id, otp_code, otp_expiry, created_at, updated_at`

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{
		db: db,
	}
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var identity model.Identity
	var passwordHash *string

	err := row.Scan(
		&identity.ID, &identity.Username, &identity.Email, &identity.AuthType,
		&passwordHash, &identity.FederatedID, &identity.OTPCode, &identity.OTPExpiry,
		&identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		return model.Identity{}, err
	}

	if passwordHash != nil {
		identity.PasswordHash = *passwordHash
	}

	return identity, nil
}

// translateUniqueViolation maps a unique-index violation to a conflict
// error by constraint name. The index is the authoritative uniqueness
// check; application code never relies on check-then-insert.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}

	switch pgErr.ConstraintName {
	case "identities_email_key":
		return &model.Error{Kind: model.KindConflict, Message: "user with this email already exists", Field: "email"}
	case "identities_username_key":
		return &model.Error{Kind: model.KindConflict, Message: "username is already taken", Field: "username"}
	case "identities_federated_id_key":
		return &model.Error{Kind: model.KindConflict, Message: "federated account is already linked", Field: "federatedId"}
	default:
		return model.NewConflictError("identity already exists")
	}
}

func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by id: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by email: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) GetByFederatedID(ctx context.Context, federatedID string) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE federated_id = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, federatedID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by federated id: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM identities WHERE username = $1)`

	if err := r.db.QueryRow(ctx, query, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return taken, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (id, username, email, auth_type, password_hash, federated_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
			  RETURNING ` + identityColumns

	saved, err := scanIdentity(r.db.QueryRow(ctx, query,
		identity.ID, identity.Username, identity.Email, identity.AuthType,
		identity.PasswordHash, identity.FederatedID,
		identity.CreatedAt, identity.UpdatedAt,
	))
	if err != nil {
		if conflict := translateUniqueViolation(err); conflict != nil {
			return model.Identity{}, conflict
		}
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}

// LinkFederated attaches a federated id to an existing identity and
// flips its auth type. The federated id is immutable once linked: the
// update only applies when no federated id is set yet.
func (r *IdentityRepository) LinkFederated(ctx context.Context, id uuid.UUID, federatedID string) (model.Identity, error) {
	query := `UPDATE identities
			  SET federated_id = $2, auth_type = $3, updated_at = now()
			  WHERE id = $1 AND federated_id IS NULL
			  RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id, federatedID, model.AuthTypeFederated))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		if conflict := translateUniqueViolation(err); conflict != nil {
			return model.Identity{}, conflict
		}
		return model.Identity{}, fmt.Errorf("failed to link federated id: %w", err)
	}

	return identity, nil
}

// SetResetOTP installs a reset code on the identity, replacing any
// pending one. One outstanding reset per identity.
func (r *IdentityRepository) SetResetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	query := `UPDATE identities SET otp_code = $2, otp_expiry = $3, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, code, expiry)
	if err != nil {
		return fmt.Errorf("failed to set reset otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ConsumeResetOTP replaces the password hash and clears the OTP in one
// conditional update keyed on the still-valid code. The identity is the
// unit of atomicity: a concurrent confirm on the same identity either
// wins this update or matches zero rows.
func (r *IdentityRepository) ConsumeResetOTP(ctx context.Context, email, code string, now time.Time, newPasswordHash string) (model.Identity, error) {
	query := `UPDATE identities
			  SET password_hash = $4, otp_code = NULL, otp_expiry = NULL, updated_at = now()
			  WHERE email = $1 AND otp_code = $2 AND otp_expiry > $3
			  RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, email, code, now, newPasswordHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to consume reset otp: %w", err)
	}

	return identity, nil
}
