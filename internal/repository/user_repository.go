package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"renoviq-server/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, username, password_hash, is_verified, verification_code, verification_expiry, google_id, created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (first_name, last_name, email, username, password_hash, is_verified, verification_code, verification_expiry, google_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Username,
		user.PasswordHash, user.IsVerified, user.VerificationCode,
		user.VerificationExpiry, user.GoogleID,
	).Scan(&newID)

	if err != nil {
		return uuid.Nil, translateConflict(err)
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, mapNoRows(err)
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, mapNoRows(err)
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, mapNoRows(err)
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	if err := r.db.GetContext(ctx, &user, query, googleID); err != nil {
		return nil, mapNoRows(err)
	}

	return &user, nil
}

// MarkVerified flips the user to verified and clears the outstanding code in
// one statement, so the code can never survive a successful verification.
func (r *postgresUserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET is_verified = TRUE, verification_code = NULL, verification_expiry = NULL, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *postgresUserRepository) SetVerificationCode(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error {
	query := `UPDATE users SET verification_code = $2, verification_expiry = $3, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, code, expiry)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *postgresUserRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	query := `UPDATE users SET google_id = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, googleID)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	return err
}

func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
