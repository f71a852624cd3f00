package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"renoviq-server/internal/model"
)

type ContactRepository interface {
	Create(ctx context.Context, entry *model.ContactMessage) error
}

type postgresContactRepository struct {
	db *sqlx.DB
}

func NewPostgresContactRepository(db *sqlx.DB) ContactRepository {
	return &postgresContactRepository{db: db}
}

func (r *postgresContactRepository) Create(ctx context.Context, entry *model.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (full_name, email, company, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, entry.FullName, entry.Email, entry.Company, entry.Message)
	return row.Scan(&entry.ID, &entry.CreatedAt)
}
