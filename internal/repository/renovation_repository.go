package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"renoviq-server/internal/model"
)

type RenovationRepository interface {
	Create(ctx context.Context, renovation *model.Renovation) (*model.Renovation, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error)
	DeleteOwned(ctx context.Context, id, userID uuid.UUID) error
}

type postgresRenovationRepository struct {
	db *sqlx.DB
}

func NewPostgresRenovationRepository(db *sqlx.DB) RenovationRepository {
	return &postgresRenovationRepository{db: db}
}

func (r *postgresRenovationRepository) Create(ctx context.Context, renovation *model.Renovation) (*model.Renovation, error) {
	query := `
		INSERT INTO renovations (user_id, original_image, generated_image, room_type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		renovation.UserID, renovation.OriginalImage, renovation.GeneratedImage,
		renovation.RoomType, renovation.Description,
	)
	if err := row.Scan(&renovation.ID, &renovation.CreatedAt); err != nil {
		return nil, err
	}

	return renovation, nil
}

func (r *postgresRenovationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Renovation, error) {
	var renovations []model.Renovation
	query := `
		SELECT id, user_id, original_image, generated_image, room_type, description, created_at
		FROM renovations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &renovations, query, userID); err != nil {
		return nil, err
	}

	if renovations == nil {
		renovations = []model.Renovation{}
	}

	return renovations, nil
}

// DeleteOwned deletes only when the row belongs to userID, so one user cannot
// remove another user's renovation by guessing ids.
func (r *postgresRenovationRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM renovations WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}
