package model

import (
	"time"

	"github.com/google/uuid"
)

type Renovation struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"userId"`
	OriginalImage  string    `db:"original_image" json:"originalImage"`
	GeneratedImage string    `db:"generated_image" json:"generatedImage"`
	RoomType       string    `db:"room_type" json:"roomType"`
	Description    *string   `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
