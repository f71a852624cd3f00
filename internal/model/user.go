package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	FirstName          string     `db:"first_name" json:"firstName"`
	LastName           string     `db:"last_name" json:"lastName"`
	Email              string     `db:"email" json:"email"`
	Username           string     `db:"username" json:"username"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	IsVerified         bool       `db:"is_verified" json:"isVerified"`
	VerificationCode   *string    `db:"verification_code" json:"-"`
	VerificationExpiry *time.Time `db:"verification_expiry" json:"-"`
	GoogleID           *string    `db:"google_id" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}
