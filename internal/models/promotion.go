package models

import (
	"time"

	"github.com/google/uuid"
)

type Promotion struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	StartsAt    time.Time `db:"starts_at"`
	EndsAt      time.Time `db:"ends_at"`
	CreatedAt   time.Time `db:"created_at"`
}
