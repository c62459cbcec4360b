package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BookID    uuid.UUID  `json:"book_id" db:"book_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   *string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`

	AuthorName *string `json:"author_name,omitempty" db:"author_name"`
}

type CreateReviewInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type UpdateReviewInput struct {
	Rating  *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment **string `json:"comment,omitempty"`
}
