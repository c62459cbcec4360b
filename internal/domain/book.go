package domain

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	Title           string        `json:"title" db:"title"`
	Author          string        `json:"author" db:"author"`
	ISBN            *string       `json:"isbn,omitempty" db:"isbn"`
	Publisher       *string       `json:"publisher,omitempty" db:"publisher"`
	PublishedYear   *int          `json:"published_year,omitempty" db:"published_year"`
	Category        *string       `json:"category,omitempty" db:"category"`
	Description     *string       `json:"description,omitempty" db:"description"`
	CoverURL        *string       `json:"cover_url,omitempty" db:"cover_url"`
	TotalCopies     int           `json:"total_copies" db:"total_copies"`
	AvailableCopies int           `json:"available_copies" db:"available_copies"`
	ReadingStatus   ReadingStatus `json:"reading_status" db:"reading_status"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time    `json:"-" db:"deleted_at"`
}

type ReadingStatus string

const (
	ReadingAvailable   ReadingStatus = "AVAILABLE"
	ReadingReserved    ReadingStatus = "RESERVED"
	ReadingRestoration ReadingStatus = "RESTORATION"
)

// IsAvailable reports whether at least one copy can still be loaned out.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

type CreateBookInput struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          *string `json:"isbn,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Category      *string `json:"category,omitempty"`
	Description   *string `json:"description,omitempty"`
	TotalCopies   int     `json:"total_copies" validate:"required,min=1"`
}

type UpdateBookInput struct {
	Title         *string        `json:"title,omitempty"`
	Author        *string        `json:"author,omitempty"`
	ISBN          **string       `json:"isbn,omitempty"`
	Publisher     **string       `json:"publisher,omitempty"`
	PublishedYear **int          `json:"published_year,omitempty"`
	Category      **string       `json:"category,omitempty"`
	Description   **string       `json:"description,omitempty"`
	TotalCopies   *int           `json:"total_copies,omitempty"`
	ReadingStatus *ReadingStatus `json:"reading_status,omitempty"`
}

type BookFilter struct {
	Search   string
	Category *string
}
