package model

import "time"

// Category groups products in the catalogue.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	Products    []Product `json:"products,omitempty" db:"-"`
}

// CategoryRequest represents the payload for creating or updating a category.
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
