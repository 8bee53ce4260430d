package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is the menu section an item belongs to.
type Category string

const (
	CategorySnacks   Category = "snacks"
	CategorySpecials Category = "specials"
	CategoryDrinks   Category = "drinks"
	CategoryDesserts Category = "desserts"
)

// Categories lists the valid categories in display order.
var Categories = []Category{CategorySnacks, CategorySpecials, CategoryDrinks, CategoryDesserts}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItem is a dish or drink on a tenant's menu.
type MenuItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenantId" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Category    Category  `json:"category" db:"category"`
	ImageURL    string    `json:"imageUrl" db:"image_url"`
	Available   bool      `json:"available" db:"available"`
	Featured    bool      `json:"featured" db:"featured"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// MenuItemInput is the create/update payload. On update, nil fields keep
// their stored value.
type MenuItemInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Category    *Category `json:"category,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Available   *bool     `json:"available,omitempty"`
	Featured    *bool     `json:"featured,omitempty"`
}

// Validate checks the fields that are present.
func (in *MenuItemInput) Validate() error {
	if in.Name != nil && *in.Name == "" {
		return ErrMissingField
	}
	if in.Price != nil && *in.Price < 0 {
		return ErrInvalidPrice
	}
	if in.Category != nil && !in.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Apply copies the present fields onto item.
func (in *MenuItemInput) Apply(item *MenuItem) {
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.ImageURL != nil {
		item.ImageURL = *in.ImageURL
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.Featured != nil {
		item.Featured = *in.Featured
	}
}
