package model

import (
	"time"

	"github.com/google/uuid"
)

// Section is one block of the public page (hero, about, menu intro).
type Section struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

// RestaurantInfo holds the single per-tenant page configuration row.
type RestaurantInfo struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	TenantID   uuid.UUID      `json:"tenantId" db:"tenant_id"`
	Hero       Section        `json:"hero" db:"hero"`
	About      Section        `json:"about" db:"about"`
	Menu       Section        `json:"menu" db:"menu"`
	Phone      string         `json:"phone" db:"phone"`
	Email      string         `json:"email" db:"email"`
	Address    string         `json:"address" db:"address"`
	WhatsApp   string         `json:"whatsapp" db:"whatsapp"`
	Additional map[string]any `json:"additional" db:"additional"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time      `json:"updatedAt" db:"updated_at"`
}

// RestaurantInfoInput is a partial update merged over the stored row.
type RestaurantInfoInput struct {
	Hero       *Section       `json:"hero,omitempty"`
	About      *Section       `json:"about,omitempty"`
	Menu       *Section       `json:"menu,omitempty"`
	Phone      *string        `json:"phone,omitempty"`
	Email      *string        `json:"email,omitempty"`
	Address    *string        `json:"address,omitempty"`
	WhatsApp   *string        `json:"whatsapp,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
}

// Apply merges the set fields into info. Additional keys are merged one by
// one; a nil value removes the key.
func (in *RestaurantInfoInput) Apply(info *RestaurantInfo) {
	if in.Hero != nil {
		info.Hero = *in.Hero
	}
	if in.About != nil {
		info.About = *in.About
	}
	if in.Menu != nil {
		info.Menu = *in.Menu
	}
	if in.Phone != nil {
		info.Phone = *in.Phone
	}
	if in.Email != nil {
		info.Email = *in.Email
	}
	if in.Address != nil {
		info.Address = *in.Address
	}
	if in.WhatsApp != nil {
		info.WhatsApp = *in.WhatsApp
	}
	if len(in.Additional) > 0 && info.Additional == nil {
		info.Additional = make(map[string]any, len(in.Additional))
	}
	for k, v := range in.Additional {
		if v == nil {
			delete(info.Additional, k)
			continue
		}
		info.Additional[k] = v
	}
}
