package model

import "github.com/google/uuid"

// Tables that emit change events.
const (
	TableMenuItems      = "menu_items"
	TableOpeningHours   = "opening_hours"
	TableRestaurantInfo = "restaurant_info"
	TablePromoBanners   = "promo_banners"
	TableProfiles       = "profiles"
)

// ChangeOp is the kind of row change.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent announces that a row of Table changed for TenantID. It is
// used only to trigger invalidation; it carries no row data.
type ChangeEvent struct {
	Table    string    `json:"table"`
	TenantID uuid.UUID `json:"tenantId"`
	Op       ChangeOp  `json:"op"`
}
