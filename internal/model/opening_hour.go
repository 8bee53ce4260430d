package model

import (
	"time"

	"github.com/google/uuid"
)

// OpeningHour is one time range on one weekday. Several slots per day are
// distinguished by SlotIndex.
type OpeningHour struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenantId" db:"tenant_id"`
	DayOfWeek int       `json:"dayOfWeek" db:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime  string    `json:"openTime" db:"open_time"`
	CloseTime string    `json:"closeTime" db:"close_time"`
	SlotIndex int       `json:"slotIndex" db:"slot_index"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// OpeningHourInput is the create/update payload.
type OpeningHourInput struct {
	DayOfWeek *int    `json:"dayOfWeek,omitempty"`
	OpenTime  *string `json:"openTime,omitempty"`
	CloseTime *string `json:"closeTime,omitempty"`
	SlotIndex *int    `json:"slotIndex,omitempty"`
}

// Validate checks ranges and the HH:MM format. A close time earlier than
// the open time is allowed.
func (in *OpeningHourInput) Validate() error {
	if in.DayOfWeek != nil && (*in.DayOfWeek < 0 || *in.DayOfWeek > 6) {
		return ErrInvalidDay
	}
	for _, v := range []*string{in.OpenTime, in.CloseTime} {
		if v == nil {
			continue
		}
		if _, err := time.Parse("15:04", *v); err != nil {
			return ErrInvalidTime
		}
	}
	if in.SlotIndex != nil && *in.SlotIndex < 0 {
		return ErrMissingField
	}
	return nil
}

// Apply copies the present fields onto h.
func (in *OpeningHourInput) Apply(h *OpeningHour) {
	if in.DayOfWeek != nil {
		h.DayOfWeek = *in.DayOfWeek
	}
	if in.OpenTime != nil {
		h.OpenTime = *in.OpenTime
	}
	if in.CloseTime != nil {
		h.CloseTime = *in.CloseTime
	}
	if in.SlotIndex != nil {
		h.SlotIndex = *in.SlotIndex
	}
}

// DayName returns the English weekday name for h.
func (h OpeningHour) DayName() string {
	return time.Weekday(h.DayOfWeek).String()
}
