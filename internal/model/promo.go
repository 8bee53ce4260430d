package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionType is what happens when a visitor taps a promo banner.
type ActionType string

const (
	ActionWhatsApp ActionType = "whatsapp"
	ActionEmail    ActionType = "email"
	ActionLink     ActionType = "link"
	ActionScroll   ActionType = "scroll"
	ActionPhone    ActionType = "phone"
	ActionDownload ActionType = "download"
)

// PromoAction describes a banner's call to action.
type PromoAction struct {
	Type     ActionType        `json:"type"`
	Value    string            `json:"value"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Valid reports whether the action type is known.
func (a PromoAction) Valid() bool {
	switch a.Type {
	case ActionWhatsApp, ActionEmail, ActionLink, ActionScroll, ActionPhone, ActionDownload:
		return true
	}
	return false
}

// Href renders the action as a link target. Metadata "message" becomes the
// prefilled WhatsApp text and "subject" the email subject.
func (a PromoAction) Href() string {
	switch a.Type {
	case ActionWhatsApp:
		href := "https://wa.me/" + DigitsOnly(a.Value)
		if msg := a.Metadata["message"]; msg != "" {
			href += "?text=" + url.QueryEscape(msg)
		}
		return href
	case ActionEmail:
		href := "mailto:" + a.Value
		if subject := a.Metadata["subject"]; subject != "" {
			href += "?subject=" + url.QueryEscape(subject)
		}
		return href
	case ActionScroll:
		return "#" + strings.TrimPrefix(a.Value, "#")
	case ActionPhone:
		return "tel:" + a.Value
	default:
		return a.Value
	}
}

// DigitsOnly strips everything but digits, as wa.me expects.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PromoBanner is a tenant's promotional content.
type PromoBanner struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	TenantID    uuid.UUID   `json:"tenantId" db:"tenant_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	ImageURL    string      `json:"imageUrl" db:"image_url"`
	Icon        string      `json:"icon" db:"icon"`
	Action      PromoAction `json:"action" db:"action"`
	Active      bool        `json:"active" db:"active"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// Live reports whether the banner should be shown at now.
func (p PromoBanner) Live(now time.Time) bool {
	return p.Active && (p.ExpiresAt == nil || p.ExpiresAt.After(now))
}

// PromoBannerInput is the create/update payload.
type PromoBannerInput struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	ImageURL    *string      `json:"imageUrl,omitempty"`
	Icon        *string      `json:"icon,omitempty"`
	Action      *PromoAction `json:"action,omitempty"`
	Active      *bool        `json:"active,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
}

// Validate checks the fields that are present.
func (in *PromoBannerInput) Validate() error {
	if in.Title != nil && *in.Title == "" {
		return ErrMissingField
	}
	if in.Action != nil && !in.Action.Valid() {
		return ErrInvalidAction
	}
	return nil
}

// Apply copies the present fields onto p.
func (in *PromoBannerInput) Apply(p *PromoBanner) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if in.Icon != nil {
		p.Icon = *in.Icon
	}
	if in.Action != nil {
		p.Action = *in.Action
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.ExpiresAt != nil {
		p.ExpiresAt = in.ExpiresAt
	}
}
