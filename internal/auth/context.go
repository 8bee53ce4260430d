package auth

import (
	"context"

	"storefront/internal/model"
)

type contextKey string

const (
	profileKey    contextKey = "profile"
	privilegedKey contextKey = "privileged"
)

// WithProfile stores the signed-in profile and its privilege in ctx.
func WithProfile(ctx context.Context, p *model.Profile, privileged bool) context.Context {
	ctx = context.WithValue(ctx, profileKey, p)
	return context.WithValue(ctx, privilegedKey, privileged)
}

// ProfileFrom returns the signed-in profile, or nil.
func ProfileFrom(ctx context.Context) *model.Profile {
	p, _ := ctx.Value(profileKey).(*model.Profile)
	return p
}

// IsPrivileged reports whether the signed-in profile is the privileged account.
func IsPrivileged(ctx context.Context) bool {
	v, _ := ctx.Value(privilegedKey).(bool)
	return v
}
