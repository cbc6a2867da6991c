package storage

import (
	"context"
	"errors"

	"funnel-bot/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Store holds per-user funnel state and campaign attribution. Both maps
// are keyed by the Telegram user id; implementations must make each
// per-user update atomic so concurrent webhook deliveries for the same
// user cannot lose writes.
type Store interface {
	// SetAttribution records the user's campaign, overwriting any prior
	// tag (last attribution wins).
	SetAttribution(ctx context.Context, user domain.UserID, tag domain.CampaignTag) error

	// Attribution returns the recorded campaign or ErrNotFound.
	Attribution(ctx context.Context, user domain.UserID) (domain.CampaignTag, error)

	// Advance moves the user's funnel state forward to at least "to".
	// It reports whether the stored state actually changed; advancing to
	// a state at or below the current one is a no-op.
	Advance(ctx context.Context, user domain.UserID, to domain.FunnelState) (bool, error)

	// State returns the user's current funnel state, StateNone for users
	// never seen before.
	State(ctx context.Context, user domain.UserID) (domain.FunnelState, error)
}
