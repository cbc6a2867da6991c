// Package funnel tracks each user's progress through the referral funnel
// and their campaign attribution.
package funnel

import (
	"context"
	"errors"
	"strings"

	"funnel-bot/internal/domain"
	"funnel-bot/internal/storage"
)

type Tracker struct {
	store storage.Store
}

func NewTracker(store storage.Store) *Tracker { return &Tracker{store: store} }

// Attribute records the user's campaign tag, replacing any earlier one.
// A blank tag falls back to the default campaign.
func (t *Tracker) Attribute(ctx context.Context, user domain.UserID, tag domain.CampaignTag) (domain.CampaignTag, error) {
	if strings.TrimSpace(string(tag)) == "" {
		tag = domain.DefaultCampaign
	}
	if err := t.store.SetAttribution(ctx, user, tag); err != nil {
		return "", err
	}
	return tag, nil
}

// Campaign returns the user's recorded tag and whether one exists.
func (t *Tracker) Campaign(ctx context.Context, user domain.UserID) (domain.CampaignTag, bool, error) {
	tag, err := t.store.Attribution(ctx, user)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tag, true, nil
}

// MarkStarted, MarkJoined and MarkDeposited advance the user's state.
// Each reports whether this call was the one that moved the state, which
// is what makes downstream side effects (welcome DM) one-time.

func (t *Tracker) MarkStarted(ctx context.Context, user domain.UserID) (bool, error) {
	return t.store.Advance(ctx, user, domain.StateStarted)
}

func (t *Tracker) MarkJoined(ctx context.Context, user domain.UserID) (bool, error) {
	return t.store.Advance(ctx, user, domain.StateJoined)
}

func (t *Tracker) MarkDeposited(ctx context.Context, user domain.UserID) (bool, error) {
	return t.store.Advance(ctx, user, domain.StateDeposited)
}

func (t *Tracker) State(ctx context.Context, user domain.UserID) (domain.FunnelState, error) {
	return t.store.State(ctx, user)
}
