// Package invite issues request-to-join invite links for the private
// channel. Links are shared per campaign tag, not minted per user: one
// tag maps to one link for the process lifetime, so duplicate /start
// deliveries cannot churn links.
package invite

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"funnel-bot/internal/domain"
	"funnel-bot/internal/telegram"
)

type Issuer struct {
	tg        telegram.API
	channelID int64

	mu    sync.RWMutex
	cache map[domain.CampaignTag]string
	group singleflight.Group
}

func NewIssuer(tg telegram.API, channelID int64) *Issuer {
	return &Issuer{
		tg:        tg,
		channelID: channelID,
		cache:     map[domain.CampaignTag]string{},
	}
}

// GetOrCreate returns the invite link for the campaign, creating it on
// first use. Concurrent calls for the same tag are coalesced into a
// single createChatInviteLink call. Failures are not cached.
func (i *Issuer) GetOrCreate(ctx context.Context, tag domain.CampaignTag) (string, error) {
	i.mu.RLock()
	link, ok := i.cache[tag]
	i.mu.RUnlock()
	if ok {
		return link, nil
	}

	v, err, _ := i.group.Do(string(tag), func() (any, error) {
		// Re-check under the flight: a racing caller may have filled the
		// cache between the read above and Do coalescing us.
		i.mu.RLock()
		link, ok := i.cache[tag]
		i.mu.RUnlock()
		if ok {
			return link, nil
		}
		created, err := i.tg.CreateInviteLink(ctx, i.channelID, string(tag))
		if err != nil {
			return "", err
		}
		i.mu.Lock()
		i.cache[tag] = created
		i.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
