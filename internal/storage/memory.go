package storage

import (
	"context"
	"sync"

	"funnel-bot/internal/domain"
)

// snapshot is the whole in-memory dataset, guarded by Memory.mu.
type snapshot struct {
	attribution map[domain.UserID]domain.CampaignTag
	states      map[domain.UserID]domain.FunnelState
}

// Memory is the default process-lifetime store.
type Memory struct {
	mu   sync.RWMutex
	snap snapshot
}

func NewMemory() *Memory {
	return &Memory{snap: snapshot{
		attribution: map[domain.UserID]domain.CampaignTag{},
		states:      map[domain.UserID]domain.FunnelState{},
	}}
}

func (m *Memory) withWrite(ctx context.Context, fn func(*snapshot)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	fn(&m.snap)
	return nil
}

func (m *Memory) SetAttribution(ctx context.Context, user domain.UserID, tag domain.CampaignTag) error {
	return m.withWrite(ctx, func(s *snapshot) {
		s.attribution[user] = tag
	})
}

func (m *Memory) Attribution(_ context.Context, user domain.UserID) (domain.CampaignTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tag, ok := m.snap.attribution[user]
	if !ok {
		return "", ErrNotFound
	}
	return tag, nil
}

func (m *Memory) Advance(ctx context.Context, user domain.UserID, to domain.FunnelState) (bool, error) {
	changed := false
	err := m.withWrite(ctx, func(s *snapshot) {
		if to > s.states[user] {
			s.states[user] = to
			changed = true
		}
	})
	return changed, err
}

func (m *Memory) State(_ context.Context, user domain.UserID) (domain.FunnelState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.states[user], nil
}
