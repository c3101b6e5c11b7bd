package syncdata

import (
	"context"

	"go.uber.org/zap"

	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// Snapshot entities: one most-recent blob each, replaced wholesale on
// refresh. Polling routes through the remote gateway when authenticated;
// the intelligence and briefing snapshots are local-only, matching the
// backend's API surface.

// GetPolling returns the cached polling snapshot, or nil when none exists.
func (s *Service) GetPolling(ctx context.Context) (*types.PollingSnapshot, error) {
	if s.authenticated() {
		snap, err := s.remote.GetPolling(ctx)
		if err == nil {
			return snap, nil
		}
		if _, surface := s.remoteFailed("get polling", err); surface != nil {
			return s.localPolling(), surface
		}
	}
	return s.localPolling(), nil
}

func (s *Service) localPolling() *types.PollingSnapshot {
	var snap types.PollingSnapshot
	found, err := s.local.GetJSON(store.KeyPolling, &snap)
	if err != nil || !found {
		if err != nil {
			s.logger.Warn("local polling read failed", zap.Error(err))
		}
		return nil
	}
	return &snap
}

// SavePolling replaces the polling snapshot and stamps the refresh time.
func (s *Service) SavePolling(ctx context.Context, snap *types.PollingSnapshot) (*types.PollingSnapshot, error) {
	snap.Version = types.SchemaVersion
	snap.LastUpdated = types.Timestamp(s.now())

	var surface error
	if s.authenticated() {
		if err := s.remote.SavePolling(ctx, snap); err != nil {
			_, surface = s.remoteFailed("save polling", err)
		}
	}

	if err := s.local.PutJSON(store.KeyPolling, snap); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntityPolling, "民調數據")
	return snap, surface
}

// GetIntel returns the cached competitor-intelligence snapshot, or nil.
func (s *Service) GetIntel() *types.IntelSnapshot {
	var snap types.IntelSnapshot
	found, err := s.local.GetJSON(store.KeyIntel, &snap)
	if err != nil || !found {
		if err != nil {
			s.logger.Warn("local intel read failed", zap.Error(err))
		}
		return nil
	}
	return &snap
}

// SaveIntel replaces the intelligence snapshot.
func (s *Service) SaveIntel(items []types.IntelItem) (*types.IntelSnapshot, error) {
	snap := &types.IntelSnapshot{
		Version:     types.SchemaVersion,
		Items:       items,
		LastUpdated: types.Timestamp(s.now()),
	}
	if err := s.local.PutJSON(store.KeyIntel, snap); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntityIntel, "敵情通報")
	return snap, nil
}

// GetBriefing returns the cached party briefing, or nil.
func (s *Service) GetBriefing() *types.PartyBriefing {
	var briefing types.PartyBriefing
	found, err := s.local.GetJSON(store.KeyBriefing, &briefing)
	if err != nil || !found {
		if err != nil {
			s.logger.Warn("local briefing read failed", zap.Error(err))
		}
		return nil
	}
	return &briefing
}

// SaveBriefing replaces the party briefing.
func (s *Service) SaveBriefing(briefing *types.PartyBriefing) (*types.PartyBriefing, error) {
	briefing.Version = types.SchemaVersion
	briefing.LastUpdated = types.Timestamp(s.now())
	if err := s.local.PutJSON(store.KeyBriefing, briefing); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntityBriefing, "今日戰報")
	return briefing, nil
}
