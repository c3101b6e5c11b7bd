package syncdata

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// Mapping entities are read-modify-write: the whole mapping is read, one
// key changed, and the whole mapping written back. mapMu serializes these
// cycles within the process; a second process can still lose an update.

// GetSocialAccounts returns the social connection set, defaulting to
// everything-disconnected.
func (s *Service) GetSocialAccounts(ctx context.Context) (*types.SocialAccounts, error) {
	if s.authenticated() {
		accounts, err := s.remote.GetSocialAccounts(ctx)
		if err == nil {
			return accounts, nil
		}
		if _, surface := s.remoteFailed("get social", err); surface != nil {
			return s.localSocial(), surface
		}
	}
	return s.localSocial(), nil
}

func (s *Service) localSocial() *types.SocialAccounts {
	var accounts types.SocialAccounts
	found, err := s.local.GetJSON(store.KeySocial, &accounts)
	if err != nil || !found {
		if err != nil {
			s.logger.Warn("local social read failed", zap.Error(err))
		}
		return types.NewSocialAccounts()
	}
	if accounts.Connected == nil {
		accounts.Connected = types.NewSocialAccounts().Connected
	}
	return &accounts
}

// ToggleSocial flips one platform's connected state and leaves every other
// key untouched. Disconnecting google also drops its account info.
func (s *Service) ToggleSocial(ctx context.Context, platform string) (*types.SocialAccounts, error) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	accounts := s.localSocial()
	accounts.Connected[platform] = !accounts.Connected[platform]
	if accounts.Connected[platform] {
		accounts.LastSync = types.Timestamp(s.now())
	} else if platform == types.PlatformGoogle {
		accounts.Google = nil
	}

	var surface error
	if s.authenticated() && accounts.Connected[platform] {
		if _, err := s.remote.ConnectSocial(ctx, platform, nil); err != nil {
			_, surface = s.remoteFailed("connect social", err)
		}
	}

	if err := s.local.PutJSON(store.KeySocial, accounts); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntitySocial, platform)
	return accounts, surface
}

// SaveGoogleAuth marks the google platform connected and records the
// provider account info.
func (s *Service) SaveGoogleAuth(ctx context.Context, info *types.GoogleInfo) (*types.SocialAccounts, error) {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	accounts := s.localSocial()
	accounts.Connected[types.PlatformGoogle] = true
	accounts.Google = info
	accounts.LastSync = types.Timestamp(s.now())

	var surface error
	if s.authenticated() {
		if _, err := s.remote.ConnectSocial(ctx, types.PlatformGoogle, info); err != nil {
			_, surface = s.remoteFailed("connect google", err)
		}
	}

	if err := s.local.PutJSON(store.KeySocial, accounts); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntitySocial, types.PlatformGoogle)
	return accounts, surface
}

// GetTasks returns the background-task mapping.
func (s *Service) GetTasks() types.TaskMap {
	tasks := types.TaskMap{}
	if _, err := s.local.GetJSON(store.KeyTasks, &tasks); err != nil {
		s.logger.Warn("local task read failed", zap.Error(err))
	}
	return tasks
}

// SetTask records the status of one background analysis task. Records
// older than the retention window are pruned on the way through.
func (s *Service) SetTask(id string, status types.TaskStatus, result json.RawMessage) error {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	now := s.now()
	tasks := s.GetTasks()
	tasks[id] = types.TaskRecord{
		Status:    status,
		Result:    result,
		Timestamp: now.UnixMilli(),
	}

	cutoff := now.Add(-taskRetention).UnixMilli()
	for label, rec := range tasks {
		if rec.Timestamp < cutoff {
			delete(tasks, label)
		}
	}

	if err := s.local.PutJSON(store.KeyTasks, tasks); err != nil {
		return err
	}
	s.bus.Emit(notify.EntityTasks, id)
	return nil
}
