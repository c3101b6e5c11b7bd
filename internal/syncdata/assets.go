package syncdata

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// GetAssets lists vaulted assets newest-first.
func (s *Service) GetAssets(ctx context.Context) ([]types.Asset, error) {
	if s.authenticated() {
		assets, err := s.remote.GetAssets(ctx, "")
		if err == nil {
			return assets, nil
		}
		if _, surface := s.remoteFailed("get assets", err); surface != nil {
			return s.localAssets(), surface
		}
	}
	return s.localAssets(), nil
}

func (s *Service) localAssets() []types.Asset {
	var assets []types.Asset
	if _, err := s.local.GetJSON(store.KeyAssets, &assets); err != nil {
		s.logger.Warn("local asset read failed", zap.Error(err))
		return nil
	}
	return assets
}

// AddAsset vaults a new asset and returns it. The local list is always
// updated so a subsequent read observes the write regardless of backend.
func (s *Service) AddAsset(ctx context.Context, title, content string, category types.AssetCategory) (*types.Asset, error) {
	if !types.ValidCategory(category) {
		category = types.AssetStrategy
	}

	asset := &types.Asset{
		ID:       uuid.NewString(),
		Title:    title,
		Content:  content,
		Category: category,
		Date:     s.now().Format("2006/01/02"),
	}

	var surface error
	if s.authenticated() {
		remote, err := s.remote.AddAsset(ctx, title, content, category)
		if err == nil {
			// Keep the server-assigned identity.
			asset = remote
		} else {
			_, surface = s.remoteFailed("add asset", err)
		}
	}

	assets := append([]types.Asset{*asset}, s.localAssets()...)
	if err := s.local.PutJSON(store.KeyAssets, assets); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntityAssets, "")
	return asset, surface
}

// DeleteAsset removes an asset by ID from both backends.
func (s *Service) DeleteAsset(ctx context.Context, id string) error {
	var surface error
	if s.authenticated() {
		if err := s.remote.DeleteAsset(ctx, id); err != nil {
			_, surface = s.remoteFailed("delete asset", err)
		}
	}

	assets := s.localAssets()
	kept := assets[:0]
	for _, a := range assets {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if err := s.local.PutJSON(store.KeyAssets, kept); err != nil {
		return err
	}
	s.bus.Emit(notify.EntityAssets, "")
	return surface
}
