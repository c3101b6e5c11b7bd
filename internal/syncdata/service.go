// Package syncdata implements the synchronized data service: a single
// storage-location-agnostic interface over each domain entity that routes
// between the remote data gateway and the local store at call time.
//
// The routing contract, applied per operation:
//
//  1. If a bearer token is held, attempt the remote gateway call.
//  2. A remote failure other than an auth rejection is logged and falls
//     back to the local store; it never propagates to the caller.
//  3. Unauthenticated calls (and fallbacks) read/write the local store
//     under the entity's fixed key.
//  4. Every successful write emits exactly one change notification tagged
//     with the entity.
//
// An auth rejection (401) always surfaces as ErrAuthExpired after the
// gateway has cleared the session; reads additionally degrade to the local
// cache so callers receive (cached value, ErrAuthExpired) and can keep
// rendering while prompting for re-login.
//
// Mapping-typed entities (social connections, tasks) are read-modify-write.
// A mutex serializes those within this process; concurrent mutation from
// another process can still lose an update, an accepted limitation of the
// single-user usage model.
package syncdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soworklabs/warchest/internal/gateway"
	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// ErrAuthExpired mirrors the gateway sentinel for callers that only import
// this package.
var ErrAuthExpired = gateway.ErrAuthExpired

// taskRetention is how long completed and stale task records are kept
// before being pruned on the next task write.
const taskRetention = 30 * 24 * time.Hour

// Service routes entity reads and writes between backends and emits change
// notifications. Construct with New; all dependencies are injected.
type Service struct {
	local  *store.Local
	remote *gateway.Client
	bus    *notify.Bus
	logger *zap.Logger

	// mapMu serializes read-modify-write cycles on the mapping entities.
	mapMu sync.Mutex

	now func() time.Time
}

// New builds a Service. Every argument is required except logger, which
// defaults to a no-op.
func New(local *store.Local, remote *gateway.Client, bus *notify.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		local:  local,
		remote: remote,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// authenticated is the per-call routing predicate.
func (s *Service) authenticated() bool {
	return s.remote != nil && s.remote.Authenticated()
}

// remoteFailed decides how a remote error is handled: auth rejections
// surface, everything else is swallowed into the local fallback.
// Returns true when the caller should fall back to local.
func (s *Service) remoteFailed(op string, err error) (fallback bool, surface error) {
	if errors.Is(err, gateway.ErrAuthExpired) {
		s.logger.Warn("remote call rejected, session cleared", zap.String("op", op))
		return true, ErrAuthExpired
	}
	s.logger.Warn("remote call failed, using local store",
		zap.String("op", op), zap.Error(err))
	return true, nil
}

// GetDNA returns the candidate profile. Never absent: an empty local store
// yields the seed profile.
func (s *Service) GetDNA(ctx context.Context) (*types.BrandDNA, error) {
	if s.authenticated() {
		dna, err := s.remote.GetDNA(ctx)
		if err == nil {
			return dna, nil
		}
		if _, surface := s.remoteFailed("get dna", err); surface != nil {
			dna := s.localDNA()
			return dna, surface
		}
	}
	return s.localDNA(), nil
}

func (s *Service) localDNA() *types.BrandDNA {
	var dna types.BrandDNA
	found, err := s.local.GetJSON(store.KeyDNA, &dna)
	if err != nil {
		s.logger.Warn("local profile read failed, using seed", zap.Error(err))
		return types.SeedDNA()
	}
	if !found {
		return types.SeedDNA()
	}
	return &dna
}

// SaveDNA replaces the candidate profile wholesale and stamps the update
// time. The local copy is always refreshed so reads served by either
// backend observe the write.
func (s *Service) SaveDNA(ctx context.Context, dna *types.BrandDNA) (*types.BrandDNA, error) {
	dna.Version = types.SchemaVersion
	dna.LastUpdated = types.Timestamp(s.now())

	var surface error
	if s.authenticated() {
		if _, err := s.remote.SaveDNA(ctx, dna); err != nil {
			_, surface = s.remoteFailed("save dna", err)
		}
	}

	if err := s.local.PutJSON(store.KeyDNA, dna); err != nil {
		return nil, err
	}
	s.bus.Emit(notify.EntityDNA, "")
	return dna, surface
}
