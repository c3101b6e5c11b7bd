package syncdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soworklabs/warchest/internal/gateway"
	"github.com/soworklabs/warchest/internal/notify"
	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// fixture wires a Service against an in-memory store and, when handler is
// non-nil, an httptest backend with a valid session token.
type fixture struct {
	svc    *Service
	local  *store.Local
	bus    *notify.Bus
	events <-chan notify.Event
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	local, err := store.Open(store.Config{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { local.Close() })

	var remote *gateway.Client
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		if err := local.PutString(store.KeyAuthToken, "test-token"); err != nil {
			t.Fatalf("PutString() error = %v", err)
		}
		remote, err = gateway.NewClient(gateway.Config{BaseURL: srv.URL}, local, nil)
		if err != nil {
			t.Fatalf("gateway.NewClient() error = %v", err)
		}
	}

	bus := notify.NewBus()
	t.Cleanup(bus.Close)

	svc := New(local, remote, bus, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	}
	return &fixture{svc: svc, local: local, bus: bus, events: bus.Subscribe()}
}

// expectEvent asserts exactly one pending event for entity.
func (f *fixture) expectEvent(t *testing.T, entity notify.Entity) notify.Event {
	t.Helper()
	var ev notify.Event
	select {
	case ev = <-f.events:
	default:
		t.Fatalf("no event emitted, want %q", entity)
	}
	if ev.Entity != entity {
		t.Fatalf("event entity = %q, want %q", ev.Entity, entity)
	}
	select {
	case extra := <-f.events:
		t.Fatalf("extra event emitted: %+v", extra)
	default:
	}
	return ev
}

func TestGetDNA_EmptyStoreYieldsSeed(t *testing.T) {
	f := newFixture(t, nil)

	dna, err := f.svc.GetDNA(context.Background())
	if err != nil {
		t.Fatalf("GetDNA() error = %v", err)
	}
	seed := types.SeedDNA()
	if dna.CandidateName != seed.CandidateName {
		t.Fatalf("CandidateName = %q, want seed %q", dna.CandidateName, seed.CandidateName)
	}
}

func TestSaveDNA_ReadYourWrites(t *testing.T) {
	f := newFixture(t, nil)

	in := types.SeedDNA()
	in.Slogan = "新的口號"
	saved, err := f.svc.SaveDNA(context.Background(), in)
	if err != nil {
		t.Fatalf("SaveDNA() error = %v", err)
	}
	if saved.Version != types.SchemaVersion {
		t.Fatalf("Version = %d, want %d", saved.Version, types.SchemaVersion)
	}
	if saved.LastUpdated == "" {
		t.Fatal("LastUpdated not stamped")
	}
	f.expectEvent(t, notify.EntityDNA)

	got, err := f.svc.GetDNA(context.Background())
	if err != nil {
		t.Fatalf("GetDNA() error = %v", err)
	}
	if got.Slogan != "新的口號" {
		t.Fatalf("Slogan = %q, want 新的口號", got.Slogan)
	}
}

func TestGetDNA_RemoteFailureFallsBackSilently(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	dna, err := f.svc.GetDNA(context.Background())
	if err != nil {
		t.Fatalf("GetDNA() error = %v, want nil on non-auth remote failure", err)
	}
	if dna == nil {
		t.Fatal("GetDNA() = nil, want local fallback")
	}
}

func TestGetDNA_AuthExpirySurfacesWithCachedValue(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	cached := types.SeedDNA()
	cached.Slogan = "快取口號"
	if err := f.local.PutJSON(store.KeyDNA, cached); err != nil {
		t.Fatalf("PutJSON() error = %v", err)
	}

	dna, err := f.svc.GetDNA(context.Background())
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("GetDNA() error = %v, want ErrAuthExpired", err)
	}
	if dna == nil || dna.Slogan != "快取口號" {
		t.Fatalf("GetDNA() = %+v, want cached value alongside the error", dna)
	}

	// The gateway cleared the session, so the next call routes local only.
	if _, err := f.svc.GetDNA(context.Background()); err != nil {
		t.Fatalf("GetDNA() after expiry error = %v, want nil", err)
	}
}

func TestSaveDNA_AuthExpiryStillPersistsLocally(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	in := types.SeedDNA()
	in.Slogan = "離線保存"
	saved, err := f.svc.SaveDNA(context.Background(), in)
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("SaveDNA() error = %v, want ErrAuthExpired", err)
	}
	if saved == nil {
		t.Fatal("SaveDNA() = nil, want the saved value alongside the error")
	}
	f.expectEvent(t, notify.EntityDNA)

	var onDisk types.BrandDNA
	found, err := f.local.GetJSON(store.KeyDNA, &onDisk)
	if err != nil || !found {
		t.Fatalf("local read: found = %v, err = %v", found, err)
	}
	if onDisk.Slogan != "離線保存" {
		t.Fatalf("local Slogan = %q, want 離線保存", onDisk.Slogan)
	}
}

func TestAddAsset_PrependsAndNotifies(t *testing.T) {
	f := newFixture(t, nil)

	first, err := f.svc.AddAsset(context.Background(), "一", "內容一", types.AssetSpeech)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	f.expectEvent(t, notify.EntityAssets)
	second, err := f.svc.AddAsset(context.Background(), "二", "內容二", types.AssetStrategy)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	f.expectEvent(t, notify.EntityAssets)

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("asset IDs = %q, %q, want distinct non-empty", first.ID, second.ID)
	}

	assets, err := f.svc.GetAssets(context.Background())
	if err != nil {
		t.Fatalf("GetAssets() error = %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("GetAssets() = %d assets, want 2", len(assets))
	}
	if assets[0].Title != "二" {
		t.Fatalf("assets[0].Title = %q, want newest first", assets[0].Title)
	}
}

func TestAddAsset_InvalidCategoryDefaults(t *testing.T) {
	f := newFixture(t, nil)

	asset, err := f.svc.AddAsset(context.Background(), "t", "c", "nonsense")
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	if asset.Category != types.AssetStrategy {
		t.Fatalf("Category = %q, want %q", asset.Category, types.AssetStrategy)
	}
}

func TestAddAsset_KeepsServerIdentity(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.Asset{
			ID: "srv-42", Title: "t", Content: "c", Category: types.AssetSpeech,
		})
	}))

	asset, err := f.svc.AddAsset(context.Background(), "t", "c", types.AssetSpeech)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	if asset.ID != "srv-42" {
		t.Fatalf("ID = %q, want server-assigned srv-42", asset.ID)
	}
}

func TestDeleteAsset(t *testing.T) {
	f := newFixture(t, nil)

	kept, err := f.svc.AddAsset(context.Background(), "keep", "c", types.AssetSpeech)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	doomed, err := f.svc.AddAsset(context.Background(), "drop", "c", types.AssetSpeech)
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	<-f.events
	<-f.events

	if err := f.svc.DeleteAsset(context.Background(), doomed.ID); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	f.expectEvent(t, notify.EntityAssets)

	assets, err := f.svc.GetAssets(context.Background())
	if err != nil {
		t.Fatalf("GetAssets() error = %v", err)
	}
	if len(assets) != 1 || assets[0].ID != kept.ID {
		t.Fatalf("assets after delete = %+v, want only %q", assets, kept.ID)
	}
}

func TestToggleSocial_IsolatedPerPlatform(t *testing.T) {
	f := newFixture(t, nil)

	accounts, err := f.svc.ToggleSocial(context.Background(), types.PlatformLine)
	if err != nil {
		t.Fatalf("ToggleSocial() error = %v", err)
	}
	ev := f.expectEvent(t, notify.EntitySocial)
	if ev.Detail != types.PlatformLine {
		t.Fatalf("event detail = %q, want %q", ev.Detail, types.PlatformLine)
	}
	if !accounts.Connected[types.PlatformLine] {
		t.Fatal("line not connected after toggle")
	}
	if accounts.LastSync == "" {
		t.Fatal("LastSync not stamped on connect")
	}
	for _, p := range types.Platforms {
		if p != types.PlatformLine && accounts.Connected[p] {
			t.Fatalf("platform %q flipped, want untouched", p)
		}
	}
}

func TestToggleSocial_GoogleDisconnectDropsInfo(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.svc.SaveGoogleAuth(context.Background(), &types.GoogleInfo{Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveGoogleAuth() error = %v", err)
	}
	<-f.events

	accounts, err := f.svc.ToggleSocial(context.Background(), types.PlatformGoogle)
	if err != nil {
		t.Fatalf("ToggleSocial() error = %v", err)
	}
	if accounts.Connected[types.PlatformGoogle] {
		t.Fatal("google still connected after toggle off")
	}
	if accounts.Google != nil {
		t.Fatalf("Google info = %+v after disconnect, want nil", accounts.Google)
	}
}

func TestSetTask_PrunesStaleRecords(t *testing.T) {
	f := newFixture(t, nil)

	stale := types.TaskMap{
		"old": {Status: types.TaskCompleted, Timestamp: f.svc.now().Add(-taskRetention - time.Hour).UnixMilli()},
	}
	if err := f.local.PutJSON(store.KeyTasks, stale); err != nil {
		t.Fatalf("PutJSON() error = %v", err)
	}

	if err := f.svc.SetTask("fresh", types.TaskProcessing, nil); err != nil {
		t.Fatalf("SetTask() error = %v", err)
	}
	ev := f.expectEvent(t, notify.EntityTasks)
	if ev.Detail != "fresh" {
		t.Fatalf("event detail = %q, want fresh", ev.Detail)
	}

	tasks := f.svc.GetTasks()
	if _, ok := tasks["old"]; ok {
		t.Fatal("stale task survived the retention prune")
	}
	rec, ok := tasks["fresh"]
	if !ok {
		t.Fatal("fresh task not recorded")
	}
	if rec.Status != types.TaskProcessing {
		t.Fatalf("Status = %q, want %q", rec.Status, types.TaskProcessing)
	}
}

func TestSnapshots_LocalRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	snap := &types.PollingSnapshot{Data: map[string]any{"支持度": 42.5}}
	if _, err := f.svc.SavePolling(context.Background(), snap); err != nil {
		t.Fatalf("SavePolling() error = %v", err)
	}
	f.expectEvent(t, notify.EntityPolling)

	got, err := f.svc.GetPolling(context.Background())
	if err != nil {
		t.Fatalf("GetPolling() error = %v", err)
	}
	if got.Data["支持度"] != 42.5 {
		t.Fatalf("Data[支持度] = %v, want 42.5", got.Data["支持度"])
	}

	if _, err := f.svc.SaveIntel([]types.IntelItem{{Title: "對手動態"}}); err != nil {
		t.Fatalf("SaveIntel() error = %v", err)
	}
	f.expectEvent(t, notify.EntityIntel)
	if intel := f.svc.GetIntel(); len(intel.Items) != 1 {
		t.Fatalf("GetIntel() = %d items, want 1", len(intel.Items))
	}
}
