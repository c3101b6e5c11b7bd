package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/soworklabs/warchest/internal/types"
)

// Domain endpoints. Each is a thin wrapper over request with a fixed path
// and verb; no additional logic lives here.

// GetDNA fetches the candidate profile.
func (c *Client) GetDNA(ctx context.Context) (*types.BrandDNA, error) {
	var dna types.BrandDNA
	if err := c.request(ctx, http.MethodGet, "/dna", nil, &dna); err != nil {
		return nil, err
	}
	return &dna, nil
}

// SaveDNA replaces the candidate profile.
func (c *Client) SaveDNA(ctx context.Context, dna *types.BrandDNA) (*types.BrandDNA, error) {
	var saved types.BrandDNA
	if err := c.request(ctx, http.MethodPost, "/dna", dna, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteDNA removes the candidate profile.
func (c *Client) DeleteDNA(ctx context.Context) error {
	return c.request(ctx, http.MethodDelete, "/dna", nil, nil)
}

// GetAssets lists vaulted assets, optionally filtered by category.
func (c *Client) GetAssets(ctx context.Context, category string) ([]types.Asset, error) {
	var assets []types.Asset
	endpoint := "/assets" + queryParam("category", category)
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// AddAsset stores a new asset.
func (c *Client) AddAsset(ctx context.Context, title, content string, category types.AssetCategory) (*types.Asset, error) {
	body := map[string]string{
		"title":    title,
		"content":  content,
		"category": string(category),
	}
	var asset types.Asset
	if err := c.request(ctx, http.MethodPost, "/assets", body, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// DeleteAsset removes an asset by ID.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/assets/"+id, nil, nil)
}

// GetPolling fetches the most recent polling snapshot.
func (c *Client) GetPolling(ctx context.Context) (*types.PollingSnapshot, error) {
	var snap types.PollingSnapshot
	if err := c.request(ctx, http.MethodGet, "/data/polling", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SavePolling replaces the polling snapshot.
func (c *Client) SavePolling(ctx context.Context, snap *types.PollingSnapshot) error {
	body := map[string]any{"data": snap}
	return c.request(ctx, http.MethodPost, "/data/polling", body, nil)
}

// GetSocialAccounts fetches the social connection set.
func (c *Client) GetSocialAccounts(ctx context.Context) (*types.SocialAccounts, error) {
	var accounts types.SocialAccounts
	if err := c.request(ctx, http.MethodGet, "/data/social", nil, &accounts); err != nil {
		return nil, err
	}
	return &accounts, nil
}

// ConnectSocial records a platform connection with optional account info.
func (c *Client) ConnectSocial(ctx context.Context, platform string, info any) (*types.SocialAccounts, error) {
	body := map[string]any{"accountInfo": info}
	var accounts types.SocialAccounts
	if err := c.request(ctx, http.MethodPost, "/data/social/"+platform, body, &accounts); err != nil {
		return nil, err
	}
	return &accounts, nil
}

// Content passthroughs. The backend forwards these to its own generation
// service; responses are opaque JSON surfaced as-is.

// GenerateSocial requests platform-specific social copy.
func (c *Client) GenerateSocial(ctx context.Context, topic, platform string) (json.RawMessage, error) {
	body := map[string]string{"topic": topic, "platform": platform}
	var out json.RawMessage
	if err := c.request(ctx, http.MethodPost, "/content/social", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateImagePrompt requests an image-prompt translation.
func (c *Client) GenerateImagePrompt(ctx context.Context, description string) (json.RawMessage, error) {
	body := map[string]string{"description": description}
	var out json.RawMessage
	if err := c.request(ctx, http.MethodPost, "/content/image-prompt", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateSpeech requests a speech draft.
func (c *Client) GenerateSpeech(ctx context.Context, topic string, durationMinutes int) (json.RawMessage, error) {
	body := map[string]any{"topic": topic, "duration": durationMinutes}
	var out json.RawMessage
	if err := c.request(ctx, http.MethodPost, "/content/speech", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateCounter requests a counter-strategy for an opponent claim.
func (c *Client) GenerateCounter(ctx context.Context, opponentClaim string) (json.RawMessage, error) {
	body := map[string]string{"opponentClaim": opponentClaim}
	var out json.RawMessage
	if err := c.request(ctx, http.MethodPost, "/content/counter", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ContentHistory lists previously generated content, optionally by type.
func (c *Client) ContentHistory(ctx context.Context, contentType string) (json.RawMessage, error) {
	endpoint := "/content/history" + queryParam("contentType", contentType)
	var out json.RawMessage
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
