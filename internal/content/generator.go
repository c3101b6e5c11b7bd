// Package content wraps the Gemini API behind typed campaign-content
// operations: social copy, image prompts, speeches, counter-strategy,
// compliance audits, and search-grounded intelligence. Failures propagate
// as-is; retries are the caller's decision, never this package's.
package content

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/soworklabs/warchest/internal/store"
	"github.com/soworklabs/warchest/internal/types"
)

// Model identifiers.
const (
	ModelPro   = "gemini-3-pro-preview"
	ModelFlash = "gemini-3-flash-preview"
)

// Generator issues generation requests and archives results to the local
// content history when one is attached.
type Generator struct {
	client  *genai.Client
	history *store.History
	logger  *zap.Logger
}

// NewGenerator builds a Generator. history may be nil to skip archiving.
func NewGenerator(ctx context.Context, apiKey string, history *store.History, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("content: API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("content: create genai client: %w", err)
	}
	return &Generator{client: client, history: history, logger: logger}, nil
}

// generate runs one request and returns the raw response text.
func (g *Generator) generate(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("content: generate: %w", err)
	}
	return resp.Text(), nil
}

// generateJSON runs one request with a JSON response contract and decodes
// the result into out.
func (g *Generator) generateJSON(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig, out any) error {
	text, err := g.generate(ctx, model, prompt, config)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("content: decode model response: %w", err)
	}
	return nil
}

// archive records a generation result locally. Archive failures are logged,
// never surfaced: history is a convenience, not part of the contract.
func (g *Generator) archive(contentType, topic, result string) {
	if g.history == nil {
		return
	}
	if err := g.history.Append(contentType, topic, result); err != nil {
		g.logger.Warn("content history append failed",
			zap.String("type", contentType), zap.Error(err))
	}
}

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func objectSchema(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}
}

func systemInstruction(text string) *genai.Content {
	return genai.NewContentFromText(text, genai.RoleUser)
}

func searchTool() []*genai.Tool {
	return []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
}

// dnaContext renders the profile fields most prompts need.
func dnaContext(dna *types.BrandDNA) string {
	return fmt.Sprintf("候選人：%s，政黨：%s，選區：%s", dna.CandidateName, dna.Party, dna.District)
}
