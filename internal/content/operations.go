package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/soworklabs/warchest/internal/types"
)

// SocialCopy is the four-platform set of generated social content.
type SocialCopy struct {
	Facebook  string `json:"facebook"`
	Line      string `json:"line"`
	Instagram string `json:"instagram"`
	Threads   string `json:"threads"`
}

// GenerateSocialContent produces platform-specific social copy keyed to the
// candidate profile.
func (g *Generator) GenerateSocialContent(ctx context.Context, topic string, dna *types.BrandDNA) (*SocialCopy, error) {
	sys := fmt.Sprintf(`你是一位頂尖的台灣政治社群操盤手。
任務：針對以下平台生成四種完全不同語氣的文宣文案。

格式要求：
1. Facebook: 溫暖有感、強調政績事實，適合長文閱讀。
2. LINE: 短促、資訊導向、福利優先、多用 Emoji。
3. Instagram: 強調視覺張力，文字要具備「設計感」短標題，需包含 Tag。
4. Threads: 直白、碎碎念、幕後感、不帶 Hashtags。

性格對位：請融入候選人 DNA：%s，並帶入標語：%s。`, dna.Personality, dna.Slogan)

	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(sys),
		ResponseMIMEType:  "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"facebook":  stringSchema(),
			"line":      stringSchema(),
			"instagram": stringSchema(),
			"threads":   stringSchema(),
		}, "facebook", "line", "instagram", "threads"),
	}

	prompt := fmt.Sprintf("戰略主題：%s，%s", topic, dnaContext(dna))
	var copySet SocialCopy
	if err := g.generateJSON(ctx, ModelPro, prompt, config, &copySet); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(copySet); err == nil {
		g.archive("social", topic, string(raw))
	}
	return &copySet, nil
}

// TranslateToCampaignPrompt converts a Chinese campaign topic into a
// detailed English image prompt in the Taiwanese election aesthetic.
func (g *Generator) TranslateToCampaignPrompt(ctx context.Context, topic string, dna *types.BrandDNA) (string, error) {
	palette := "Progressive green and white"
	if strings.Contains(dna.Party, "國民黨") {
		palette = "Campaign blue and white"
	}

	sys := fmt.Sprintf(`你是一位專業的台灣選戰攝影指導。
請將中文主題轉化為詳細的英文影像 Prompt。

必須包含的視覺元素：
- Candidate wearing a formal Taiwanese "election campaign vest" with clear text or logo.
- Asian Taiwanese facial features, friendly and determined expression.
- Authentic Taiwanese backgrounds: Traditional markets, local temples, or modern urban flyovers.
- Color palette: %s.
- Photography style: High-end campaign photography, cinematic lighting, 4k resolution.

輸出格式：僅輸出英文 Prompt。`, palette)

	prompt := fmt.Sprintf("主題：%s，%s", topic, dnaContext(dna))
	text, err := g.generate(ctx, ModelFlash, prompt, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(sys),
	})
	if err != nil {
		return "", err
	}
	g.archive("image-prompt", topic, text)
	return text, nil
}

// Achievement is one scouted public accomplishment.
type Achievement struct {
	Title string `json:"title"`
	Fact  string `json:"fact"`
}

// ScoutAchievements searches public records for the candidate's recent
// accomplishments in their district.
func (g *Generator) ScoutAchievements(ctx context.Context, dna *types.BrandDNA) ([]Achievement, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是一位精準的選戰情資員。
任務：搜尋該候選人在該選區的真實建設與政績。
輸出格式：JSON 陣列。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"title": stringSchema(),
				"fact":  stringSchema(),
			}, "title", "fact"),
		},
	}

	prompt := fmt.Sprintf("請搜尋並彙整 %s 候選人 %s (%s) 過去三年的主要政績。",
		dna.District, dna.CandidateName, dna.Party)
	var achievements []Achievement
	if err := g.generateJSON(ctx, ModelFlash, prompt, config, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

// PolicyFusion aligns a policy record with current district sentiment.
type PolicyFusion struct {
	CurrentVibe         string `json:"currentVibe"`
	TrustAnchor         string `json:"trustAnchor"`
	StrategicRefinement string `json:"strategicRefinement"`
	CampaignAngle       string `json:"campaignAngle"`
}

// AnalyzePolicyFusion maps a policy onto the district's current concerns
// using search grounding.
func (g *Generator) AnalyzePolicyFusion(ctx context.Context, policy string, dna *types.BrandDNA) (*PolicyFusion, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是一位資深選戰策略師。
任務：
1. 使用 Google Search 搜尋該「選區」最近一週的新聞、民怨與討論焦點。
2. 將「原始政策內容」與這些「選民痛點」進行對位。
3. 產出結構化 JSON。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"currentVibe":         stringSchema(),
			"trustAnchor":         stringSchema(),
			"strategicRefinement": stringSchema(),
			"campaignAngle":       stringSchema(),
		}, "currentVibe", "trustAnchor", "strategicRefinement", "campaignAngle"),
	}

	prompt := fmt.Sprintf("原始政策/政績內容：%s\n選區：%s\n候選人性格：%s",
		policy, dna.District, dna.Personality)
	var fusion PolicyFusion
	if err := g.generateJSON(ctx, ModelFlash, prompt, config, &fusion); err != nil {
		return nil, err
	}
	return &fusion, nil
}

// PartyAlignmentBriefing builds the daily party-line briefing with search
// grounding.
func (g *Generator) PartyAlignmentBriefing(ctx context.Context, dna *types.BrandDNA) (*types.PartyBriefing, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是一位政黨中央黨部的幕僚長。
任務：搜尋今日全國性爭議議題，產出候選人的同黨立場對齊簡報。
輸出格式：JSON，包含 issues（固定 3 個）、overallAdvice、nextStep。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
	}

	prompt := fmt.Sprintf("候選人：%s，%s", dna.CandidateName, dnaContext(dna))
	var briefing types.PartyBriefing
	if err := g.generateJSON(ctx, ModelPro, prompt, config, &briefing); err != nil {
		return nil, err
	}
	return &briefing, nil
}

// GenerateSpeech drafts a speech for the given occasion.
func (g *Generator) GenerateSpeech(ctx context.Context, dna *types.BrandDNA, title, location, description string) (string, error) {
	sys := fmt.Sprintf(`你是資深的政治演講撰稿人。
請為候選人 %s 撰寫演講稿，融入性格 DNA：%s，並以核心標語「%s」收尾。`,
		dna.CandidateName, dna.Personality, dna.Slogan)

	prompt := fmt.Sprintf("主題：%s，地點：%s，場合說明：%s", title, location, description)
	text, err := g.generate(ctx, ModelPro, prompt, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(sys),
	})
	if err != nil {
		return "", err
	}
	g.archive("speech", title, text)
	return text, nil
}

// GenerateCounterStrategy drafts a response to an opponent attack.
func (g *Generator) GenerateCounterStrategy(ctx context.Context, attack string, dna *types.BrandDNA) (string, error) {
	sys := fmt.Sprintf(`你是危機處理專家。
請針對攻擊內容提出反制論述，語氣對位候選人 DNA：%s，不回擊人身、只對焦事實。`,
		dna.Personality)

	text, err := g.generate(ctx, ModelPro, fmt.Sprintf("攻擊：%s", attack), &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(sys),
	})
	if err != nil {
		return "", err
	}
	g.archive("counter", attack, text)
	return text, nil
}

// ComplianceReport is the audit result for a piece of campaign copy.
type ComplianceReport struct {
	RiskLevel  string   `json:"riskLevel"`
	Issues     []string `json:"issues"`
	Suggestion string   `json:"suggestion"`
}

// AuditCompliance checks campaign copy against election-law constraints.
func (g *Generator) AuditCompliance(ctx context.Context, copyText string) (*ComplianceReport, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是台灣選罷法合規審查員。
請審查文案是否有法律風險，輸出 JSON：riskLevel（high/medium/low）、issues、suggestion。`),
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"riskLevel":  stringSchema(),
			"issues":     {Type: genai.TypeArray, Items: stringSchema()},
			"suggestion": stringSchema(),
		}, "riskLevel", "suggestion"),
	}

	var report ComplianceReport
	if err := g.generateJSON(ctx, ModelFlash, fmt.Sprintf("文案：%s", copyText), config, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DiscoverStrategicTriangle proposes the voter-pain/competitor-weakness/
// candidate-strength triangle for a district via search grounding.
func (g *Generator) DiscoverStrategicTriangle(ctx context.Context, dna *types.BrandDNA) (*types.StrategicTriangle, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是選戰定位顧問。
搜尋該選區民意與對手動態，輸出 JSON：voterPainPoints、competitorWeakness、candidateStrengths。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"voterPainPoints":    stringSchema(),
			"competitorWeakness": stringSchema(),
			"candidateStrengths": stringSchema(),
		}, "voterPainPoints", "competitorWeakness", "candidateStrengths"),
	}

	var triangle types.StrategicTriangle
	if err := g.generateJSON(ctx, ModelPro, fmt.Sprintf("選區：%s", dna.District), config, &triangle); err != nil {
		return nil, err
	}
	return &triangle, nil
}

// PositioningInput is the strategic-triangle wizard data fed to
// ComputeStrategicPositioning, plus the candidate identity fields the
// model needs for context.
type PositioningInput struct {
	VoterPainPoints    string `json:"voterPainPoints"`
	CompetitorWeakness string `json:"competitorWeakness"`
	CandidateStrengths string `json:"candidateStrengths"`
	District           string `json:"district"`
	Party              string `json:"party"`
	CandidateName      string `json:"candidateName"`
}

// NewPositioningInput assembles the positioning input from a profile,
// pulling the triangle fields when one has been set.
func NewPositioningInput(dna *types.BrandDNA) *PositioningInput {
	input := &PositioningInput{
		District:      dna.District,
		Party:         dna.Party,
		CandidateName: dna.CandidateName,
	}
	if dna.Triangle != nil {
		input.VoterPainPoints = dna.Triangle.VoterPainPoints
		input.CompetitorWeakness = dna.Triangle.CompetitorWeakness
		input.CandidateStrengths = dna.Triangle.CandidateStrengths
	}
	return input
}

// StrategicDirection is one proposed positioning the candidate can adopt.
type StrategicDirection struct {
	Slogan     string `json:"slogan"`
	Story      string `json:"story"`
	Tone       string `json:"tone"`
	Motivation string `json:"motivation"`
}

// Apply writes the direction into the profile: slogan, competitive edge,
// core message and personality follow the direction, and the triangle that
// produced it is recorded alongside.
func (d StrategicDirection) Apply(dna *types.BrandDNA, input *PositioningInput) {
	dna.Slogan = d.Slogan
	dna.CompetitiveEdge = d.Story
	dna.CoreMessage = d.Tone
	dna.Personality = d.Motivation
	dna.Triangle = &types.StrategicTriangle{
		VoterPainPoints:    input.VoterPainPoints,
		CompetitorWeakness: input.CompetitorWeakness,
		CandidateStrengths: input.CandidateStrengths,
	}
}

// PositioningResult is the set of candidate directions in preference order.
type PositioningResult struct {
	Directions []StrategicDirection `json:"directions"`
}

// ComputeStrategicPositioning derives positioning directions from the
// strategic triangle.
func (g *Generator) ComputeStrategicPositioning(ctx context.Context, input *PositioningInput) (*PositioningResult, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是選戰定位總策士。
任務：依據戰略三角（選民痛點、對手弱點、候選人強項）演算三組定位方向。
輸出 JSON：directions 陣列，每組含 slogan、story、tone、motivation。`),
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"directions": {
				Type: genai.TypeArray,
				Items: objectSchema(map[string]*genai.Schema{
					"slogan":     stringSchema(),
					"story":      stringSchema(),
					"tone":       stringSchema(),
					"motivation": stringSchema(),
				}, "slogan", "story", "tone", "motivation"),
			},
		}, "directions"),
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("positioning input: %w", err)
	}
	var result PositioningResult
	if err := g.generateJSON(ctx, ModelPro, fmt.Sprintf("數據：%s", raw), config, &result); err != nil {
		return nil, err
	}
	if len(result.Directions) == 0 {
		return nil, fmt.Errorf("positioning: no directions returned")
	}
	return &result, nil
}

// TieredPollingData assembles search-grounded polling data for the
// candidate's district. The shape is source-dependent, so it stays opaque.
func (g *Generator) TieredPollingData(ctx context.Context, dna *types.BrandDNA) (map[string]any, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是民調分析師。
搜尋該選區最新公開民調，彙整為分層 JSON 數據（整體支持度、年齡層、議題關注度）。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
	}

	var data map[string]any
	if err := g.generateJSON(ctx, ModelPro, fmt.Sprintf("地區：%s", dna.District), config, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// PollAnalysis is the drilldown for one named poll source, cross-read
// against the candidate's district.
type PollAnalysis struct {
	Source            string `json:"source"`
	DistrictInference string `json:"districtInference"`
	SubGroupData      string `json:"subGroupData"`
	StrategicRisk     string `json:"strategicRisk"`
}

// AnalyzePollSource pulls a specific poll source via search grounding and
// infers what its numbers imply for the candidate's district.
func (g *Generator) AnalyzePollSource(ctx context.Context, source string, dna *types.BrandDNA) (*PollAnalysis, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是民調解讀專家。
搜尋指定民調來源的最新結果，推估其對該選區的意義。
輸出 JSON：districtInference、subGroupData、strategicRisk。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"districtInference": stringSchema(),
			"subGroupData":      stringSchema(),
			"strategicRisk":     stringSchema(),
		}, "districtInference"),
	}

	prompt := fmt.Sprintf("民調：%s，選區：%s", source, dna.District)
	var analysis PollAnalysis
	if err := g.generateJSON(ctx, ModelPro, prompt, config, &analysis); err != nil {
		return nil, err
	}
	analysis.Source = source
	return &analysis, nil
}

// CompetitorIntelligence gathers recent competitor activity for the
// district via search grounding.
func (g *Generator) CompetitorIntelligence(ctx context.Context, dna *types.BrandDNA) ([]types.IntelItem, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(`你是選戰情報官。
搜尋該選區競爭對手近期動態，輸出 JSON 陣列：title、fact、severity（high/medium/low）。`),
		Tools:            searchTool(),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: objectSchema(map[string]*genai.Schema{
				"title":    stringSchema(),
				"fact":     stringSchema(),
				"severity": stringSchema(),
			}, "title", "fact"),
		},
	}

	var items []types.IntelItem
	if err := g.generateJSON(ctx, ModelPro, fmt.Sprintf("選區情報：%s", dna.District), config, &items); err != nil {
		return nil, err
	}
	return items, nil
}
