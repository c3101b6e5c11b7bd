// Package types holds the shared domain records for warchest.
// Every record that is durably persisted carries a Version tag so that
// future shape changes become explicit migrations instead of silent drift.
package types

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the current version tag written into persisted records.
const SchemaVersion = 1

// StrategicTriangle is the three-point positioning sub-record of BrandDNA.
type StrategicTriangle struct {
	VoterPainPoints    string `json:"voterPainPoints"`
	CompetitorWeakness string `json:"competitorWeakness"`
	CandidateStrengths string `json:"candidateStrengths"`
}

// BrandDNA is the single structured description of a candidate's campaign
// identity. Exactly one record exists per identity; it is replaced wholesale
// on save and is never absent: reads against an empty store yield SeedDNA.
type BrandDNA struct {
	Version         int                `json:"version"`
	CandidateName   string             `json:"candidateName"`
	Party           string             `json:"party"`
	Personality     string             `json:"personality"`
	CompetitiveEdge string             `json:"competitiveEdge"`
	TargetVoters    string             `json:"targetVoters"`
	CoreMessage     string             `json:"coreMessage"`
	Slogan          string             `json:"slogan"`
	SloganOptions   []string           `json:"sloganOptions,omitempty"`
	District        string             `json:"district"`
	ElectionLevel   string             `json:"electionLevel"`
	Triangle        *StrategicTriangle `json:"strategicTriangle,omitempty"`
	// VisualDNA is a base64-encoded reference image, if one was uploaded.
	VisualDNA   string `json:"visualDNA,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// AssetCategory is the closed set of asset vault categories.
type AssetCategory string

const (
	AssetInspiration AssetCategory = "inspiration"
	AssetSpeech      AssetCategory = "speech"
	AssetStrategy    AssetCategory = "strategy"
)

// ValidCategory reports whether c is a member of the closed category set.
func ValidCategory(c AssetCategory) bool {
	switch c {
	case AssetInspiration, AssetSpeech, AssetStrategy:
		return true
	}
	return false
}

// Asset is a vaulted piece of campaign material. Immutable once created
// except by deletion; listed newest-first.
type Asset struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Category AssetCategory `json:"category"`
	Date     string        `json:"date"`
}

// Platform identifiers for the social connection set. The set is fixed.
const (
	PlatformFacebook  = "fb"
	PlatformInstagram = "instagram"
	PlatformThreads   = "threads"
	PlatformLine      = "line"
	PlatformGoogle    = "google"
)

// Platforms lists every known platform identifier.
var Platforms = []string{
	PlatformFacebook,
	PlatformInstagram,
	PlatformThreads,
	PlatformLine,
	PlatformGoogle,
}

// GoogleInfo is provider-specific account detail, held for at most the
// google platform.
type GoogleInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// SocialAccounts maps each platform to its connected state. Exactly one
// instance exists per identity.
type SocialAccounts struct {
	Version   int             `json:"version"`
	Connected map[string]bool `json:"connected"`
	Google    *GoogleInfo     `json:"googleInfo,omitempty"`
	LastSync  string          `json:"lastSync,omitempty"`
}

// NewSocialAccounts returns the disconnected-everywhere default.
func NewSocialAccounts() *SocialAccounts {
	conn := make(map[string]bool, len(Platforms))
	for _, p := range Platforms {
		conn[p] = false
	}
	return &SocialAccounts{Version: SchemaVersion, Connected: conn}
}

// PollingSnapshot is the most recent polling blob. Replaced wholesale on
// refresh; no history is retained.
type PollingSnapshot struct {
	Version     int            `json:"version"`
	Data        map[string]any `json:"data"`
	LastUpdated string         `json:"lastUpdated,omitempty"`
}

// IntelItem is one entry of the competitor intelligence feed.
type IntelItem struct {
	Title    string `json:"title"`
	Fact     string `json:"fact"`
	Severity string `json:"severity,omitempty"`
}

// IntelSnapshot is the most recent competitor intelligence list.
type IntelSnapshot struct {
	Version     int         `json:"version"`
	Items       []IntelItem `json:"list"`
	LastUpdated string      `json:"lastUpdated,omitempty"`
}

// IssueAlignment is one issue row of a PartyBriefing.
type IssueAlignment struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	OurStance      string `json:"ourStance"`
	OpposingStance string `json:"opposingStance"`
	Pitch          string `json:"pitch"`
	RiskLevel      string `json:"riskLevel"`
}

// BriefingNextStep is the recommended follow-up action of a briefing.
type BriefingNextStep struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// PartyBriefing is the most recent daily alignment briefing.
type PartyBriefing struct {
	Version       int              `json:"version"`
	Issues        []IssueAlignment `json:"issues"`
	OverallAdvice string           `json:"overallAdvice"`
	NextStep      BriefingNextStep `json:"nextStep"`
	LastUpdated   string           `json:"lastUpdated,omitempty"`
}

// TaskStatus is the lifecycle state of a background analysis task.
type TaskStatus string

const (
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
)

// TaskRecord tracks one in-flight or completed background analysis request.
type TaskRecord struct {
	Status    TaskStatus      `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// TaskMap keys tasks by their arbitrary label.
type TaskMap map[string]TaskRecord

// TurnRole identifies the speaker of a conversation turn.
type TurnRole string

const (
	RoleUser  TurnRole = "user"
	RoleCoach TurnRole = "ai"
)

// ConversationTurn is one committed utterance of a coaching session.
// Runtime-only; the core never writes turns to durable storage.
type ConversationTurn struct {
	Role    TurnRole
	Text    string
	Refined string
}

// Timestamp returns the display form used by persisted records.
func Timestamp(t time.Time) string {
	return t.Format("2006/01/02 15:04:05")
}
