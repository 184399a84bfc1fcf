package reputation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GameFormat represents the time control a report refers to
type GameFormat string

const (
	GameFormatBullet GameFormat = "bullet"
	GameFormatBlitz  GameFormat = "blitz"
	GameFormatRapid  GameFormat = "rapid"
)

// Valid reports whether the format is one of the supported time controls
func (f GameFormat) Valid() bool {
	switch f {
	case GameFormatBullet, GameFormatBlitz, GameFormatRapid:
		return true
	}
	return false
}

// ConfidenceLevel represents how trustworthy a cheating suspicion is
type ConfidenceLevel string

const (
	ConfidenceLow       ConfidenceLevel = "low"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceConfirmed ConfidenceLevel = "confirmed"
)

// Valid reports whether the level is a recognized confidence tier
func (l ConfidenceLevel) Valid() bool {
	switch l {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh, ConfidenceConfirmed:
		return true
	}
	return false
}

// Report is a single crowdsourced observation about one suspected player.
// Immutable once created; the report log is append-only.
type Report struct {
	ID           uuid.UUID      `json:"id"`
	Username     string         `json:"username"`
	RiskScore    float64        `json:"risk_score"`
	GameFormat   GameFormat     `json:"game_format"`
	Timestamp    time.Time      `json:"timestamp"`
	ReporterHash string         `json:"reporter_hash,omitempty"`
	Factors      map[string]any `json:"factors,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// PlayerReputation is the accumulated summary of all reports for one player,
// keyed by the lower-cased username.
type PlayerReputation struct {
	// Username keeps the most recently reported original casing for display.
	Username         string             `json:"username"`
	TotalReports     int                `json:"total_reports"`
	RiskScores       []float64          `json:"risk_scores"`
	Formats          map[GameFormat]int `json:"formats"`
	FirstReported    time.Time          `json:"first_reported"`
	LastReported     time.Time          `json:"last_reported"`
	AverageRiskScore float64            `json:"average_risk_score"`
	ConfidenceLevel  ConfidenceLevel    `json:"confidence_level"`
	IsBanned         bool               `json:"is_banned"`
}

// State is the single persisted blob: the append-only report log plus the
// derived reputation mapping. It is replaced wholesale on each save.
type State struct {
	Reports    []*Report                    `json:"reports"`
	Reputation map[string]*PlayerReputation `json:"reputation"`
}

// NewState returns the empty initial state
func NewState() *State {
	return &State{
		Reports:    []*Report{},
		Reputation: map[string]*PlayerReputation{},
	}
}

// Key returns the identity key used to merge reports regardless of casing
func Key(username string) string {
	return strings.ToLower(username)
}
