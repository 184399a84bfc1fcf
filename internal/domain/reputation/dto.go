package reputation

import "time"

// SubmitReportRequest represents a candidate report submission
type SubmitReportRequest struct {
	Username   string     `json:"username" validate:"required,min=2,max=25"`
	RiskScore  *float64   `json:"risk_score" validate:"required,gte=0,lte=100"`
	GameFormat string     `json:"game_format" validate:"required,game_format"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	// ReporterHash is an opaque pre-anonymized reporter identifier; if the
	// caller sends a raw ReporterID instead, it is hashed server-side.
	ReporterHash string         `json:"reporter_hash,omitempty"`
	ReporterID   string         `json:"reporter_id,omitempty"`
	Factors      map[string]any `json:"factors,omitempty"`
	Notes        string         `json:"notes,omitempty" validate:"max=500"`
}

// SubmitReportResult confirms a folded-in report
type SubmitReportResult struct {
	Username        string          `json:"username"`
	TotalReports    int             `json:"total_reports"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Message         string          `json:"message"`
}

// ReputationView is the read projection of a player's aggregate
type ReputationView struct {
	Username            string             `json:"username"`
	TotalReports        int                `json:"total_reports"`
	AverageRiskScore    float64            `json:"average_risk_score"`
	ConfidenceLevel     ConfidenceLevel    `json:"confidence_level"`
	FirstReported       time.Time          `json:"first_reported"`
	LastReported        time.Time          `json:"last_reported"`
	ReportCountByFormat map[GameFormat]int `json:"report_count_by_format"`
	IsBanned            bool               `json:"is_banned"`
}

// LookupResult wraps a reputation lookup; absence of data is not an error
type LookupResult struct {
	Found    bool            `json:"found"`
	Username string          `json:"username"`
	Player   *ReputationView `json:"player,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// SearchRequest filters the aggregate set for suspicious players
type SearchRequest struct {
	MinReports   int     `json:"min_reports" validate:"gte=1"`
	MinRiskScore float64 `json:"min_risk_score" validate:"gte=0,lte=100"`
	Confidence   string  `json:"confidence" validate:"omitempty,confidence"`
	Limit        int     `json:"limit" validate:"gte=1,lte=1000"`
}

// Search parameter defaults
const (
	DefaultMinReports   = 3
	DefaultMinRiskScore = 60.0
	DefaultSearchLimit  = 100
)

// NewSearchRequest returns a search request with default bounds
func NewSearchRequest() *SearchRequest {
	return &SearchRequest{
		MinReports:   DefaultMinReports,
		MinRiskScore: DefaultMinRiskScore,
		Limit:        DefaultSearchLimit,
	}
}

// SearchResult holds the truncated match list plus the pre-truncation count
type SearchResult struct {
	TotalFound int               `json:"total_found"`
	Players    []*ReputationView `json:"players"`
}

// TopPlayer is the statistics projection of a heavily reported player
type TopPlayer struct {
	Username         string          `json:"username"`
	TotalReports     int             `json:"total_reports"`
	AverageRiskScore float64         `json:"average_risk_score"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
}

// GlobalStats summarizes the whole database
type GlobalStats struct {
	TotalReports           int          `json:"total_reports"`
	TotalUniquePlayers     int          `json:"total_unique_players"`
	TotalConfirmedCheaters int          `json:"total_confirmed_cheaters"`
	ReportsLast24h         int          `json:"reports_last_24h"`
	ReportsLast7d          int          `json:"reports_last_7d"`
	TopReportedPlayers     []*TopPlayer `json:"top_reported_players"`
}

// SetBannedRequest marks or clears the administrative ban flag.
// A missing banned field defaults to true.
type SetBannedRequest struct {
	Banned *bool `json:"banned,omitempty"`
}

// BanResult confirms an administrative ban action
type BanResult struct {
	Username string `json:"username"`
	IsBanned bool   `json:"is_banned"`
	Message  string `json:"message"`
}

// HealthStatus is the process health payload
type HealthStatus struct {
	Status       string     `json:"status"`
	Version      string     `json:"version"`
	Uptime       string     `json:"uptime"`
	TotalReports int        `json:"total_reports"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
}
