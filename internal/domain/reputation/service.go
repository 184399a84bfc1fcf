package reputation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chesswatch/chesswatch-api/internal/pkg/anonhash"
)

// Service is the reputation engine. It owns the single state blob behind one
// RWMutex: mutations are strictly sequential, reads see a consistent snapshot.
type Service struct {
	mu    sync.RWMutex
	state *State

	store   Store
	cache   *StatsCache
	started time.Time
	version string

	// now is swapped in tests
	now func() time.Time
}

// NewService loads persisted state and creates the engine. A load failure
// degrades to the empty initial state rather than failing startup.
func NewService(ctx context.Context, store Store, cache *StatsCache, version string) *Service {
	state, err := store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load reputation state, starting empty")
		state = NewState()
	}
	if state == nil {
		state = NewState()
	}
	if state.Reputation == nil {
		state.Reputation = map[string]*PlayerReputation{}
	}

	return &Service{
		state:   state,
		store:   store,
		cache:   cache,
		started: time.Now(),
		version: version,
		now:     time.Now,
	}
}

// classifyConfidence maps report volume and average severity to a tier.
// First match wins; the function is monotone in both arguments.
func classifyConfidence(reportCount int, avgRisk float64) ConfidenceLevel {
	switch {
	case reportCount >= 10 && avgRisk >= 80:
		return ConfidenceConfirmed
	case reportCount >= 5 && avgRisk >= 70:
		return ConfidenceHigh
	case reportCount >= 3 && avgRisk >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// validate defends the engine even when the boundary layer already bound and
// validated the request shape.
func (s *Service) validate(req *SubmitReportRequest) *FieldError {
	if n := utf8.RuneCountInString(req.Username); n < 2 || n > 25 {
		return fieldError("username", "must be between 2 and 25 characters")
	}
	if req.RiskScore == nil {
		return fieldError("risk_score", "is required")
	}
	if *req.RiskScore < 0 || *req.RiskScore > 100 {
		return fieldError("risk_score", "must be between 0 and 100")
	}
	if !GameFormat(req.GameFormat).Valid() {
		return fieldError("game_format", "must be one of: bullet, blitz, rapid")
	}
	if utf8.RuneCountInString(req.Notes) > 500 {
		return fieldError("notes", "must be at most 500 characters")
	}
	return nil
}

// SubmitReport validates a report, folds it into the player's aggregate,
// recomputes the derived fields and persists the whole state.
func (s *Service) SubmitReport(ctx context.Context, req *SubmitReportRequest) (*SubmitReportResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	reporterHash := req.ReporterHash
	if reporterHash == "" && req.ReporterID != "" {
		reporterHash = anonhash.Reporter(req.ReporterID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	report := &Report{
		ID:           uuid.New(),
		Username:     req.Username,
		RiskScore:    *req.RiskScore,
		GameFormat:   GameFormat(req.GameFormat),
		Timestamp:    ts,
		ReporterHash: reporterHash,
		Factors:      req.Factors,
		Notes:        req.Notes,
	}

	key := Key(req.Username)
	rep, ok := s.state.Reputation[key]
	if !ok {
		rep = &PlayerReputation{
			Username:        req.Username,
			RiskScores:      []float64{},
			Formats:         map[GameFormat]int{},
			FirstReported:   ts,
			LastReported:    ts,
			ConfidenceLevel: ConfidenceLow,
		}
		s.state.Reputation[key] = rep
	}

	rep.Username = req.Username
	rep.TotalReports++
	rep.RiskScores = append(rep.RiskScores, report.RiskScore)
	rep.Formats[report.GameFormat]++
	rep.LastReported = ts

	rep.AverageRiskScore = mean(rep.RiskScores)
	// Banned players stay confirmed regardless of score
	if !rep.IsBanned {
		rep.ConfidenceLevel = classifyConfidence(rep.TotalReports, rep.AverageRiskScore)
	}

	s.state.Reports = append(s.state.Reports, report)

	if err := s.store.Save(ctx, s.state); err != nil {
		// The in-memory fold is not rolled back; durability is at-least-once.
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to persist reputation state")
		return nil, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}

	s.cache.Invalidate(ctx)

	return &SubmitReportResult{
		Username:        req.Username,
		TotalReports:    rep.TotalReports,
		ConfidenceLevel: rep.ConfidenceLevel,
		Message:         "Report submitted successfully",
	}, nil
}

// GetReputation looks up a player by case-folded username. A missing player
// is a normal negative result, not an error.
func (s *Service) GetReputation(ctx context.Context, username string) *LookupResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.state.Reputation[Key(username)]
	if !ok {
		return &LookupResult{
			Found:    false,
			Username: username,
			Message:  "No reports found for this player",
		}
	}

	return &LookupResult{
		Found:    true,
		Username: rep.Username,
		Player:   viewOf(rep),
	}
}

// Search filters the aggregate set by report count, average risk and an
// optional confidence tier, sorted by total reports descending.
func (s *Service) Search(ctx context.Context, req *SearchRequest) *SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*ReputationView
	for _, rep := range s.state.Reputation {
		if rep.TotalReports < req.MinReports {
			continue
		}
		if rep.AverageRiskScore < req.MinRiskScore {
			continue
		}
		if req.Confidence != "" && rep.ConfidenceLevel != ConfidenceLevel(req.Confidence) {
			continue
		}
		matches = append(matches, viewOf(rep))
	}

	sortViews(matches)

	result := &SearchResult{
		TotalFound: len(matches),
		Players:    matches,
	}
	if len(matches) > req.Limit {
		result.Players = matches[:req.Limit]
	}
	if result.Players == nil {
		result.Players = []*ReputationView{}
	}
	return result
}

// GlobalStatistics computes database-wide totals. Results are served from the
// cache when available since this is the only full-scan read.
func (s *Service) GlobalStatistics(ctx context.Context) *GlobalStats {
	if stats, ok := s.cache.Get(ctx); ok {
		return stats
	}

	s.mu.RLock()

	now := s.now()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var last24h, last7d int
	for _, report := range s.state.Reports {
		// Reports without a usable timestamp are skipped from both windows
		if report.Timestamp.IsZero() {
			continue
		}
		if !report.Timestamp.Before(dayAgo) {
			last24h++
		}
		if !report.Timestamp.Before(weekAgo) {
			last7d++
		}
	}

	var confirmed int
	top := make([]*TopPlayer, 0, len(s.state.Reputation))
	for _, rep := range s.state.Reputation {
		if rep.ConfidenceLevel == ConfidenceConfirmed || rep.IsBanned {
			confirmed++
		}
		top = append(top, &TopPlayer{
			Username:         rep.Username,
			TotalReports:     rep.TotalReports,
			AverageRiskScore: round2(rep.AverageRiskScore),
			ConfidenceLevel:  rep.ConfidenceLevel,
		})
	}

	stats := &GlobalStats{
		TotalReports:           len(s.state.Reports),
		TotalUniquePlayers:     len(s.state.Reputation),
		TotalConfirmedCheaters: confirmed,
		ReportsLast24h:         last24h,
		ReportsLast7d:          last7d,
	}

	s.mu.RUnlock()

	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalReports != top[j].TotalReports {
			return top[i].TotalReports > top[j].TotalReports
		}
		return Key(top[i].Username) < Key(top[j].Username)
	})
	if len(top) > 10 {
		top = top[:10]
	}
	stats.TopReportedPlayers = top

	s.cache.Set(ctx, stats)
	return stats
}

// SetBanned sets or clears the administrative ban flag. Banning forces the
// confidence level to confirmed; unbanning leaves the level exactly as it was
// at the time of the call.
func (s *Service) SetBanned(ctx context.Context, username string, banned bool) (*BanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, ok := s.state.Reputation[Key(username)]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	rep.IsBanned = banned
	if banned {
		rep.ConfidenceLevel = ConfidenceConfirmed
	}

	if err := s.store.Save(ctx, s.state); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to persist ban state")
		return nil, fmt.Errorf("%w: %v", ErrNotSaved, err)
	}

	s.cache.Invalidate(ctx)

	verb := "banned"
	if !banned {
		verb = "not banned"
	}
	return &BanResult{
		Username: username,
		IsBanned: banned,
		Message:  fmt.Sprintf("Player %s marked as %s", username, verb),
	}, nil
}

// Health returns process status plus the log totals
func (s *Service) Health(ctx context.Context) *HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &HealthStatus{
		Status:       "healthy",
		Version:      s.version,
		Uptime:       time.Since(s.started).Truncate(time.Second).String(),
		TotalReports: len(s.state.Reports),
	}
	if n := len(s.state.Reports); n > 0 {
		ts := s.state.Reports[n-1].Timestamp
		status.LastUpdated = &ts
	}
	return status
}

func viewOf(rep *PlayerReputation) *ReputationView {
	formats := make(map[GameFormat]int, len(rep.Formats))
	for f, n := range rep.Formats {
		formats[f] = n
	}
	return &ReputationView{
		Username:            rep.Username,
		TotalReports:        rep.TotalReports,
		AverageRiskScore:    round2(rep.AverageRiskScore),
		ConfidenceLevel:     rep.ConfidenceLevel,
		FirstReported:       rep.FirstReported,
		LastReported:        rep.LastReported,
		ReportCountByFormat: formats,
		IsBanned:            rep.IsBanned,
	}
}

// sortViews orders by total reports descending with a deterministic
// case-folded username tie-break.
func sortViews(views []*ReputationView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].TotalReports != views[j].TotalReports {
			return views[i].TotalReports > views[j].TotalReports
		}
		return Key(views[i].Username) < Key(views[j].Username)
	})
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, score := range scores {
		sum += score
	}
	return sum / float64(len(scores))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
