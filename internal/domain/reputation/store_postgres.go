package reputation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresStore persists the state in two tables: the append-only report log
// and the reputation mapping. Save keeps the wholesale-replacement semantics
// of the document store: the report log only grows, reputation rows are
// upserted in one transaction.
type PostgresStore struct {
	db *sqlx.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id UUID PRIMARY KEY,
	position BIGINT NOT NULL,
	username TEXT NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	game_format TEXT NOT NULL,
	reported_at TIMESTAMPTZ,
	reporter_hash TEXT NOT NULL DEFAULT '',
	factors JSONB,
	notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS player_reputation (
	username_key TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	total_reports INT NOT NULL,
	risk_scores JSONB NOT NULL,
	formats JSONB NOT NULL,
	first_reported TIMESTAMPTZ,
	last_reported TIMESTAMPTZ,
	average_risk_score DOUBLE PRECISION NOT NULL,
	confidence_level TEXT NOT NULL,
	is_banned BOOLEAN NOT NULL DEFAULT FALSE
);
`

// NewPostgresStore creates the store and ensures its schema exists
func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, storeSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure reputation schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*State, error) {
	state := NewState()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, risk_score, game_format, reported_at, reporter_hash, factors, notes
		FROM reports
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load report log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var report Report
		var reportedAt sql.NullTime
		var factors []byte

		if err := rows.Scan(
			&report.ID,
			&report.Username,
			&report.RiskScore,
			&report.GameFormat,
			&reportedAt,
			&report.ReporterHash,
			&factors,
			&report.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		if reportedAt.Valid {
			report.Timestamp = reportedAt.Time
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &report.Factors); err != nil {
				return nil, fmt.Errorf("failed to decode report factors: %w", err)
			}
		}
		state.Reports = append(state.Reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	repRows, err := s.db.QueryContext(ctx, `
		SELECT username_key, username, total_reports, risk_scores, formats,
		       first_reported, last_reported, average_risk_score, confidence_level, is_banned
		FROM player_reputation
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load reputation mapping: %w", err)
	}
	defer repRows.Close()

	for repRows.Next() {
		var key string
		var rep PlayerReputation
		var first, last sql.NullTime
		var scores, formats []byte

		if err := repRows.Scan(
			&key,
			&rep.Username,
			&rep.TotalReports,
			&scores,
			&formats,
			&first,
			&last,
			&rep.AverageRiskScore,
			&rep.ConfidenceLevel,
			&rep.IsBanned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reputation row: %w", err)
		}
		if err := json.Unmarshal(scores, &rep.RiskScores); err != nil {
			return nil, fmt.Errorf("failed to decode risk scores: %w", err)
		}
		if err := json.Unmarshal(formats, &rep.Formats); err != nil {
			return nil, fmt.Errorf("failed to decode format counts: %w", err)
		}
		if first.Valid {
			rep.FirstReported = first.Time
		}
		if last.Valid {
			rep.LastReported = last.Time
		}
		state.Reputation[key] = &rep
	}
	if err := repRows.Err(); err != nil {
		return nil, err
	}

	return state, nil
}

func (s *PostgresStore) Save(ctx context.Context, state *State) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for i, report := range state.Reports {
		var factors []byte
		if report.Factors != nil {
			factors, err = json.Marshal(report.Factors)
			if err != nil {
				return fmt.Errorf("failed to encode report factors: %w", err)
			}
		}

		var reportedAt sql.NullTime
		if !report.Timestamp.IsZero() {
			reportedAt = sql.NullTime{Time: report.Timestamp, Valid: true}
		}

		// The log is append-only: existing rows are left untouched
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reports (id, position, username, risk_score, game_format, reported_at, reporter_hash, factors, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`,
			report.ID,
			i,
			report.Username,
			report.RiskScore,
			report.GameFormat,
			reportedAt,
			report.ReporterHash,
			factors,
			report.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to append report: %w", err)
		}
	}

	for key, rep := range state.Reputation {
		scores, err := json.Marshal(rep.RiskScores)
		if err != nil {
			return fmt.Errorf("failed to encode risk scores: %w", err)
		}
		formats, err := json.Marshal(rep.Formats)
		if err != nil {
			return fmt.Errorf("failed to encode format counts: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO player_reputation (
				username_key, username, total_reports, risk_scores, formats,
				first_reported, last_reported, average_risk_score, confidence_level, is_banned
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (username_key) DO UPDATE SET
				username = EXCLUDED.username,
				total_reports = EXCLUDED.total_reports,
				risk_scores = EXCLUDED.risk_scores,
				formats = EXCLUDED.formats,
				first_reported = EXCLUDED.first_reported,
				last_reported = EXCLUDED.last_reported,
				average_risk_score = EXCLUDED.average_risk_score,
				confidence_level = EXCLUDED.confidence_level,
				is_banned = EXCLUDED.is_banned
		`,
			key,
			rep.Username,
			rep.TotalReports,
			scores,
			formats,
			rep.FirstReported,
			rep.LastReported,
			rep.AverageRiskScore,
			rep.ConfidenceLevel,
			rep.IsBanned,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert reputation: %w", err)
		}
	}

	return tx.Commit()
}
