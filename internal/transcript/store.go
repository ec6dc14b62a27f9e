// Package transcript persists the per-request audit record and the
// narrower review-candidate record written whenever a question escalated.
//
// Records are append-only: the chat path only ever inserts, and the admin
// API reads them back partitioned by day. Review candidates are the FAQ
// curation queue; resolving one marks it handled without deleting it.
package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Motiontography/motiontography-bot/internal/chat"
	botel "github.com/Motiontography/motiontography-bot/internal/otel"
)

var tracer = botel.Tracer("github.com/Motiontography/motiontography-bot/internal/transcript")

// Store persists transcript records in SQLite.
type Store struct {
	db *sql.DB
}

// Record is one persisted chat exchange.
type Record struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Day             string    `json:"day"`
	SessionID       string    `json:"session_id"`
	ClientMeta      string    `json:"client_meta,omitempty"`
	Message         string    `json:"message"`
	Reply           string    `json:"reply"`
	Followups       []string  `json:"followups"`
	RouteURL        string    `json:"route_url,omitempty"`
	MatchedIntentID string    `json:"matched_intent_id,omitempty"`
	MatchScore      float64   `json:"match_score"`
	UsedModel       bool      `json:"used_model"`
	Escalated       bool      `json:"escalated"`
	Evidence        []string  `json:"evidence,omitempty"`
}

// ReviewCandidate is one escalated question awaiting human review.
type ReviewCandidate struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	Resolved  bool      `json:"resolved"`
}

// NewStore opens (creating if needed) the transcript database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening transcript database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS transcript (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		day TEXT NOT NULL,
		session_id TEXT NOT NULL,
		client_meta TEXT,
		message TEXT NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transcript_day ON transcript(day);
	CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript(session_id);

	CREATE TABLE IF NOT EXISTS review_candidates (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		session_id TEXT NOT NULL,
		message TEXT NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_review_resolved ON review_candidates(resolved);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating transcript schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one audit record, and a review candidate when the
// exchange escalated. Missing id/timestamp are filled in.
func (s *Store) Append(ctx context.Context, rec *chat.AuditRecord) error {
	ctx, span := tracer.Start(ctx, "transcript.append",
		trace.WithAttributes(
			attribute.String("session_id", rec.SessionID),
			attribute.Bool("escalated", rec.Result.Escalated),
		))
	defer span.End()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	id := uuid.New().String()
	day := rec.Timestamp.UTC().Format("2006-01-02")

	row := Record{
		ID:              id,
		Timestamp:       rec.Timestamp,
		Day:             day,
		SessionID:       rec.SessionID,
		ClientMeta:      rec.ClientMeta,
		Message:         rec.Message,
		Reply:           rec.Result.Reply,
		Followups:       rec.Result.Followups,
		RouteURL:        rec.Result.RouteURL,
		MatchedIntentID: rec.Result.MatchedIntentID,
		MatchScore:      rec.Result.MatchScore,
		UsedModel:       rec.Result.UsedModel,
		Escalated:       rec.Result.Escalated,
		Evidence:        rec.Result.Evidence,
	}
	recordJSON, err := json.Marshal(&row)
	if err != nil {
		return fmt.Errorf("marshaling transcript record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcript (id, timestamp, day, session_id, client_meta, message, record_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Timestamp, day, rec.SessionID, rec.ClientMeta, rec.Message, string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("storing transcript record: %w", err)
	}

	if rec.Result.Escalated {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO review_candidates (id, timestamp, session_id, message) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), rec.Timestamp, rec.SessionID, rec.Message,
		)
		if err != nil {
			return fmt.Errorf("storing review candidate: %w", err)
		}
	}
	return nil
}

// ListDay returns all records for one day (YYYY-MM-DD), oldest first.
func (s *Store) ListDay(ctx context.Context, day string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "transcript.list_day",
		trace.WithAttributes(attribute.String("day", day)))
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_json FROM transcript WHERE day = ? ORDER BY timestamp ASC`, day)
	if err != nil {
		return nil, fmt.Errorf("querying transcript: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("scanning transcript row: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling transcript record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PendingReviews returns unresolved review candidates, oldest first.
func (s *Store) PendingReviews(ctx context.Context, limit int) ([]ReviewCandidate, error) {
	ctx, span := tracer.Start(ctx, "transcript.pending_reviews")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, session_id, message, resolved
		 FROM review_candidates WHERE resolved = 0
		 ORDER BY timestamp ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying review candidates: %w", err)
	}
	defer rows.Close()

	var out []ReviewCandidate
	for rows.Next() {
		var rc ReviewCandidate
		if err := rows.Scan(&rc.ID, &rc.Timestamp, &rc.SessionID, &rc.Message, &rc.Resolved); err != nil {
			return nil, fmt.Errorf("scanning review candidate: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// ResolveReview marks one review candidate handled.
func (s *Store) ResolveReview(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "transcript.resolve_review",
		trace.WithAttributes(attribute.String("review.id", id)))
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`UPDATE review_candidates SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("resolving review candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("review candidate %s not found", id)
	}
	return nil
}
