package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"civic-insight/internal/record"
)

// PostgresStore reads grievance snapshots from a grievances_processed-shaped
// table. It never writes; the ingestion pipeline that populates the table is
// a separate system.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pooled read-only client and verifies the
// connection before returning.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	log.Info().Msg("Connected to grievance record store")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// Snapshot loads the full record set for one dataset source.
func (s *PostgresStore) Snapshot(ctx context.Context, source string) ([]record.Grievance, error) {
	const q = `
		SELECT grievance_id, created_date, closed_date,
		       COALESCE(ward_name, ''), COALESCE(department_name, ''),
		       COALESCE(ai_category, ''), COALESCE(ai_subtopic, ''),
		       COALESCE(ai_urgency, ''), COALESCE(ai_sentiment, ''),
		       feedback_rating,
		       COALESCE(forward_count, 0) > 0
		FROM grievances_processed
		WHERE source_raw_filename = $1 AND created_date IS NOT NULL
		ORDER BY created_date, grievance_id`

	rows, err := s.pool.Query(ctx, q, source)
	if err != nil {
		return nil, fmt.Errorf("snapshot query failed: %w", err)
	}
	defer rows.Close()

	var records []record.Grievance
	for rows.Next() {
		var g record.Grievance
		var created time.Time
		var closed *time.Time
		var forwarded bool
		if err := rows.Scan(&g.ID, &created, &closed, &g.Ward, &g.Department,
			&g.Category, &g.Subtopic, &g.Urgency, &g.Sentiment,
			&g.FeedbackRating, &forwarded); err != nil {
			return nil, fmt.Errorf("snapshot scan failed: %w", err)
		}
		g.CreatedDate = created
		g.ClosedDate = closed
		g.Forwarded = forwarded
		// Forwarding is the dataset's escalation signal.
		g.Escalated = forwarded
		g.Source = source
		records = append(records, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows failed: %w", err)
	}
	return records, nil
}

// Sources lists the distinct dataset identifiers present in the table.
func (s *PostgresStore) Sources(ctx context.Context) ([]string, error) {
	const q = `
		SELECT DISTINCT source_raw_filename
		FROM grievances_processed
		WHERE source_raw_filename IS NOT NULL
		ORDER BY source_raw_filename`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sources query failed: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("sources scan failed: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
