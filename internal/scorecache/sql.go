package scorecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agencypulse/agencypulse/pkg/health"
)

// Dialect selects SQL syntax for a database engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// SQLStore keeps records in the health_scores table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a store over an open database handle.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

const selectRecord = `SELECT client_id, score, previous_score, delivery_rate, on_time_score,
       payment_score, engagement_score, grade, tier, trend, narrative, calculated_at
  FROM health_scores WHERE client_id = ?`

func (s *SQLStore) Get(ctx context.Context, clientID string) (*Record, error) {
	var (
		rec      Record
		previous sql.NullInt64
		trend    string
	)
	err := s.db.QueryRowContext(ctx, Rebind(s.dialect, selectRecord), clientID).Scan(
		&rec.ClientID, &rec.Score, &previous,
		&rec.Factors.DeliveryRate, &rec.Factors.OnTimeScore, &rec.Factors.PaymentScore, &rec.Factors.EngagementScore,
		&rec.Grade, &rec.Tier, &trend, &rec.Narrative, &rec.CalculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", clientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get health score %s: %w", clientID, err)
	}
	if previous.Valid {
		p := int(previous.Int64)
		rec.PreviousScore = &p
	}
	rec.Trend = health.ParseTrend(trend)
	return &rec, nil
}

const insertRecord = `INSERT INTO health_scores
  (client_id, score, previous_score, delivery_rate, on_time_score, payment_score,
   engagement_score, grade, tier, trend, narrative, calculated_at)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const upsertPostgres = insertRecord + `
  ON CONFLICT (client_id) DO UPDATE
    SET score = EXCLUDED.score,
        previous_score = EXCLUDED.previous_score,
        delivery_rate = EXCLUDED.delivery_rate,
        on_time_score = EXCLUDED.on_time_score,
        payment_score = EXCLUDED.payment_score,
        engagement_score = EXCLUDED.engagement_score,
        grade = EXCLUDED.grade,
        tier = EXCLUDED.tier,
        trend = EXCLUDED.trend,
        narrative = EXCLUDED.narrative,
        calculated_at = EXCLUDED.calculated_at`

const upsertMySQL = insertRecord + `
  ON DUPLICATE KEY UPDATE
    score = VALUES(score),
    previous_score = VALUES(previous_score),
    delivery_rate = VALUES(delivery_rate),
    on_time_score = VALUES(on_time_score),
    payment_score = VALUES(payment_score),
    engagement_score = VALUES(engagement_score),
    grade = VALUES(grade),
    tier = VALUES(tier),
    trend = VALUES(trend),
    narrative = VALUES(narrative),
    calculated_at = VALUES(calculated_at)`

func (s *SQLStore) Upsert(ctx context.Context, rec Record) error {
	if rec.ClientID == "" {
		return fmt.Errorf("upsert: client ID is required")
	}

	query := upsertPostgres
	if s.dialect == MySQL {
		query = upsertMySQL
	}

	var previous sql.NullInt64
	if rec.PreviousScore != nil {
		previous = sql.NullInt64{Int64: int64(*rec.PreviousScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, Rebind(s.dialect, query),
		rec.ClientID, rec.Score, previous,
		rec.Factors.DeliveryRate, rec.Factors.OnTimeScore, rec.Factors.PaymentScore, rec.Factors.EngagementScore,
		rec.Grade, rec.Tier, string(rec.Trend), rec.Narrative, rec.CalculatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert health score %s: %w", rec.ClientID, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Rebind rewrites ? placeholders into the dialect's placeholder syntax.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
