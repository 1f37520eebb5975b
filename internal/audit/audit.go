// Package audit records one row per analysis request. Rows describe what
// happened (verdict, outcome, model, attempts, timing) and never contain the
// submitted text or anything derived from it.
package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/Skufu/symptomgate/pkg/errors"
)

// Event is one audited request.
type Event struct {
	RequestID  string
	Verdict    string
	Outcome    string
	Locale     string
	Model      string
	Attempts   int
	CacheHit   bool
	Redactions int
	Duration   time.Duration
	CreatedAt  time.Time
}

// Store persists events and reports database health.
type Store interface {
	Record(ctx context.Context, e Event) error
	Ping(ctx context.Context) error
}

const schema = `
CREATE TABLE IF NOT EXISTS analysis_audit (
	id          BIGSERIAL PRIMARY KEY,
	request_id  TEXT        NOT NULL,
	verdict     TEXT        NOT NULL,
	outcome     TEXT        NOT NULL,
	locale      TEXT        NOT NULL,
	model       TEXT        NOT NULL DEFAULT '',
	attempts    INTEGER     NOT NULL DEFAULT 0,
	cache_hit   BOOLEAN     NOT NULL DEFAULT FALSE,
	redactions  INTEGER     NOT NULL DEFAULT 0,
	duration_ms BIGINT      NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const insertEvent = `
INSERT INTO analysis_audit
	(request_id, verdict, outcome, locale, model, attempts, cache_hit, redactions, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Postgres writes events through a pgx pool.
type Postgres struct {
	db  execer
	now func() time.Time
}

// NewPostgres wraps pool. Call Migrate once before the first Record.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return newPostgres(pool)
}

func newPostgres(db execer) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Migrate creates the audit table when it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "create audit table")
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = p.now().UTC()
	}
	_, err := p.db.Exec(ctx, insertEvent,
		e.RequestID, e.Verdict, e.Outcome, e.Locale, e.Model,
		e.Attempts, e.CacheHit, e.Redactions, e.Duration.Milliseconds(), e.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "insert audit event")
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// Nop drops events. It is used when the database is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
func (Nop) Ping(context.Context) error          { return nil }
