// Package pgstore keeps pending challenges in PostgreSQL, surviving process
// restarts. Expected schema:
//
//	CREATE TABLE admin_otp_challenges (
//	    identity   TEXT PRIMARY KEY,
//	    id         BIGINT NOT NULL,
//	    code_hash  TEXT NOT NULL,
//	    attempts   INT NOT NULL DEFAULT 0,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Store struct {
	conn  *pgxpool.Pool
	clock clock.Clocker
	ins   instrument.Instrumentation
}

func NewStore(conn *pgxpool.Pool, clk clock.Clocker, ins instrument.Instrumentation) *Store {
	return &Store{conn: conn, clock: clk, ins: ins}
}

func (s *Store) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("adminauth.outbound.pgstore").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) GetChallenge(ctx context.Context, identity string) (_ *entity.OTPChallenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallenge")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, identity, code_hash, attempts, created_at, expires_at
		FROM admin_otp_challenges
		WHERE identity = $1`

	var chal entity.OTPChallenge
	err = s.conn.QueryRow(ctx, query, identity).Scan(
		&chal.ID, &chal.Identity, &chal.CodeHash, &chal.Attempts, &chal.CreatedAt, &chal.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &chal, nil
}

func (s *Store) PutChallenge(ctx context.Context, chal entity.OTPChallenge) (err error) {
	ctx, span := s.startSpan(ctx, "PutChallenge")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO admin_otp_challenges (id, identity, code_hash, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity) DO UPDATE SET
			id = EXCLUDED.id,
			code_hash = EXCLUDED.code_hash,
			attempts = EXCLUDED.attempts,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	_, err = s.conn.Exec(ctx, query,
		chal.ID, chal.Identity, chal.CodeHash, chal.Attempts, chal.CreatedAt, chal.ExpiresAt)
	return err
}

func (s *Store) IncrementAttempts(ctx context.Context, identity string) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempts")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE admin_otp_challenges
		SET attempts = attempts + 1
		WHERE identity = $1
		RETURNING attempts`

	var attempts int
	if err = s.conn.QueryRow(ctx, query, identity).Scan(&attempts); err != nil {
		return 0, s.mapError(err)
	}

	return attempts, nil
}

func (s *Store) DeleteChallenge(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `DELETE FROM admin_otp_challenges WHERE identity = $1`, identity)
	return err
}

func (s *Store) DeleteExpired(ctx context.Context) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`DELETE FROM admin_otp_challenges WHERE expires_at <= $1`, s.clock.Now())
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}
