// Package redisstore keeps pending challenges in Redis so multiple instances
// can share challenge state. Expiry is enforced by key TTL.
package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "gerbang:adminauth:challenge:"

type Store struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewStore(client *redis.Client, ins instrument.Instrumentation) *Store {
	return &Store{client: client, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("adminauth.outbound.redisstore").Start(ctx, name)
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

	values, err := s.client.HGetAll(ctx, keyPrefix+identity).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	id, _ := strconv.ParseInt(values["id"], 10, 64)
	attempts, _ := strconv.Atoi(values["attempts"])
	createdAt, _ := strconv.ParseInt(values["created_at"], 10, 64)
	expiresAt, _ := strconv.ParseInt(values["expires_at"], 10, 64)

	return &entity.OTPChallenge{
		ID:        id,
		Identity:  identity,
		CodeHash:  values["code_hash"],
		Attempts:  attempts,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}, nil
}

func (s *Store) PutChallenge(ctx context.Context, chal entity.OTPChallenge) (err error) {
	ctx, span := s.startSpan(ctx, "PutChallenge")
	defer func() { s.endSpan(span, err) }()

	key := keyPrefix + chal.Identity
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"id":         strconv.FormatInt(chal.ID, 10),
		"code_hash":  chal.CodeHash,
		"attempts":   strconv.Itoa(chal.Attempts),
		"created_at": strconv.FormatInt(chal.CreatedAt.Unix(), 10),
		"expires_at": strconv.FormatInt(chal.ExpiresAt.Unix(), 10),
	})
	pipe.ExpireAt(ctx, key, chal.ExpiresAt)

	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) IncrementAttempts(ctx context.Context, identity string) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempts")
	defer func() { s.endSpan(span, err) }()

	key := keyPrefix + identity

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, goerror.ErrNotFound
	}

	attempts, err := s.client.HIncrBy(ctx, key, "attempts", 1).Result()
	if err != nil {
		return 0, err
	}

	return int(attempts), nil
}

func (s *Store) DeleteChallenge(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, keyPrefix+identity).Err()
}

// DeleteExpired is a no-op; Redis evicts expired challenges via key TTL.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	_, span := s.startSpan(ctx, "DeleteExpired")
	defer span.End()

	return 0, nil
}
