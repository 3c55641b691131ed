package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
)

type RequestCodeInput struct {
	Identity string `validate:"required,email"`
}

type RequestCodeOutput struct {
	ExpiresAt time.Time
}

// RequestCode issues a one-time code to the configured admin identity and
// delivers it by email. While a live code exists the identity is in cooldown
// and no new code is issued.
func (s *Usecase) RequestCode(ctx context.Context, in RequestCodeInput) (*RequestCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "RequestCode")
	defer span.End()

	in.Identity = strings.TrimSpace(strings.ToLower(in.Identity))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Identity != s.adminIdentity() {
		slog.WarnContext(ctx, "code requested for unauthorized identity", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("identity is not authorized",
			goerror.CodeUnauthorized, entity.ReasonUnauthorizedIdentity)
	}

	defer s.lockIdentity(in.Identity)()

	now := s.clock.Now()
	maxAttempts := s.cfg.GetInt("modules.adminauth.max_attempts")

	existing, err := s.repoStore.GetChallenge(ctx, in.Identity)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if existing != nil && !existing.Expired(now) && existing.Attempts < maxAttempts {
		remaining := existing.ExpiresAt.Sub(now)
		minutes := int(remaining.Minutes())
		if remaining%time.Minute > 0 {
			minutes++
		}

		slog.WarnContext(ctx, "code requested during active cooldown", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("a code was already sent recently",
			goerror.CodeTooManyRequest, entity.ReasonCooldownActive,
			"cooldown_minutes", strconv.Itoa(minutes))
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash code", "error", err)
		return nil, goerror.NewServer(err)
	}

	chal := entity.OTPChallenge{
		ID:        s.uid.Generate(),
		Identity:  in.Identity,
		CodeHash:  string(codeHash),
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.GetMinute("modules.adminauth.code_ttl_minutes")),
	}

	if err := s.repoStore.PutChallenge(ctx, chal); err != nil {
		slog.ErrorContext(ctx, "failed to repo put challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMailer.SendCode(ctx, in.Identity, code); err != nil {
		slog.ErrorContext(ctx, "failed to deliver code", "identity", in.Identity, "error", err)

		if delErr := s.repoStore.DeleteChallenge(ctx, in.Identity); delErr != nil {
			slog.ErrorContext(ctx, "failed to roll back challenge after delivery failure",
				"identity", in.Identity, "error", delErr)
		}

		return nil, goerror.NewBusinessReason("failed to deliver the code, please try again",
			goerror.CodeUnavailable, entity.ReasonDeliveryFailed)
	}

	return &RequestCodeOutput{ExpiresAt: chal.ExpiresAt}, nil
}
