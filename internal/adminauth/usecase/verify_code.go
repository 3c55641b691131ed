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

type VerifyCodeInput struct {
	Identity string `validate:"required,email"`
	Code     string `validate:"required,otpcode"`
}

type VerifyCodeOutput struct {
	Token     string
	ExpiresAt time.Time
}

// VerifyCode checks a submitted code against the pending challenge and issues
// a session token on success. A code is single use; a correct code consumes
// the challenge and a third wrong attempt burns it.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) (*VerifyCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	in.Identity = strings.TrimSpace(strings.ToLower(in.Identity))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Identity != s.adminIdentity() {
		slog.WarnContext(ctx, "code verification for unauthorized identity", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("identity is not authorized",
			goerror.CodeUnauthorized, entity.ReasonUnauthorizedIdentity)
	}

	defer s.lockIdentity(in.Identity)()

	chal, err := s.repoStore.GetChallenge(ctx, in.Identity)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "code verification without pending challenge", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("no pending code for this identity",
			goerror.CodeUnauthorized, entity.ReasonNoPendingCode)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if chal.Expired(s.clock.Now()) {
		if err := s.repoStore.DeleteChallenge(ctx, in.Identity); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired challenge", "identity", in.Identity, "error", err)
		}

		slog.WarnContext(ctx, "code verification against expired challenge", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("the code has expired, request a new one",
			goerror.CodeUnauthorized, entity.ReasonCodeExpired)
	}

	maxAttempts := s.cfg.GetInt("modules.adminauth.max_attempts")
	if chal.Attempts >= maxAttempts {
		slog.WarnContext(ctx, "code verification against burned challenge", "identity", in.Identity)
		return nil, goerror.NewBusinessReason("too many wrong attempts, request a new code",
			goerror.CodeTooManyRequest, entity.ReasonMaxAttemptsExceeded)
	}

	if !s.hmac.Verify(chal.CodeHash, in.Code) {
		attempts, err := s.repoStore.IncrementAttempts(ctx, in.Identity)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo increment attempts", "identity", in.Identity, "error", err)
			return nil, goerror.NewServer(err)
		}

		remaining := maxAttempts - attempts
		if remaining <= 0 {
			if err := s.repoStore.DeleteChallenge(ctx, in.Identity); err != nil {
				slog.ErrorContext(ctx, "failed to repo delete burned challenge", "identity", in.Identity, "error", err)
			}

			slog.WarnContext(ctx, "challenge burned after final wrong attempt", "identity", in.Identity)
			return nil, goerror.NewBusinessReason("too many wrong attempts, request a new code",
				goerror.CodeTooManyRequest, entity.ReasonMaxAttemptsExceeded)
		}

		slog.WarnContext(ctx, "wrong code submitted", "identity", in.Identity, "remaining_attempts", remaining)
		return nil, goerror.NewBusinessReason("the code is incorrect",
			goerror.CodeUnauthorized, entity.ReasonCodeMismatch,
			"remaining_attempts", strconv.Itoa(remaining))
	}

	if err := s.repoStore.DeleteChallenge(ctx, in.Identity); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete consumed challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(in.Identity, entity.RoleAdmin)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyCodeOutput{
		Token:     token,
		ExpiresAt: s.clock.Now().Add(s.cfg.GetHour("jwt.ttl_hours")),
	}, nil
}
