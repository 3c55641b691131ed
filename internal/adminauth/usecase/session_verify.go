package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
	"github.com/satriajati/gerbang/internal/pkg/jwt"
)

type VerifySessionInput struct {
	Token string `validate:"required"`
}

type SessionOutput struct {
	Session entity.Session
}

// VerifySession validates a session token and returns the session it carries.
func (s *Usecase) VerifySession(ctx context.Context, in VerifySessionInput) (*SessionOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifySession")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm, err := s.jwt.Verify(in.Token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		slog.WarnContext(ctx, "expired session token presented")
		return nil, goerror.NewBusinessReason("the session has expired",
			goerror.CodeUnauthorized, entity.ReasonTokenExpired)
	}
	if err != nil {
		slog.WarnContext(ctx, "invalid session token presented", "error", err)
		return nil, goerror.NewBusinessReason("the session token is not valid",
			goerror.CodeUnauthorized, entity.ReasonTokenInvalid)
	}

	if clm.Subject != s.adminIdentity() || clm.Role != entity.RoleAdmin {
		slog.WarnContext(ctx, "session token carries unexpected claims", "subject", clm.Subject, "role", clm.Role)
		return nil, goerror.NewBusinessReason("the session token is not valid",
			goerror.CodeUnauthorized, entity.ReasonTokenInvalid)
	}

	return &SessionOutput{Session: sessionFromClaims(clm)}, nil
}

// Session returns the session of the authenticated caller.
func (s *Usecase) Session(ctx context.Context) (*SessionOutput, error) {
	_, span := s.startSpan(ctx, "Session")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusinessReason("authentication required",
			goerror.CodeUnauthorized, entity.ReasonTokenInvalid)
	}

	return &SessionOutput{Session: sessionFromClaims(*clm)}, nil
}

func sessionFromClaims(clm jwt.Claims) entity.Session {
	sess := entity.Session{Identity: clm.Subject, Role: clm.Role}
	if clm.IssuedAt != nil {
		sess.IssuedAt = clm.IssuedAt.Time
	}
	if clm.ExpiresAt != nil {
		sess.ExpiresAt = clm.ExpiresAt.Time
	}

	return sess
}
