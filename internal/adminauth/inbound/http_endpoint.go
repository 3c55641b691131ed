package inbound

import (
	"time"

	"github.com/satriajati/gerbang/internal/adminauth/usecase"
	"github.com/satriajati/gerbang/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the admin authentication workflows.
type HTTPEndpoint struct {
	uc uc
}

// RequestCode issues a one-time code and emails it to the admin identity.
// @Summary Request admin sign-in code
// @Description Issues a one-time code for the configured admin identity and delivers it by email.
// @Tags Admin, Authentication
// @Accept json
// @Produce json
// @Param request body RequestCodeRequest true "Request code payload"
// @Success 200 {object} router.successResponse{data=RequestCodeResponse} "Code issued"
// @Failure 401 {object} router.errorResponse "Identity not authorized"
// @Failure 429 {object} router.errorResponse "Cooldown active"
// @Failure 503 {object} router.errorResponse "Delivery failed"
// @Router /api/v1/admin/auth/request-code [post]
func (h *HTTPEndpoint) RequestCode(r *router.Request) (any, error) {
	var req RequestCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RequestCode(r.Context(), usecase.RequestCodeInput{
		Identity: req.Identity,
	})
	if err != nil {
		return nil, err
	}

	return RequestCodeResponse{
		ExpiresAt: resp.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// VerifyCode checks a submitted code and returns a session token on success.
// @Summary Verify admin sign-in code
// @Description Verifies the submitted one-time code and returns a session token.
// @Tags Admin, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Verify code payload"
// @Success 200 {object} router.successResponse{data=VerifyCodeResponse} "Session issued"
// @Failure 401 {object} router.errorResponse "Code rejected"
// @Failure 429 {object} router.errorResponse "Attempts exhausted"
// @Router /api/v1/admin/auth/verify-code [post]
func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Identity: req.Identity,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyCodeResponse{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// VerifySession validates a session token supplied in the request body.
// @Summary Verify admin session token
// @Description Validates a session token and returns the session it carries.
// @Tags Admin, Authentication
// @Accept json
// @Produce json
// @Param request body VerifySessionRequest true "Verify session payload"
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session is valid"
// @Failure 401 {object} router.errorResponse "Token expired or invalid"
// @Router /api/v1/admin/auth/session/verify [post]
func (h *HTTPEndpoint) VerifySession(r *router.Request) (any, error) {
	var req VerifySessionRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	// Accept the token from the Authorization header as a fallback.
	if req.Token == "" {
		req.Token = r.BearerToken()
	}

	resp, err := h.uc.VerifySession(r.Context(), usecase.VerifySessionInput{
		Token: req.Token,
	})
	if err != nil {
		return nil, err
	}

	return newSessionResponse(resp), nil
}

// Session returns the session of the authenticated caller.
// @Summary Get current admin session
// @Description Returns the session carried by the Authorization header token.
// @Tags Admin, Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=SessionResponse} "Current session"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Router /api/v1/admin/auth/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return newSessionResponse(resp), nil
}

func newSessionResponse(out *usecase.SessionOutput) SessionResponse {
	return SessionResponse{
		Identity:  out.Session.Identity,
		Role:      out.Session.Role,
		IssuedAt:  out.Session.IssuedAt.Format(time.RFC3339),
		ExpiresAt: out.Session.ExpiresAt.Format(time.RFC3339),
	}
}
