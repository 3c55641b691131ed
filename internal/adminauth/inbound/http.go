package inbound

import (
	"context"

	"github.com/satriajati/gerbang/internal/adminauth/usecase"
	"github.com/satriajati/gerbang/internal/pkg/router"
)

type uc interface {
	RequestCode(ctx context.Context, in usecase.RequestCodeInput) (*usecase.RequestCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
	VerifySession(ctx context.Context, in usecase.VerifySessionInput) (*usecase.SessionOutput, error)
	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Code flow
	r.POST("/api/v1/admin/auth/request-code", end.RequestCode)
	r.POST("/api/v1/admin/auth/verify-code", end.VerifyCode)

	// Session flow
	r.POST("/api/v1/admin/auth/session/verify", end.VerifySession)
	r.GET("/api/v1/admin/auth/session", end.Session) // need authenticated
}
