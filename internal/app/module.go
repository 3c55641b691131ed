package app

import (
	"log/slog"
	"os"

	"github.com/satriajati/gerbang/internal/adminauth"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.adminauth.enabled") {
		if err := adminauth.New(a.ctx, adminauth.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			OTP:        a.otp,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module adminauth", "error", err)
			os.Exit(1)
		}
	}
}
