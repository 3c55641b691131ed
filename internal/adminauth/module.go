// Package adminauth wires the admin authentication module: one-time code
// issuance and verification plus session token handling.
package adminauth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/adminauth/inbound"
	"github.com/satriajati/gerbang/internal/adminauth/outbound/mailer"
	"github.com/satriajati/gerbang/internal/adminauth/outbound/memstore"
	"github.com/satriajati/gerbang/internal/adminauth/outbound/pgstore"
	"github.com/satriajati/gerbang/internal/adminauth/outbound/redisstore"
	"github.com/satriajati/gerbang/internal/adminauth/usecase"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/config"
	"github.com/satriajati/gerbang/internal/pkg/goroutine"
	"github.com/satriajati/gerbang/internal/pkg/hash"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"github.com/satriajati/gerbang/internal/pkg/jwt"
	"github.com/satriajati/gerbang/internal/pkg/mail"
	"github.com/satriajati/gerbang/internal/pkg/otp"
	"github.com/satriajati/gerbang/internal/pkg/router"
	"github.com/satriajati/gerbang/internal/pkg/uid"
	"github.com/satriajati/gerbang/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool
	CacheConn  *redis.Client
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store, err := newStore(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoStore:  store,
		RepoMailer: mailer.NewMailer(dep.Mail, dep.Config, dep.Instrument),
		Validator:  dep.Validator,
		Config:     dep.Config,
		HMAC:       dep.HMAC,
		OTP:        dep.OTP,
		UID:        dep.UID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	startCleanupSweep(ctx, dep, uc)

	return nil
}

type store interface {
	GetChallenge(ctx context.Context, identity string) (*entity.OTPChallenge, error)
	PutChallenge(ctx context.Context, chal entity.OTPChallenge) error
	IncrementAttempts(ctx context.Context, identity string) (int, error)
	DeleteChallenge(ctx context.Context, identity string) error
	DeleteExpired(ctx context.Context) (int, error)
}

func newStore(dep Dependency) (store, error) {
	driver := dep.Config.GetString("modules.adminauth.store")
	switch driver {
	case "", "memory":
		return memstore.NewStore(dep.Clock), nil

	case "redis":
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("adminauth: store driver %q requires a redis connection", driver)
		}
		return redisstore.NewStore(dep.CacheConn, dep.Instrument), nil

	case "postgres":
		if dep.DBConn == nil {
			return nil, fmt.Errorf("adminauth: store driver %q requires a database connection", driver)
		}
		return pgstore.NewStore(dep.DBConn, dep.Clock, dep.Instrument), nil

	default:
		return nil, fmt.Errorf("adminauth: unknown store driver %q", driver)
	}
}

func startCleanupSweep(ctx context.Context, dep Dependency, uc *usecase.Usecase) {
	interval := dep.Config.GetMinute("modules.adminauth.cleanup_interval_minutes")
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	dep.Goroutine.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := uc.Cleanup(ctx); err != nil {
					slog.ErrorContext(ctx, "cleanup sweep failed", "error", err)
				}
			}
		}
	})
}
