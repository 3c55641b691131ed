package usecase

import (
	"context"
	"sync"

	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/config"
	"github.com/satriajati/gerbang/internal/pkg/hash"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"github.com/satriajati/gerbang/internal/pkg/jwt"
	"github.com/satriajati/gerbang/internal/pkg/otp"
	"github.com/satriajati/gerbang/internal/pkg/uid"
	"github.com/satriajati/gerbang/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	GetChallenge(ctx context.Context, identity string) (*entity.OTPChallenge, error)
	PutChallenge(ctx context.Context, chal entity.OTPChallenge) error
	IncrementAttempts(ctx context.Context, identity string) (int, error)
	DeleteChallenge(ctx context.Context, identity string) error
	DeleteExpired(ctx context.Context) (int, error)
}

type repoMailer interface {
	SendCode(ctx context.Context, identity, code string) error
}

type Usecase struct {
	repoStore  repoStore
	repoMailer repoMailer
	validator  validator.Validator
	cfg        config.Config
	hmac       hash.Hash
	otp        otp.Generator
	uid        uid.NumberID
	clock      clock.Clocker
	jwt        jwt.JWT
	ins        instrument.Instrumentation

	// identityMu serializes verify/request flows per identity so attempt
	// accounting cannot race.
	identityMu sync.Map
}

type Dependency struct {
	RepoStore  repoStore
	RepoMailer repoMailer
	Validator  validator.Validator
	Config     config.Config
	HMAC       hash.Hash
	OTP        otp.Generator
	UID        uid.NumberID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:  dep.RepoStore,
		repoMailer: dep.RepoMailer,
		validator:  dep.Validator,
		cfg:        dep.Config,
		hmac:       dep.HMAC,
		otp:        dep.OTP,
		uid:        dep.UID,
		clock:      dep.Clock,
		jwt:        dep.JWT,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("adminauth.usecase").Start(ctx, name)
}

// lockIdentity acquires the per-identity mutex and returns its unlock func.
func (s *Usecase) lockIdentity(identity string) func() {
	mu, _ := s.identityMu.LoadOrStore(identity, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Usecase) adminIdentity() string {
	return s.cfg.GetString("admin.identity")
}
