package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/adminauth/outbound/memstore"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/config"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
	"github.com/satriajati/gerbang/internal/pkg/hash"
	"github.com/satriajati/gerbang/internal/pkg/instrument"
	"github.com/satriajati/gerbang/internal/pkg/jwt"
	"github.com/satriajati/gerbang/internal/pkg/otp"
	"github.com/satriajati/gerbang/internal/pkg/uid"
	"github.com/satriajati/gerbang/internal/pkg/validator"
)

const testAdmin = "admin@x.com"

const testConfigYAML = `
admin:
  identity: ` + testAdmin + `
jwt:
  ttl_hours: 24
modules:
  adminauth:
    code_ttl_minutes: 10
    max_attempts: 3
`

type fakeMailer struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (f *fakeMailer) SendCode(_ context.Context, _, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.codes) == 0 {
		t.Fatal("no code was delivered")
	}
	return f.codes[len(f.codes)-1]
}

type seqNumberID struct{ n int64 }

func (s *seqNumberID) Generate() int64 {
	s.n++
	return s.n
}

type testEnv struct {
	uc     *Usecase
	mailer *fakeMailer
	store  *memstore.Store
	clock  *clock.Fixed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	clk := clock.NewFixed(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	tokenizer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "gerbang-test",
		Audiences: []string{"gerbang-admin"},
		TTL:       24 * time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("build jwt: %v", err)
	}

	store := memstore.NewStore(clk)
	mailer := &fakeMailer{}

	uc := New(Dependency{
		RepoStore:  store,
		RepoMailer: mailer,
		Validator:  v10,
		Config:     cfg,
		HMAC:       hash.NewHMACSHA256("test-hmac-secret"),
		OTP:        otp.NewNumeric(6),
		UID:        &seqNumberID{},
		Clock:      clk,
		JWT:        tokenizer,
		Instrument: instrument.NewNoop(),
	})

	return &testEnv{uc: uc, mailer: mailer, store: store, clock: clk}
}

func assertReason(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with reason %s, got nil", want)
	}

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror.Error, got %T: %v", err, err)
	}
	if gerr.Reason() != want {
		t.Fatalf("expected reason %s, got %s", want, gerr.Reason())
	}
}

func errField(t *testing.T, err error, key string) string {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror.Error, got %T: %v", err, err)
	}
	return gerr.Fields()[key]
}

func TestRequestCode(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown identity", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: "intruder@x.com"})
		assertReason(t, err, entity.ReasonUnauthorizedIdentity)
	})

	t.Run("rejects malformed identity", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: "not-an-email"})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("delivers a six digit code and stores its hash", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin})
		if err != nil {
			t.Fatalf("request code: %v", err)
		}

		wantExpiry := env.clock.Now().Add(10 * time.Minute)
		if !out.ExpiresAt.Equal(wantExpiry) {
			t.Fatalf("expected expiry %v, got %v", wantExpiry, out.ExpiresAt)
		}

		code := env.mailer.lastCode(t)
		if len(code) != 6 {
			t.Fatalf("expected 6 digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}

		chal, err := env.store.GetChallenge(ctx, testAdmin)
		if err != nil {
			t.Fatalf("get challenge: %v", err)
		}
		if chal.CodeHash == code {
			t.Fatal("code must not be stored in plaintext")
		}
		if chal.Attempts != 0 {
			t.Fatalf("expected fresh challenge with 0 attempts, got %d", chal.Attempts)
		}
	})

	t.Run("enforces cooldown while a code is live", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}

		_, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin})
		assertReason(t, err, entity.ReasonCooldownActive)
		if got := errField(t, err, "cooldown_minutes"); got != "10" {
			t.Fatalf("expected cooldown_minutes 10, got %q", got)
		}
	})

	t.Run("issues a new code after the previous one expires", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}

		env.clock.Advance(10 * time.Minute)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code after expiry: %v", err)
		}
		if len(env.mailer.codes) != 2 {
			t.Fatalf("expected 2 deliveries, got %d", len(env.mailer.codes))
		}
	})

	t.Run("rolls back the challenge when delivery fails", func(t *testing.T) {
		env := newTestEnv(t)
		env.mailer.err = errors.New("smtp: connection refused")

		_, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin})
		assertReason(t, err, entity.ReasonDeliveryFailed)

		if _, err := env.store.GetChallenge(ctx, testAdmin); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected rolled back challenge, got %v", err)
		}

		// The identity is not in cooldown and can retry immediately.
		env.mailer.err = nil
		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("retry after delivery failure: %v", err)
		}
	})
}

func TestVerifyCode(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown identity", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: "intruder@x.com", Code: "123456"})
		assertReason(t, err, entity.ReasonUnauthorizedIdentity)
	})

	t.Run("rejects verification without a pending code", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: "123456"})
		assertReason(t, err, entity.ReasonNoPendingCode)
	})

	t.Run("rejects an expired code and consumes it", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}
		code := env.mailer.lastCode(t)

		env.clock.Advance(10 * time.Minute)

		_, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code})
		assertReason(t, err, entity.ReasonCodeExpired)

		_, err = env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code})
		assertReason(t, err, entity.ReasonNoPendingCode)
	})

	t.Run("counts down attempts and burns the code on the third miss", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}
		code := env.mailer.lastCode(t)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}

		_, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: wrong})
		assertReason(t, err, entity.ReasonCodeMismatch)
		if got := errField(t, err, "remaining_attempts"); got != "2" {
			t.Fatalf("expected 2 remaining attempts, got %q", got)
		}

		_, err = env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: wrong})
		assertReason(t, err, entity.ReasonCodeMismatch)
		if got := errField(t, err, "remaining_attempts"); got != "1" {
			t.Fatalf("expected 1 remaining attempt, got %q", got)
		}

		_, err = env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: wrong})
		assertReason(t, err, entity.ReasonMaxAttemptsExceeded)

		// Burning removes the challenge, so even the correct code no longer matches anything.
		_, err = env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code})
		assertReason(t, err, entity.ReasonNoPendingCode)

		// A burned challenge does not hold the identity in cooldown.
		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code after burn: %v", err)
		}
		if _, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: env.mailer.lastCode(t)}); err != nil {
			t.Fatalf("verify fresh code after burn: %v", err)
		}
	})

	t.Run("issues a session token and consumes the code", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}
		code := env.mailer.lastCode(t)

		out, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code})
		if err != nil {
			t.Fatalf("verify code: %v", err)
		}
		if out.Token == "" {
			t.Fatal("expected a session token")
		}

		sess, err := env.uc.VerifySession(ctx, VerifySessionInput{Token: out.Token})
		if err != nil {
			t.Fatalf("verify session: %v", err)
		}
		if sess.Session.Identity != testAdmin {
			t.Fatalf("expected session identity %s, got %s", testAdmin, sess.Session.Identity)
		}
		if sess.Session.Role != entity.RoleAdmin {
			t.Fatalf("expected role admin, got %s", sess.Session.Role)
		}

		// Single use: the consumed code cannot be replayed.
		_, err = env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code})
		assertReason(t, err, entity.ReasonNoPendingCode)
	})

	t.Run("grants at most one session to concurrent submissions", func(t *testing.T) {
		env := newTestEnv(t)

		if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
			t.Fatalf("request code: %v", err)
		}
		code := env.mailer.lastCode(t)

		const workers = 8
		var wg sync.WaitGroup
		successes := make(chan string, workers)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if out, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: code}); err == nil {
					successes <- out.Token
				}
			}()
		}

		wg.Wait()
		close(successes)

		count := 0
		for range successes {
			count++
		}
		if count != 1 {
			t.Fatalf("expected exactly one successful verification, got %d", count)
		}
	})
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a tampered token", func(t *testing.T) {
		env := newTestEnv(t)

		token := issueToken(ctx, t, env)

		tampered := token[:len(token)-2] + "xx"
		_, err := env.uc.VerifySession(ctx, VerifySessionInput{Token: tampered})
		assertReason(t, err, entity.ReasonTokenInvalid)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		env := newTestEnv(t)

		token := issueToken(ctx, t, env)

		env.clock.Advance(24*time.Hour + time.Minute)

		_, err := env.uc.VerifySession(ctx, VerifySessionInput{Token: token})
		assertReason(t, err, entity.ReasonTokenExpired)
	})

	t.Run("reports the session expiry", func(t *testing.T) {
		env := newTestEnv(t)

		issued := env.clock.Now()
		token := issueToken(ctx, t, env)

		out, err := env.uc.VerifySession(ctx, VerifySessionInput{Token: token})
		if err != nil {
			t.Fatalf("verify session: %v", err)
		}

		wantExpiry := issued.Add(24 * time.Hour)
		if !out.Session.ExpiresAt.Equal(wantExpiry) {
			t.Fatalf("expected session expiry %v, got %v", wantExpiry, out.Session.ExpiresAt)
		}
	})
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("requires authentication", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Session(ctx)
		assertReason(t, err, entity.ReasonTokenInvalid)
	})

	t.Run("returns the session of the caller", func(t *testing.T) {
		env := newTestEnv(t)

		authCtx := jwt.SetAuth(ctx, jwt.Claims{
			RegisteredClaims: libJWT.RegisteredClaims{Subject: testAdmin},
			Role:             entity.RoleAdmin,
		})

		out, err := env.uc.Session(authCtx)
		if err != nil {
			t.Fatalf("session: %v", err)
		}
		if out.Session.Identity != testAdmin {
			t.Fatalf("expected identity %s, got %s", testAdmin, out.Session.Identity)
		}
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	now := env.clock.Now()
	seed := []entity.OTPChallenge{
		{ID: 1, Identity: "a@x.com", CodeHash: "h1", CreatedAt: now.Add(-20 * time.Minute), ExpiresAt: now.Add(-10 * time.Minute)},
		{ID: 2, Identity: "b@x.com", CodeHash: "h2", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute)},
	}
	for _, chal := range seed {
		if err := env.store.PutChallenge(ctx, chal); err != nil {
			t.Fatalf("put challenge: %v", err)
		}
	}

	deleted, err := env.uc.Cleanup(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted challenge, got %d", deleted)
	}

	if _, err := env.store.GetChallenge(ctx, "b@x.com"); err != nil {
		t.Fatalf("live challenge must survive cleanup: %v", err)
	}
}

func issueToken(ctx context.Context, t *testing.T, env *testEnv) string {
	t.Helper()

	if _, err := env.uc.RequestCode(ctx, RequestCodeInput{Identity: testAdmin}); err != nil {
		t.Fatalf("request code: %v", err)
	}

	out, err := env.uc.VerifyCode(ctx, VerifyCodeInput{Identity: testAdmin, Code: env.mailer.lastCode(t)})
	if err != nil {
		t.Fatalf("verify code: %v", err)
	}

	return out.Token
}
