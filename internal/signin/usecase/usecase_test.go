package usecase

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/config"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goroutine"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/hash"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/jwt"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/otp"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/ratelimit"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/validator"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type stubDB struct {
	accounts map[string]*entity.Account
	err      error
}

func (s *stubDB) GetAccountByIdentity(_ context.Context, identity string, _ entity.Channel) (*entity.Account, error) {
	if s.err != nil {
		return nil, s.err
	}

	account, ok := s.accounts[identity]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return account, nil
}

type stubSender struct {
	mu    sync.Mutex
	codes []string
	fail  error
}

func (s *stubSender) Send(_ context.Context, _, code string, _ entity.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return s.fail
}

func (s *stubSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.codes...)
}

func (s *stubSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

type stubMessaging struct {
	mu       sync.Mutex
	issued   []OTPIssuedEvent
	redeemed []OTPRedeemedEvent
}

func (s *stubMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = append(s.issued, msg)
	return nil
}

func (s *stubMessaging) PublishOTPRedeemed(_ context.Context, msg OTPRedeemedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redeemed = append(s.redeemed, msg)
	return nil
}

type stubNumberID struct{}

func (stubNumberID) Generate() int64 { return 42 }

type stubStringID struct{}

func (stubStringID) Generate() string { return "b6e7f9a0-0000-7000-8000-000000000000" }

type cfgStub struct {
	config.Config
}

func (cfgStub) GetMinute(string) time.Duration { return 5 * time.Minute }

type fixture struct {
	uc     *Usecase
	clk    *fakeClock
	db     *stubDB
	sender *stubSender
	msg    *stubMessaging
	mgr    *goroutine.Manager
	jwt    jwt.JWT
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()

	clk := &fakeClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	store := kvstore.NewMemory(clk)

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:     bytes.Repeat([]byte("s"), 64),
		Issuer:     "signin",
		Audiences:  []string{"signin"},
		TTLMinutes: 30 * time.Minute,
		Clock:      clk,
		UUID:       stubStringID{},
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	db := &stubDB{accounts: map[string]*entity.Account{
		"a@b.com": {ID: 1, Email: "a@b.com", Role: entity.AccountRoleLandlord, Status: entity.AccountStatusActive},
		"+18095551234": {
			ID: 2, Phone: "+18095551234", Role: entity.AccountRoleTenant, Status: entity.AccountStatusActive,
		},
		"off@b.com": {ID: 3, Email: "off@b.com", Role: entity.AccountRoleTenant, Status: entity.AccountStatusDisabled},
	}}
	sender := &stubSender{}
	msg := &stubMessaging{}
	mgr := goroutine.NewManager(64)

	uc := New(Dependency{
		RepoDB:          db,
		RepoCache:       cache.NewCache(store, hash.NewHMACSHA256("test-key"), instrument.NewNoop()),
		RepoMessaging:   msg,
		Sender:          sender,
		Validator:       v10,
		Config:          cfgStub{},
		CodeGen:         otp.NewRandomCode(12),
		IdentityLimiter: ratelimit.NewFixedWindow(store, "signin:rl:identity:", limit, 15*time.Minute),
		SourceLimiter:   ratelimit.NewFixedWindow(store, "signin:rl:ip:", limit, 15*time.Minute),
		UID:             stubNumberID{},
		Clock:           clk,
		JWT:             signer,
		Instrument:      instrument.NewNoop(),
		Goroutine:       mgr,
	})

	return &fixture{uc: uc, clk: clk, db: db, sender: sender, msg: msg, mgr: mgr, jwt: signer}
}

func (f *fixture) issue(t *testing.T, identity, channel string) string {
	t.Helper()

	if err := f.uc.OTPIssue(context.Background(), OTPIssueInput{Identity: identity, Channel: channel}); err != nil {
		t.Fatalf("OTPIssue(%q, %q) error = %v", identity, channel, err)
	}

	code := f.sender.last()
	if code == "" {
		t.Fatalf("OTPIssue(%q, %q) delivered no code", identity, channel)
	}

	return code
}
