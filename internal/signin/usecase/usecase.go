package usecase

import (
	"context"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/clock"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/config"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goroutine"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/jwt"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/otp"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/ratelimit"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/uid"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/validator"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/delivery"
	"go.opentelemetry.io/otel/trace"
)

type OTPIssuedEvent struct {
	EventID   int64
	Identity  string
	Channel   string
	ExpiresAt time.Time
}

type OTPRedeemedEvent struct {
	EventID  int64
	Identity string
	Channel  string
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPRedeemed(ctx context.Context, msg OTPRedeemedEvent) error
}

type repoDB interface {
	GetAccountByIdentity(ctx context.Context, identity string, channel entity.Channel) (*entity.Account, error)
}

type repoCache interface {
	SaveCode(ctx context.Context, code string, record entity.OTPRecord) error
	TakeCode(ctx context.Context, code string) (*entity.OTPRecord, error)
}

type Usecase struct {
	repoDB          repoDB
	repoCache       repoCache
	repoMessaging   repoMessaging
	sender          delivery.Sender
	validator       validator.Validator
	cfg             config.Config
	codeGen         otp.Generator
	identityLimiter ratelimit.Limiter
	sourceLimiter   ratelimit.Limiter
	uid             uid.NumberID
	clock           clock.Clocker
	jwt             jwt.JWT
	ins             instrument.Instrumentation
	goroutine       *goroutine.Manager
}

type Dependency struct {
	RepoDB          repoDB
	RepoCache       repoCache
	RepoMessaging   repoMessaging
	Sender          delivery.Sender
	Validator       validator.Validator
	Config          config.Config
	CodeGen         otp.Generator
	IdentityLimiter ratelimit.Limiter
	SourceLimiter   ratelimit.Limiter
	UID             uid.NumberID
	Clock           clock.Clocker
	JWT             jwt.JWT
	Instrument      instrument.Instrumentation
	Goroutine       *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:          dep.RepoDB,
		repoCache:       dep.RepoCache,
		repoMessaging:   dep.RepoMessaging,
		sender:          dep.Sender,
		validator:       dep.Validator,
		cfg:             dep.Config,
		codeGen:         dep.CodeGen,
		identityLimiter: dep.IdentityLimiter,
		sourceLimiter:   dep.SourceLimiter,
		uid:             dep.UID,
		clock:           dep.Clock,
		jwt:             dep.JWT,
		ins:             dep.Instrument,
		goroutine:       dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("signin.usecase").Start(ctx, name)
}
