package signin

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/clock"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/config"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goroutine"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/hash"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/jwt"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/mail"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/messaging"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/otp"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/ratelimit"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/router"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/uid"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/validator"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/inbound"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/cache"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/db"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/delivery"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/outbound/mq"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheStore kvstore.Store              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	CodeGen    otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbSignin := db.NewDB(dep.DBConn, dep.Instrument)
	repoCache := cache.NewCache(dep.CacheStore, dep.HMAC, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	ttlMinutes := dep.Config.GetInt("modules.signin.otp_ttl_minutes")
	sender := delivery.NewDispatcher(
		delivery.NewEmail(dep.Mail, dep.Config.GetString("modules.signin.email_from"), ttlMinutes, dep.Instrument),
		delivery.NewWhatsApp(delivery.WhatsAppConfig{
			BaseURL:    dep.Config.GetString("modules.signin.whatsapp.base_url"),
			Token:      dep.Config.GetString("modules.signin.whatsapp.token"),
			Timeout:    dep.Config.GetSecond("modules.signin.whatsapp.timeout_seconds"),
			MaxRetries: dep.Config.GetUint64("modules.signin.whatsapp.max_retries"),
		}, ttlMinutes, dep.Instrument),
	)

	issueLimit := dep.Config.GetInt64("modules.signin.issue_limit")
	issueWindow := dep.Config.GetMinute("modules.signin.issue_window_minutes")

	uc := usecase.New(usecase.Dependency{
		RepoDB:          dbSignin,
		RepoCache:       repoCache,
		RepoMessaging:   repoMsg,
		Sender:          sender,
		Validator:       dep.Validator,
		Config:          dep.Config,
		CodeGen:         dep.CodeGen,
		IdentityLimiter: ratelimit.NewFixedWindow(dep.CacheStore, "signin:rl:identity:", issueLimit, issueWindow),
		SourceLimiter:   ratelimit.NewFixedWindow(dep.CacheStore, "signin:rl:ip:", issueLimit, issueWindow),
		UID:             dep.UID,
		Clock:           dep.Clock,
		JWT:             dep.JWT,
		Instrument:      dep.Instrument,
		Goroutine:       dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
