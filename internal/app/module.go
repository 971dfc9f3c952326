package app

import (
	"log/slog"
	"os"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.signin.enabled") {
		if err := signin.New(signin.Dependency{
			DBConn:     a.dbConn,
			CacheStore: a.kv,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			CodeGen:    a.codeGen,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module signin", "error", err)
			os.Exit(1)
		}
	}
}
