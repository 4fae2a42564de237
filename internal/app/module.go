package app

import (
	"log/slog"
	"os"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			DBConn:      a.dbConn,
			Sessions:    a.sessions,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Mail:        a.mail,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			Bcrypt:      a.bcrypt,
			HMAC:        a.hmac,
			OTP:         a.otp,
			Clock:       a.clock,
			Validator:   a.validator,
			JWT:         a.jwt,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.contact.enabled") {
		if err := contact.New(contact.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Storage:    a.storage,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module contact", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
