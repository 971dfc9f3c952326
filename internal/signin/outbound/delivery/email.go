package delivery

import (
	"context"
	"fmt"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// Email delivers one-time codes over SMTP.
type Email struct {
	client     mail.Mail
	from       string
	ttlMinutes int
	ins        instrument.Instrumentation
}

// NewEmail builds the email channel sender. ttlMinutes is quoted in the
// message body so recipients know how long the code lives.
func NewEmail(client mail.Mail, from string, ttlMinutes int, ins instrument.Instrumentation) *Email {
	return &Email{client: client, from: from, ttlMinutes: ttlMinutes, ins: ins}
}

func (e *Email) Send(ctx context.Context, identity, code string) error {
	ctx, span := e.ins.Tracer("signin.outbound.delivery").Start(ctx, "EmailSend")
	defer span.End()

	msg := mail.Message{
		From:    e.from,
		To:      []string{identity},
		Subject: "Your sign-in code",
		TextBody: fmt.Sprintf(
			"Your one-time sign-in code is %s\n\nIt expires in %d minutes. If you did not request it, ignore this message.",
			code, e.ttlMinutes,
		),
	}

	if err := e.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
