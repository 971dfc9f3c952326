package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/messaging"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/shared/event"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/usecase"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.ins.Tracer("signin.outbound.mq").Start(ctx, "PublishOTPIssued")
	defer span.End()

	body, err := json.Marshal(event.OTPIssuedMessage{
		EventID:   msg.EventID,
		Identity:  msg.Identity,
		Channel:   msg.Channel,
		ExpiresAt: msg.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.OTPIssuedDestination, body)
}

func (m *Messaging) PublishOTPRedeemed(ctx context.Context, msg usecase.OTPRedeemedEvent) error {
	ctx, span := m.ins.Tracer("signin.outbound.mq").Start(ctx, "PublishOTPRedeemed")
	defer span.End()

	body, err := json.Marshal(event.OTPRedeemedMessage{
		EventID:  msg.EventID,
		Identity: msg.Identity,
		Channel:  msg.Channel,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return m.publish(ctx, event.OTPRedeemedDestination, body)
}

func (m *Messaging) publish(ctx context.Context, destination string, body []byte) error {
	ctx, span := m.ins.Tracer("signin.outbound.mq").Start(ctx, "publish")
	defer span.End()

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
