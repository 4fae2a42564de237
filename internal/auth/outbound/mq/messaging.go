package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/messaging"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserRegistration(ctx context.Context, msg usecase.UserRegistrationEvent) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, "PublishUserRegistration")
	defer span.End()

	body, err := json.Marshal(event.UserRegistrationMessage{
		UserID:   msg.UserID,
		Email:    msg.Email,
		FullName: msg.FullName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.UserRegistrationDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
