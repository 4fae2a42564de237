package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/notification/usecase"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/messaging"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/uid"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/shared/event"
)

const correlationHeader = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

// UserRegistrationNotification handles a registration event by sending the
// welcome email. A body that does not parse is dropped rather than returned
// as an error, since redelivery cannot fix it.
func (h *MQHandler) UserRegistrationNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.withCorrelation(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserRegistrationNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user registration notification", "msg_body", string(body))

	var payload event.UserRegistrationMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "dropping unparseable registration event", "msg_body", string(body), "error", err)
		return nil
	}

	in := usecase.ConsumeUserRegistrationInput{
		UserID:   payload.UserID,
		Email:    payload.Email,
		FullName: payload.FullName,
	}
	if err := h.uc.ConsumeUserRegistration(ctx, in); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registration", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

// withCorrelation carries the publisher's correlation ID across the broker
// hop, minting a fresh one when the message arrived without it.
func (h *MQHandler) withCorrelation(ctx context.Context, headers []messaging.Header) context.Context {
	for _, hd := range headers {
		if hd.Key == correlationHeader {
			return instrument.SetCorrelationID(ctx, string(hd.Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}
