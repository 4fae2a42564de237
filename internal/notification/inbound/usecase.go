package inbound

import (
	"context"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/notification/usecase"
)

type uc interface {
	ConsumeUserRegistration(ctx context.Context, in usecase.ConsumeUserRegistrationInput) error
}
