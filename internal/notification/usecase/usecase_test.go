package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

type fakeConfig struct {
	config.Config

	strings map[string]string
	int64s  map[string]int64
}

func (c *fakeConfig) GetString(key string) string { return c.strings[key] }

func (c *fakeConfig) GetInt64(key string) int64 { return c.int64s[key] }

func (c *fakeConfig) GetSecond(string) time.Duration { return time.Second }

type fakeEmail struct {
	sent     []mail.Message
	failures int
}

func (f *fakeEmail) Send(_ context.Context, msg mail.Message) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: connection reset")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newFixture(t *testing.T, email *fakeEmail) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	return New(Dependency{
		RepoEmail: email,
		Validator: v,
		Config: &fakeConfig{
			strings: map[string]string{
				"modules.notification.welcome_subject": "Welcome aboard",
				"modules.notification.welcome_body":    "Hello %s, your account is ready.",
			},
			int64s: map[string]int64{
				"modules.notification.send_max_retries": 1,
			},
		},
		Instrument: instrument.NewNoop(),
	})
}

func TestConsumeUserRegistration(t *testing.T) {
	t.Run("SendsWelcomeEmail", func(t *testing.T) {
		// Arrange
		email := &fakeEmail{}
		uc := newFixture(t, email)

		// Act
		err := uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{
			UserID:   7,
			Email:    "jane.roe@example.com",
			FullName: "Jane Roe",
		})

		// Assert
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(email.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(email.sent))
		}
		msg := email.sent[0]
		if len(msg.To) != 1 || msg.To[0] != "jane.roe@example.com" {
			t.Errorf("unexpected recipients %v", msg.To)
		}
		if msg.Subject != "Welcome aboard" {
			t.Errorf("unexpected subject %q", msg.Subject)
		}
		if msg.TextBody != "Hello Jane Roe, your account is ready." {
			t.Errorf("unexpected body %q", msg.TextBody)
		}
	})

	t.Run("RetriesTransientSendFailure", func(t *testing.T) {
		// Arrange
		email := &fakeEmail{failures: 1}
		uc := newFixture(t, email)

		// Act
		err := uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{
			UserID:   7,
			Email:    "jane.roe@example.com",
			FullName: "Jane Roe",
		})

		// Assert
		if err != nil {
			t.Fatalf("expected nil error after retry, got %v", err)
		}
		if len(email.sent) != 1 {
			t.Fatalf("expected 1 email after retry, got %d", len(email.sent))
		}
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		// Arrange
		email := &fakeEmail{failures: 5}
		uc := newFixture(t, email)

		// Act
		err := uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{
			UserID:   7,
			Email:    "jane.roe@example.com",
			FullName: "Jane Roe",
		})

		// Assert
		if err == nil {
			t.Fatal("expected error once retries are exhausted")
		}
		if len(email.sent) != 0 {
			t.Fatalf("expected no email, got %d", len(email.sent))
		}
	})

	t.Run("DropsMalformedPayload", func(t *testing.T) {
		// Arrange
		email := &fakeEmail{}
		uc := newFixture(t, email)

		// Act
		err := uc.ConsumeUserRegistration(context.Background(), ConsumeUserRegistrationInput{
			UserID: 7,
			Email:  "not-an-address",
		})

		// Assert
		if err != nil {
			t.Fatalf("malformed payload must not requeue, got %v", err)
		}
		if len(email.sent) != 0 {
			t.Fatalf("expected no email, got %d", len(email.sent))
		}
	})
}
