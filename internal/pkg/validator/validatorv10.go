package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/strcase"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// customRules are regex-backed tags beyond validator's built-ins. The
// password bounds follow NIST 800-63B; the upper one is bcrypt's input cap.
var customRules = []struct {
	tag     string
	pattern *regexp.Regexp
	message string
}{
	{"password", regexp.MustCompile(`^.{8,72}$`), "{0} must be 8-72 characters"},
	{"alphaspace", regexp.MustCompile(`^[a-zA-Z ]+$`), "{0} can contain only letters and spaces"},
	{"phone", regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`), "{0} must be a valid phone number"},
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps snake_case field names to translated messages.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a validator with English translations and the
// custom rules registered.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, rule := range customRules {
		if err := registerRule(validate, trans, rule.tag, rule.pattern, rule.message); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

// Validate validates a struct, returning a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func registerRule(validate *validator.Validate, trans ut.Translator, tag string, pattern *regexp.Regexp, message string) error {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && pattern.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(tag, trans,
		func(u ut.Translator) error {
			return u.Add(tag, message, false)
		},
		func(u ut.Translator, fe validator.FieldError) string {
			t, err := u.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}
