// Package validator wraps struct validation behind the Validator interface.
// The concrete implementation is go-playground/validator v10 with English
// translations and a few domain-specific rules.
package validator
