package validator

// Validator validates annotated structs.
type Validator interface {
	// Validate checks data against its validation tags. It returns a
	// V10ValidationError-compatible error describing each failed field.
	Validate(data any) error
}
