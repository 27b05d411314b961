package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

const validationMetadataKey = "fields"

const (
	MessageEmailRequired    = "Email is required"
	MessageEmailInvalid     = "Email must be valid"
	MessagePasswordRequired = "You must supply a password"
	MessagePasswordLength   = "Password must be between 4 and 20 characters"
)

// FieldError is a single failed check
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationErrors keeps failures in the order rules were declared
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Fields returns the names of the failed fields, in order, without repeats
func (v ValidationErrors) Fields() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(v))
	for _, fe := range v {
		if seen[fe.Field] {
			continue
		}
		seen[fe.Field] = true
		out = append(out, fe.Field)
	}
	return out
}

// FieldRule binds one ozzo rule to a payload field
type FieldRule struct {
	Field   string
	Value   func() any
	Rule    validation.Rule
	Message string
	// Secret keeps the rejected value out of the report
	Secret bool
}

// RunRules evaluates every rule, it never stops at the first failure
func RunRules(rules ...FieldRule) ValidationErrors {
	var out ValidationErrors
	for _, r := range rules {
		value := r.Value()
		if err := r.Rule.Validate(value); err != nil {
			msg := r.Message
			if msg == "" {
				msg = err.Error()
			}
			fe := FieldError{Field: r.Field, Message: msg}
			if !r.Secret {
				fe.Value = value
			}
			out = append(out, fe)
		}
	}
	return out
}

// ValidationErrorsFrom extracts field failures from a RequestValidationError
func ValidationErrorsFrom(err error) (ValidationErrors, bool) {
	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return nil, false
	}
	fields, ok := richErr.Metadata[validationMetadataKey].(ValidationErrors)
	return fields, ok && len(fields) > 0
}

// CredentialsPayload is the signup and signin body
type CredentialsPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Normalize applies the sanitizers that run ahead of validation
func (p *CredentialsPayload) Normalize() {
	p.Password = strings.TrimSpace(p.Password)
}

func (p *CredentialsPayload) emailRules() []FieldRule {
	email := func() any { return p.Email }
	return []FieldRule{
		{Field: "email", Value: email, Rule: validation.Required, Message: MessageEmailRequired},
		{Field: "email", Value: email, Rule: is.Email, Message: MessageEmailInvalid},
	}
}

// SignupRequest is validated with the password length bound
type SignupRequest struct {
	CredentialsPayload
}

// Validate will run validation rules
func (r *SignupRequest) Validate() error {
	r.Normalize()
	password := func() any { return r.Password }
	rules := append(r.emailRules(),
		FieldRule{Field: "password", Value: password, Rule: validation.Required, Message: MessagePasswordRequired, Secret: true},
		FieldRule{Field: "password", Value: password, Rule: validation.RuneLength(4, 20), Message: MessagePasswordLength, Secret: true},
	)
	if errs := RunRules(rules...); len(errs) > 0 {
		return NewRequestValidationError(errs)
	}
	return nil
}

// SigninRequest has no length bound on the password
type SigninRequest struct {
	CredentialsPayload
}

// Validate will run validation rules
func (r *SigninRequest) Validate() error {
	r.Normalize()
	password := func() any { return r.Password }
	rules := append(r.emailRules(),
		FieldRule{Field: "password", Value: password, Rule: validation.Required, Message: MessagePasswordRequired, Secret: true},
	)
	if errs := RunRules(rules...); len(errs) > 0 {
		return NewRequestValidationError(errs)
	}
	return nil
}
