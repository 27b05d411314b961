package auth

import (
	"github.com/goliatone/go-authsvc/middleware/jwtware"
)

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator = jwtware.TokenValidator

// TokenValidatorFunc adapts a verify function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (*SessionClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	claims, err := f(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewTokenValidator wraps the Verify method of tokens
func NewTokenValidator(tokens TokenIssuer) TokenValidator {
	return TokenValidatorFunc(tokens.Verify)
}

// MultiTokenValidator tries validators in order until one succeeds.
// ErrTokenMalformed means "try next", any other error stops the chain.
// It lets sessions signed with a retired key keep working during rotation.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator filters nil validators and returns a composite validator.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	filtered := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return &MultiTokenValidator{validators: filtered}
}

// Validate satisfies the TokenValidator interface.
func (m *MultiTokenValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	var lastErr error
	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if IsMalformedError(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrTokenMalformed
}

// NewSessionValidator accepts tokens from the active service and, verify only,
// from each retired signing key.
func NewSessionValidator(active TokenIssuer, cfg Config, retiredKeys []string, logger Logger) (TokenValidator, error) {
	validators := []TokenValidator{NewTokenValidator(active)}
	for _, key := range retiredKeys {
		if key == "" {
			continue
		}
		retired, err := NewTokenService([]byte(key), 0, cfg.GetIssuer(), cfg.GetAudience(), logger)
		if err != nil {
			return nil, err
		}
		validators = append(validators, NewTokenValidator(retired))
	}
	if len(validators) == 1 {
		return validators[0], nil
	}
	return NewMultiTokenValidator(validators...), nil
}
