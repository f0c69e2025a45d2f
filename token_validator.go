package credentials

// TokenValidator turns a raw token string into verified claims. The
// TokenService is the usual implementation; anything that can vouch for
// a token, such as an older signing key or an external issuer, can
// stand in.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a bare function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// MultiTokenValidator consults validators in order, which lets a guard
// keep accepting tokens minted under a previous signing key during a
// rotation window. A malformed or bad-signature failure moves on to the
// next validator; any other failure, an expired token for instance, is
// final no matter which key signed it.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator builds a composite validator, skipping nil entries.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	chain := make([]TokenValidator, 0, len(validators))
	for _, candidate := range validators {
		if candidate != nil {
			chain = append(chain, candidate)
		}
	}
	return &MultiTokenValidator{validators: chain}
}

// Validate satisfies the TokenValidator interface.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	var rejected error
	for _, validator := range m.validators {
		claims, err := validator.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if !IsMalformedError(err) {
			return nil, err
		}
		rejected = err
	}
	if rejected != nil {
		return nil, rejected
	}
	return nil, ErrTokenMalformed
}
