package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultVerificationTTL is the expiry horizon for freshly minted codes
const DefaultVerificationTTL = 15 * time.Minute

const verificationCodeBytes = 32

// VerificationCode is a single use, time bounded code proving control of
// an email address
type VerificationCode struct {
	Value     string
	ExpiresAt time.Time
}

// CodeGenerator produces single use verification codes with an expiry horizon
type CodeGenerator interface {
	Generate() (VerificationCode, error)
}

// RandomCodeGenerator mints high entropy opaque codes from crypto/rand
type RandomCodeGenerator struct {
	ttl time.Duration
	now func() time.Time
}

var _ CodeGenerator = (*RandomCodeGenerator)(nil)

// CodeGeneratorOption customizes code generation
type CodeGeneratorOption func(*RandomCodeGenerator)

// WithCodeTTL overrides the default expiry horizon
func WithCodeTTL(ttl time.Duration) CodeGeneratorOption {
	return func(g *RandomCodeGenerator) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithCodeClock injects a custom clock (useful for tests)
func WithCodeClock(clock func() time.Time) CodeGeneratorOption {
	return func(g *RandomCodeGenerator) {
		if clock != nil {
			g.now = clock
		}
	}
}

// NewCodeGenerator returns the default code generator
func NewCodeGenerator(opts ...CodeGeneratorOption) *RandomCodeGenerator {
	g := &RandomCodeGenerator{
		ttl: DefaultVerificationTTL,
		now: time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Generate mints a fresh code. Codes carry 256 bits of entropy so they are
// never guessable from sequence and collisions are negligible.
func (g *RandomCodeGenerator) Generate() (VerificationCode, error) {
	buf := make([]byte, verificationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return VerificationCode{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes for verification code")
	}

	return VerificationCode{
		Value:     hex.EncodeToString(buf),
		ExpiresAt: g.now().Add(g.ttl),
	}, nil
}

// TTL exposes the configured expiry horizon
func (g *RandomCodeGenerator) TTL() time.Duration {
	return g.ttl
}
