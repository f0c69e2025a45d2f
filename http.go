package credentials

import (
	"github.com/goliatone/go-credentials/middleware/jwtware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteGuard wires token validation into HTTP routes.
type RouteGuard struct {
	cfg          Config
	tokens       TokenService
	validator    TokenValidator
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

// NewRouteGuard builds a guard around the given token service. Fallback
// validators, when provided, are consulted in order after the primary
// service rejects a token as malformed, which keeps sessions alive across
// a signing key rotation.
func NewRouteGuard(tokens TokenService, cfg Config, fallbacks ...TokenValidator) (*RouteGuard, error) {
	if tokens == nil {
		return nil, goerrors.New("route guard requires a token service", goerrors.CategoryBadInput)
	}

	validators := append([]TokenValidator{TokenValidatorFunc(tokens.Validate)}, fallbacks...)

	g := &RouteGuard{
		cfg:       cfg,
		tokens:    tokens,
		validator: NewMultiTokenValidator(validators...),
		Logger:    defLogger{},
	}

	g.ErrorHandler = g.defaultErrHandler

	return g, nil
}

// ProtectedRoute returns middleware that rejects requests without a valid
// identity token. Validated claims are stored under the configured
// context key.
func (g *RouteGuard) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		TokenValidator: validatorBridge{validator: g.validator},
	})
}

// MakeRouteAuthErrorHandler maps token validation failures to the typed
// error taxonomy before rendering. When optional is true the request
// proceeds unauthenticated.
func (g *RouteGuard) MakeRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *goerrors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "Invalid authentication token").
				WithCode(goerrors.CodeUnauthorized)
		}

		if optional {
			g.Logger.Info("Optional auth failed, proceeding: %s", richErr.Message)
			return ctx.Next()
		}

		return g.ErrorHandler(ctx, richErr)
	}
}

// ClaimsFromContext retrieves the validated claims a ProtectedRoute stored
// for this request.
func ClaimsFromContext(ctx router.Context, contextKey string) (AuthClaims, bool) {
	raw := ctx.Locals(contextKey)
	if raw == nil {
		return nil, false
	}

	if claims, ok := raw.(AuthClaims); ok {
		return claims, true
	}

	if claims, ok := raw.(jwtware.AuthClaims); ok {
		if authClaims, ok := claims.(AuthClaims); ok {
			return authClaims, true
		}
	}

	return nil, false
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	return RenderError(c, err, g.Logger)
}

// RenderError writes a rich error as a JSON response, mapping its code to
// the HTTP status.
func RenderError(c router.Context, err error, logger Logger) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	if logger != nil {
		logger.Info(
			"request error: %s category=%s details=%s",
			richErr.Message,
			richErr.Category,
			print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	body := map[string]any{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}
	if len(richErr.Metadata) > 0 {
		body["meta"] = richErr.Metadata
	}

	return c.JSON(status, body)
}

// validatorBridge adapts a TokenValidator to the middleware's validator
// interface.
type validatorBridge struct {
	validator TokenValidator
}

func (v validatorBridge) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
