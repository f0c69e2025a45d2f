package credentials

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RegisterAuthRoutes mounts the credential endpoints on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("signup.post")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("login.post")

	app.Post(controller.Routes.Verify, controller.VerifyPost).
		SetName("verify.post")

	app.Post(controller.Routes.Resend, controller.ResendPost).
		SetName("verify-resend.post")

	app.Get(
		controller.Routes.Profile,
		controller.ProfileGet,
		controller.Guard.ProtectedRoute(
			controller.Config,
			controller.Guard.MakeRouteAuthErrorHandler(false),
		),
	).SetName("profile.get")
}

type AuthControllerRoutes struct {
	Signup  string
	Login   string
	Verify  string
	Resend  string
	Profile string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Lifecycle    CredentialLifecycle
	Tokens       TokenService
	Guard        *RouteGuard
	Config       Config
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:  "/auth/signup",
			Login:   "/auth/login",
			Verify:  "/auth/verify",
			Resend:  "/auth/resend",
			Profile: "/auth/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return RenderError(ctx, err, c.Logger)
		}
	}

	if c.Lifecycle == nil {
		panic("Missing CredentialLifecycle in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Guard == nil || c.Config == nil {
		panic("Missing RouteGuard or Config in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerLifecycle(lifecycle CredentialLifecycle) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Lifecycle = lifecycle
		return c
	}
}

func WithControllerTokens(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerGuard(guard *RouteGuard, cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Guard = guard
		c.Config = cfg
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// SignupRequest payload
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone_number" json:"phone_number"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload: %v", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("==========================")
	}

	var resp *RegisterAccountResponse

	registerAccount := NewRegisterAccountHandler(a.Lifecycle)
	err := registerAccount.Execute(ctx.Context(), RegisterAccountMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
		OnResponse: func(r *RegisterAccountResponse) {
			resp = r
		},
	})
	if err != nil {
		a.Logger.Error("signup error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"id":       resp.AccountID,
		"username": resp.Username,
		"email":    resp.Email,
		"status":   resp.Status,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload: %v", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	account, err := a.Lifecycle.Authenticate(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	token, err := a.Tokens.Generate(account.Identity())
	if err != nil {
		a.Logger.Error("login token error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: a.Tokens.ExpirationSeconds(),
	})
}

// VerifyRequest payload
type VerifyRequest struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"code" json:"code"`
}

// Validate will run validation rules
func (r VerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Code, validation.Required),
	)
}

func (a *AuthController) VerifyPost(ctx router.Context) error {
	payload := new(VerifyRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verify parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("verify validate payload: %v", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	account, err := a.Lifecycle.VerifyAccount(ctx.Context(), payload.Email, payload.Code)
	if err != nil {
		a.Logger.Error("verify error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"id":     account.ID.String(),
		"email":  account.Email,
		"status": account.Status(),
	})
}

// ResendRequest payload
type ResendRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendPost(ctx router.Context) error {
	payload := new(ResendRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("resend parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("resend validate payload: %v", err)
		return a.ErrorHandler(ctx, validationError(err))
	}

	account, err := a.Lifecycle.ResendVerificationCode(ctx.Context(), payload.Email)
	if err != nil {
		a.Logger.Error("resend error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"email":  account.Email,
		"status": account.Status(),
		"sent":   true,
	})
}

func (a *AuthController) ProfileGet(ctx router.Context) error {
	claims, ok := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if !ok {
		return a.ErrorHandler(ctx, ErrTokenMalformed)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"id":       claims.UserID(),
		"username": claims.Username(),
		"email":    claims.Email(),
	})
}

// ValidatePhoneNumber parses the value as an international phone number.
// Empty values pass, the field is optional.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return fmt.Errorf("invalid phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("invalid phone number")
	}

	return nil
}

// FormatValidationErrorToMap flattens ozzo validation errors into a simple
// field to message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	if err != nil {
		out["error"] = err.Error()
	}

	return out
}

func validationError(err error) error {
	fields := FormatValidationErrorToMap(err)

	meta := make(map[string]any, len(fields))
	for k, v := range fields {
		meta[k] = v
	}

	return goerrors.New("invalid request payload", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(meta)
}
