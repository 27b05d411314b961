package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes are relative to the mount point
type AuthControllerRoutes struct {
	Signup      string
	Signin      string
	Signout     string
	CurrentUser string
	List        string
}

// AuthController implements the credential flows
type AuthController struct {
	Debug      bool
	ContextKey string
	Logger     Logger
	Accounts Accounts
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Carrier  *SessionCarrier
	Metrics  *Metrics
	Routes   *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Logger = resolveLogger(l)
		return a
	}
}

func WithControllerMetrics(m *Metrics) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Metrics = m
		return a
	}
}

// WithControllerContextKey must match the key CurrentUserMiddleware stores claims under
func WithControllerContextKey(key string) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if key != "" {
			a.ContextKey = key
		}
		return a
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Debug = debug
		return a
	}
}

func NewAuthController(accounts Accounts, hasher PasswordHasher, tokens TokenIssuer, carrier *SessionCarrier, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: DefaultContextKey,
		Accounts:   accounts,
		Hasher:   hasher,
		Tokens:   tokens,
		Carrier:  carrier,
		Routes: &AuthControllerRoutes{
			Signup:      "/signup",
			Signin:      "/signin",
			Signout:     "/signout",
			CurrentUser: "/currentuser",
			List:        "/",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts store in auth controller...")
	}

	if c.Hasher == nil {
		panic("Missing PasswordHasher in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenIssuer in auth controller...")
	}

	if c.Carrier == nil {
		panic("Missing SessionCarrier in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the flows on r
func RegisterAuthRoutes[T any](r router.Router[T], controller *AuthController) {
	r.Post(controller.Routes.Signup, controller.Signup).SetName("users.signup")
	r.Post(controller.Routes.Signin, controller.Signin).SetName("users.signin")
	r.Post(controller.Routes.Signout, controller.Signout).SetName("users.signout")
	r.Get(controller.Routes.CurrentUser, controller.CurrentUser).SetName("users.currentuser")
	r.Get(controller.Routes.List, controller.ListUsers, RequireAuth(controller.ContextKey)).SetName("users.list")
}

// Signup creates an account and starts a session for it
func (a *AuthController) Signup(c router.Context) error {
	payload := new(SignupRequest)
	if err := bindBody(c, payload); err != nil {
		a.Metrics.ObserveFlow(FlowSignup, OutcomeInvalid)
		return err
	}

	if err := payload.Validate(); err != nil {
		a.Metrics.ObserveFlow(FlowSignup, OutcomeInvalid)
		return err
	}

	a.debug("signup", payload.Email)

	account, err := a.Accounts.Create(c.Context(), payload.Email, payload.Password)
	if err != nil {
		if IsDuplicateAccount(err) {
			a.Logger.Info("signup rejected, email in use", "email", payload.Email)
			a.Metrics.ObserveFlow(FlowSignup, OutcomeRejected)
			return NewBadRequestError(MessageSignupRejected)
		}
		a.Metrics.ObserveFlow(FlowSignup, OutcomeError)
		return err
	}

	if err := a.startSession(c, account); err != nil {
		a.Metrics.ObserveFlow(FlowSignup, OutcomeError)
		return err
	}

	a.Metrics.ObserveFlow(FlowSignup, OutcomeSuccess)
	return c.JSON(fiber.StatusCreated, account.Public())
}

// Signin checks credentials and starts a session. Unknown email and
// wrong password produce the same response.
func (a *AuthController) Signin(c router.Context) error {
	payload := new(SigninRequest)
	if err := bindBody(c, payload); err != nil {
		a.Metrics.ObserveFlow(FlowSignin, OutcomeInvalid)
		return err
	}

	if err := payload.Validate(); err != nil {
		a.Metrics.ObserveFlow(FlowSignin, OutcomeInvalid)
		return err
	}

	a.debug("signin", payload.Email)

	account, err := a.Accounts.FindByEmail(c.Context(), payload.Email, IncludeSecret())
	if err != nil {
		if IsAccountNotFound(err) {
			a.Metrics.ObserveFlow(FlowSignin, OutcomeRejected)
			return NewInvalidCredentialsError()
		}
		a.Metrics.ObserveFlow(FlowSignin, OutcomeError)
		return err
	}

	if !a.Hasher.Verify(account.PasswordHash, payload.Password) {
		a.Metrics.ObserveFlow(FlowSignin, OutcomeRejected)
		return NewInvalidCredentialsError()
	}

	if err := a.startSession(c, account); err != nil {
		a.Metrics.ObserveFlow(FlowSignin, OutcomeError)
		return err
	}

	a.Metrics.ObserveFlow(FlowSignin, OutcomeSuccess)
	return c.JSON(fiber.StatusOK, account.Public())
}

// Signout overwrites the session cookie, whether or not one was sent
func (a *AuthController) Signout(c router.Context) error {
	a.Carrier.Set(c, a.Carrier.Clear())
	a.Metrics.ObserveFlow(FlowSignout, OutcomeSuccess)
	return c.Status(fiber.StatusOK).SendString("")
}

// CurrentUserResponse carries a null currentUser for anonymous requests
type CurrentUserResponse struct {
	CurrentUser *CurrentUser `json:"currentUser"`
}

// CurrentUser reports the identity attached by CurrentUserMiddleware
func (a *AuthController) CurrentUser(c router.Context) error {
	user, _ := CurrentUserFromRouter(c, a.ContextKey)
	return c.JSON(fiber.StatusOK, CurrentUserResponse{CurrentUser: user})
}

// ListUsersResponse holds public projections only
type ListUsersResponse struct {
	Users []PublicAccount `json:"users"`
}

// ListUsers returns every account, it sits behind RequireAuth
func (a *AuthController) ListUsers(c router.Context) error {
	records, err := a.Accounts.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.StatusOK, ListUsersResponse{Users: PublicAccounts(records)})
}

func (a *AuthController) startSession(c router.Context, account *Account) error {
	token, err := a.Tokens.Issue(account.ID.String(), account.Email)
	if err != nil {
		return err
	}

	cookie, err := a.Carrier.Encode(token)
	if err != nil {
		return err
	}

	a.Carrier.Set(c, cookie)
	return nil
}

func (a *AuthController) debug(flow, email string) {
	if !a.Debug {
		return
	}
	a.Logger.Debug("credential flow", "flow", flow, "payload", print.MaybePrettyJSON(map[string]any{
		"email": email,
	}))
}

// bindBody parses JSON or form bodies, an empty body leaves payload zero valued
func bindBody(c router.Context, payload any) error {
	if strings.TrimSpace(c.GetString("Content-Length", "")) == "0" ||
		strings.TrimSpace(c.GetString("Content-Type", "")) == "" {
		return nil
	}
	if err := c.Bind(payload); err != nil {
		return NewBadRequestError(MessageInvalidBody)
	}
	return nil
}
