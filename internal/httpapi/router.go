package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"todoserver/internal/auth"
	"todoserver/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth         *service.AuthService
	Verification *service.VerificationService
	Todos        *service.TodoService

	CookieCodec     auth.CookieCodec
	CookieSecure    bool
	SessionTTL      time.Duration
	VerificationTTL time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:          logger,
		isProd:          opts.IsProd,
		dbPing:          opts.DBPing,
		authSvc:         opts.Auth,
		verifySvc:       opts.Verification,
		todoSvc:         opts.Todos,
		cookieCodec:     opts.CookieCodec,
		cookieSecure:    opts.CookieSecure,
		sessionTTL:      opts.SessionTTL,
		verificationTTL: opts.VerificationTTL,
		signinLimiter:   newSigninLimiter(time.Minute, 10),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.authSvc == nil {
		apiMux.HandleFunc("POST /v1/auth/signup", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/auth/signin", handleNotImplemented)
		apiMux.HandleFunc("POST /v1/auth/signout", handleNotImplemented)
		apiMux.HandleFunc("GET /v1/users/me", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/auth/signin", api.handleAuthSignin)
		apiMux.HandleFunc("POST /v1/auth/signout", api.requireAuth(api.handleAuthSignout))
		apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))
		apiMux.HandleFunc("GET /v1/users/availability", api.handleUsersAvailability)
		apiMux.HandleFunc("DELETE /v1/users/me", api.requireAuth(api.handleUsersDeleteMe))

		// Signup dispatches a verification code, so it needs mail to
		// be configured just like the verification endpoints.
		if api.verifySvc != nil {
			apiMux.HandleFunc("POST /v1/auth/signup", api.handleAuthSignup)
			apiMux.HandleFunc("POST /v1/auth/verification", api.handleVerificationSend)
			apiMux.HandleFunc("GET /v1/auth/verification/confirm", api.handleVerificationConfirm)
		} else {
			apiMux.HandleFunc("POST /v1/auth/signup", handleNotImplemented)
		}

		if api.todoSvc != nil {
			apiMux.HandleFunc("POST /v1/todos", api.requireAuth(api.handleTodosCreate))
			apiMux.HandleFunc("GET /v1/todos", api.requireAuth(api.handleTodosList))
			apiMux.HandleFunc("GET /v1/todos/{id}", api.requireAuth(api.handleTodosGet))
			apiMux.HandleFunc("PUT /v1/todos/{id}", api.requireAuth(api.handleTodosUpdate))
			apiMux.HandleFunc("DELETE /v1/todos/{id}", api.requireAuth(api.handleTodosDelete))
		}
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc   *service.AuthService
	verifySvc *service.VerificationService
	todoSvc   *service.TodoService

	cookieCodec     auth.CookieCodec
	cookieSecure    bool
	sessionTTL      time.Duration
	verificationTTL time.Duration

	signinLimiter *signinLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
