package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"todoserver/internal/auth"
	"todoserver/internal/config"
	"todoserver/internal/email"
	"todoserver/internal/httpapi"
	"todoserver/internal/service"
	"todoserver/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		authSvc   *service.AuthService
		verifySvc *service.VerificationService
		todoSvc   *service.TodoService
		dbPing    func(context.Context) error
	)

	if cfg.SMTPHost != "" {
		mailer, err := email.NewMailer(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			StartTLS: cfg.SMTPStartTLS,
			FromName: cfg.AppName,
			FromAddr: cfg.EmailFrom,
		})
		if err != nil {
			logger.Error("smtp client failed", "err", err)
			os.Exit(1)
		}
		verifySvc = &service.VerificationService{
			Mailer:   mailer,
			AppName:  cfg.AppName,
			LoginURL: cfg.LoginURL(),
			CodeTTL:  cfg.VerificationTTL,
			Logger:   logger,
		}
	} else {
		logger.Info("smtp disabled: signup and verification unavailable")
	}

	if cfg.DBDSN != "" {
		if err := postgres.Migrate(context.Background(), cfg.DBDSN); err != nil {
			logger.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		todos := postgres.NewTodosStore(pgPool)

		authSvc = &service.AuthService{Users: users}
		if verifySvc != nil {
			authSvc.Verification = verifySvc
		}
		todoSvc = &service.TodoService{Todos: todos}
		dbPing = pgPool.Ping
	}

	apiRouter := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:          logger,
		IsProd:          cfg.IsProd(),
		DBPing:          dbPing,
		Auth:            authSvc,
		Verification:    verifySvc,
		Todos:           todoSvc,
		CookieCodec:     auth.NewCookieCodec([]byte(cfg.CookieSecret)),
		CookieSecure:    cfg.CookieSecure(),
		SessionTTL:      cfg.SessionTTL,
		VerificationTTL: cfg.VerificationTTL,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
