package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"expense-dashboard/internal/auth"
	"expense-dashboard/internal/config"
	"expense-dashboard/internal/handlers"
	"expense-dashboard/internal/logging"
	"expense-dashboard/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetLogger(logger)

	if n, err := db.CleanExpiredSessions(ctx, time.Now()); err != nil {
		logger.WithError(err).Warn("clean expired sessions")
	} else if n > 0 {
		logger.Infof("removed %d expired sessions", n)
	}

	if err := seedAdmin(ctx, cfg, db, logger); err != nil {
		return err
	}
	logStoreSize(ctx, db, logger)

	h := handlers.NewHandlers(db, handlers.Options{
		TemplateDir:  cfg.TemplateDir,
		SecureCookie: cfg.SecureCookie,
		SessionTTL:   cfg.SessionTTL,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logging.Middleware(logger)(handlers.SecurityHeaders(setupRouter(h, cfg.StaticDir))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("bye")
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /healthz", h.Healthz)

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.Handle("GET /{$}", h.Protect(h.Dashboard))
	mux.Handle("GET /reports", h.Protect(h.Reports))
	mux.Handle("GET /allexpense", h.Protect(h.AllExpenses))
	mux.Handle("POST /allexpense", h.Protect(h.AllExpenses))
	mux.Handle("GET /addexpense", h.Protect(h.AddExpenseForm))
	mux.Handle("POST /addexpense", h.Protect(h.AddExpense))
	mux.Handle("POST /update_expense/{id}", h.Protect(h.UpdateExpense))
	mux.Handle("GET /delete_expense/{id}", h.Protect(h.DeleteExpense))

	return mux
}

func logStoreSize(ctx context.Context, db *storage.DB, logger logrus.FieldLogger) {
	users, err := db.UserCount(ctx)
	if err != nil {
		logger.WithError(err).Warn("count users")
		return
	}
	expenses, err := db.CountExpenses(ctx)
	if err != nil {
		logger.WithError(err).Warn("count expenses")
		return
	}
	logger.WithFields(logrus.Fields{"users": users, "expenses": expenses}).Info("database ready")
}

// seedAdmin creates the configured account when the database has no users yet.
func seedAdmin(ctx context.Context, cfg config.Config, db *storage.DB, logger *logrus.Logger) error {
	if !cfg.HasAdmin() {
		return nil
	}
	count, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	svc := auth.NewService(db, logger)
	if _, err := svc.Register(ctx, cfg.AdminLogin(), cfg.AdminUser, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Infof("created initial user %s", cfg.AdminLogin())
	return nil
}
