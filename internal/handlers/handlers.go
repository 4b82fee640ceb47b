package handlers

import (
	"context"
	"errors"
	"html/template"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"expense-dashboard/internal/apperr"
	"expense-dashboard/internal/auth"
	"expense-dashboard/internal/expenses"
	"expense-dashboard/internal/models"
	"expense-dashboard/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// DefaultSessionDuration is how long sessions last unless configured (30 days).
	DefaultSessionDuration = 30 * 24 * time.Hour
)

// Options configures Handlers. Zero values fall back to defaults.
type Options struct {
	TemplateDir  string
	SecureCookie bool
	SessionTTL   time.Duration
	Logger       logrus.FieldLogger
	// Now is the clock used for "today" and "this month"; it defaults to UTC wall time.
	Now func() time.Time
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	auth         *auth.Service
	expenses     *expenses.Service
	log          logrus.FieldLogger
	templateDir  string
	secureCookie bool
	sessionTTL   time.Duration
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionDuration
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handlers{
		db:           db,
		auth:         auth.NewService(db, opts.Logger),
		expenses:     expenses.NewService(db, opts.Logger),
		log:          opts.Logger.WithField("component", "handlers"),
		templateDir:  opts.TemplateDir,
		secureCookie: opts.SecureCookie,
		sessionTTL:   opts.SessionTTL,
		now:          opts.Now,
	}
}

// UserFromContext retrieves the authenticated user from request context.
func UserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				h.log.WithError(err).Error("validate session")
			}
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		now := time.Now()
		if sessionInfo.ExpiresAt.Sub(now) < h.sessionTTL/2 {
			newExpiresAt := now.Add(h.sessionTTL)
			if err := h.db.RenewSession(r.Context(), cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			} else {
				h.log.WithError(err).Warn("renew session")
			}
		}

		ctx := context.WithValue(r.Context(), UserContextKey, sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Protect is AuthMiddleware for a HandlerFunc.
func (h *Handlers) Protect(fn http.HandlerFunc) http.Handler {
	return h.AuthMiddleware(fn)
}

// hasSession reports whether the request carries a valid session cookie.
func (h *Handlers) hasSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = h.db.ValidateSession(r.Context(), cookie.Value)
	return err == nil
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	User  *models.User
	Error string
	Email string
}

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	User     *models.User
	Error    string
	Email    string
	Username string
}

const invalidCredentialsMessage = "Invalid email or password"

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", LoginViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	user, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, apperr.ErrAuthFailure) {
			h.log.WithError(err).Error("authenticate")
		}
		h.render(w, r, "login.html", LoginViewModel{Error: invalidCredentialsMessage, Email: email})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.log.WithError(err).Error("generate session token")
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if err := h.db.CreateSession(r.Context(), token, user.Email, time.Now().Add(h.sessionTTL)); err != nil {
		h.log.WithError(err).Error("create session")
		h.render(w, r, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, "register.html", RegisterViewModel{})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "register.html", RegisterViewModel{Error: "Invalid form submission"})
		return
	}

	vm := RegisterViewModel{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
	}
	_, err := h.auth.Register(r.Context(), vm.Email, vm.Username, r.PostFormValue("password"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	case errors.Is(err, apperr.ErrConflict):
		vm.Error = "Email already exists"
	case errors.Is(err, apperr.ErrValidation):
		vm.Error = message(err)
	default:
		h.log.WithError(err).Error("register")
		vm.Error = "An error occurred. Please try again."
	}
	h.render(w, r, "register.html", vm)
}

// Logout clears the session unconditionally.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.log.WithError(err).Warn("delete session")
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Healthz reports whether the database is reachable.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.WithError(err).Error("health check")
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// SecurityHeaders sets the response headers every page carries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// message strips the error kind prefix for display in a form.
func message(err error) string {
	if kind := apperr.Kind(err); kind != nil {
		msg := strings.TrimPrefix(err.Error(), kind.Error()+": ")
		if msg != "" {
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return err.Error()
}

var templateFuncs = template.FuncMap{
	"money": money,
	// amount prints every stored digit, for edit forms
	"amount": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"date": func(e models.Expense) string {
		return e.DateString()
	},
	"categoryColor": func(category string) string {
		return getCategoryStyle(category).Color
	},
}

// money formats v with two decimals. decimal panics on Inf and NaN, which render as 0.00.
func money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, viewName),
	)
	if err != nil {
		h.log.WithError(err).WithField("view", viewName).Error("parse template")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		h.log.WithError(err).WithField("view", viewName).Error("execute template")
	}
}
