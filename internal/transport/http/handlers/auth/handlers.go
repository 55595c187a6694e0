package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

const MsgSignedOut = "You have been signed out"

type Handler struct {
	Service  *auth.Service
	Sessions *middleware.Sessions
	Views    *views.Renderer
	Log      *logrus.Logger
}

func NewHandler(service *auth.Service, sessions *middleware.Sessions, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Service: service, Sessions: sessions, Views: v, Log: log}
}

// RegisterRoutes mounts the public sign-in pages. Logout needs a session and
// is mounted separately.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/forgot-password", h.handleForgotPage)
	r.Post("/forgot-password", h.handleForgot)
}

func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
}

type loginData struct {
	Form auth.LoginForm
	Next string
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if _, ok := middleware.GetSession(r.Context()); ok {
		http.Redirect(w, r, middleware.LocalPath(next), http.StatusSeeOther)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "login", views.Page{Title: "Sign in", Data: loginData{Next: next}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form auth.LoginForm
	err := shared.DecodeForm(r, &form)
	next := r.PostFormValue("next")
	var session auth.Session
	var cookie string
	if err == nil {
		session, cookie, err = h.Service.Login(r.Context(), form)
	}
	if err != nil {
		form.Password = ""
		page := views.Page{Title: "Sign in", Data: loginData{Form: form, Next: next}}
		status := http.StatusUnauthorized
		if _, ok := validation.As(err); ok {
			page = page.WithForm(err, "")
			status = http.StatusUnprocessableEntity
		} else {
			page.Error = auth.LoginMessage(err)
			var be *backend.Error
			if !errors.As(err, &be) || be.Status >= 500 {
				status = http.StatusServiceUnavailable
			}
			h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Info("sign in failed")
		}
		h.Views.Render(w, r, status, "login", page)
		return
	}

	h.Sessions.Set(w, cookie, session.ExpiresAt)
	h.Log.WithFields(logrus.Fields{
		"requestId": middleware.GetRequestID(r),
		"userId":    session.UserID,
		"role":      session.Role,
	}).Info("signed in")
	h.Views.Redirect(w, r, middleware.LocalPath(next), flash.KindSuccess, "Welcome back, "+session.FullName)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	h.Views.Redirect(w, r, "/login", flash.KindInfo, MsgSignedOut)
}

func (h *Handler) handleForgotPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "forgot_password", views.Page{Title: "Reset password", Data: auth.ForgotPasswordForm{}})
}

func (h *Handler) handleForgot(w http.ResponseWriter, r *http.Request) {
	var form auth.ForgotPasswordForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.ForgotPassword(r.Context(), form)
	}
	if err != nil {
		status := http.StatusUnprocessableEntity
		if _, ok := validation.As(err); !ok {
			status = http.StatusBadGateway
			h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("forgot password failed")
		}
		page := views.Page{Title: "Reset password", Data: form}.WithForm(err, auth.MsgForgotPasswordError)
		h.Views.Render(w, r, status, "forgot_password", page)
		return
	}
	h.Views.Redirect(w, r, "/login", flash.KindInfo, msg)
}
