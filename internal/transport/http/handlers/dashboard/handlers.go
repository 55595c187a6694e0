package dashboardhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/credits"
	"hrportal/internal/domain/request"
	"hrportal/internal/platform/backend"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/views"
)

const recentLimit = 5

type Handler struct {
	Requests *request.Service
	Credits  *credits.Service
	Views    *views.Renderer
	Log      *logrus.Logger
}

func NewHandler(requests *request.Service, creditsSvc *credits.Service, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Requests: requests, Credits: creditsSvc, Views: v, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleDashboard)
}

// Each panel loads on its own; one failing backend leaves the others intact.
type panel struct {
	Err string
}

type dashboardData struct {
	Stats      request.Stats
	StatsPanel panel
	Team       request.Stats
	TeamPanel  panel
	ShowTeam   bool
	Balance    credits.Balance
	Credits    panel
	Recent     []request.Request
	Requests   panel
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())
	data := dashboardData{ShowTeam: session.Role.Can(auth.CapApproveRequests)}

	var g errgroup.Group
	errs := make([]error, 4)
	load := func(i int, fn func(ctx context.Context) error) {
		g.Go(func() error {
			errs[i] = fn(r.Context())
			return nil
		})
	}
	load(0, func(ctx context.Context) (err error) {
		data.Stats, err = h.Requests.Stats(ctx, request.ScopeMine)
		return err
	})
	if data.ShowTeam {
		load(1, func(ctx context.Context) (err error) {
			data.Team, err = h.Requests.Stats(ctx, request.ScopeTeam)
			return err
		})
	}
	load(2, func(ctx context.Context) (err error) {
		data.Balance, err = h.Credits.Balance(ctx)
		return err
	})
	load(3, func(ctx context.Context) error {
		page, err := h.Requests.List(ctx, request.ListParams{Page: 1, Limit: recentLimit, Scope: request.ScopeMine})
		data.Recent = page.Data
		return err
	})
	_ = g.Wait()

	for _, err := range errs {
		if h.Views.Expired(w, r, err) {
			return
		}
	}
	panels := []*panel{&data.StatsPanel, &data.TeamPanel, &data.Credits, &data.Requests}
	fallbacks := []string{request.MsgListFailed, request.MsgListFailed, credits.MsgLoadFailed, request.MsgListFailed}
	for i, err := range errs {
		if err == nil {
			continue
		}
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("dashboard panel failed")
		panels[i].Err = backend.MessageOr(err, fallbacks[i])
	}
	h.Views.Render(w, r, http.StatusOK, "dashboard", views.Page{Title: "Dashboard", Active: "dashboard", Data: data})
}
