package requesthandler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/attachment"
	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/request"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

const attachmentsField = "attachments"

type Handler struct {
	Service *request.Service
	Views   *views.Renderer
	Log     *logrus.Logger
	Now     func() time.Time
}

func NewHandler(service *request.Service, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Service: service, Views: v, Log: log, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	approver := middleware.RequireCapability(auth.CapApproveRequests, h.Views.Forbidden())
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/new", h.handleNewPage)
		r.Post("/new", h.handleCreate)
		r.Post("/{requestID}/cancel", h.handleCancel)
		r.With(approver).Post("/{requestID}/approve", h.handleApprove)
		r.With(approver).Get("/{requestID}/reject", h.handleRejectPage)
		r.With(approver).Post("/{requestID}/reject", h.handleReject)
	})
}

type listQuery struct {
	Page   int    `form:"page"`
	Scope  string `form:"scope"`
	Status string `form:"status"`
	Type   string `form:"type"`
}

type row struct {
	request.Request
	Actions []request.Action
}

type listData struct {
	Query     listQuery
	Scope     request.Scope
	CanReview bool
	Stats     request.Stats
	StatsErr  string
	Rows      []row
	Pager     shared.Pager
	Statuses  []request.Status
	Types     []request.Type
	Return    string
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := shared.DecodeQuery(r, &q); err != nil {
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Info("malformed request filter ignored")
	}
	session, _ := middleware.GetSession(r.Context())

	data := listData{
		Query:     q,
		Scope:     request.ParseScope(q.Scope),
		CanReview: session.Role.Can(auth.CapApproveRequests),
		Statuses:  request.Statuses(),
		Types:     request.Types(),
		Return:    r.URL.RequestURI(),
	}
	if !data.CanReview {
		data.Scope = request.ScopeMine
	}
	params := request.ListParams{Page: q.Page, Limit: request.DefaultLimit, Scope: data.Scope}
	if s, err := request.ParseStatus(q.Status); err == nil {
		params.Status = s
	}
	if t, err := request.ParseType(q.Type); err == nil {
		params.Type = t
	}

	page := views.Page{Title: "Requests", Active: "requests"}
	stats, err := h.Service.Stats(r.Context(), data.Scope)
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		data.StatsErr = backend.MessageOr(err, request.MsgListFailed)
	}
	data.Stats = stats

	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("request list failed")
		page.LoadError = backend.MessageOr(err, request.MsgListFailed)
		page.Data = data
		h.Views.Render(w, r, http.StatusOK, "requests", page)
		return
	}
	result = result.Normalize()
	meta := shared.MetaFrom(result.Pagination)
	data.Pager = shared.NewPager(meta, "/requests", r.URL.Query())
	if q.Page > meta.TotalPages && meta.TotalPages > 0 {
		http.Redirect(w, r, data.Pager.Href(meta.TotalPages), http.StatusSeeOther)
		return
	}
	for _, req := range result.Data {
		data.Rows = append(data.Rows, row{Request: req, Actions: req.ActionsFor(data.Scope)})
	}
	page.Data = data
	h.Views.Render(w, r, http.StatusOK, "requests", page)
}

type newData struct {
	Form     request.TimeOffForm
	Types    []request.Type
	Today    string
	MaxFiles int
}

func (h *Handler) newPage(form request.TimeOffForm) views.Page {
	return views.Page{Title: "Request time off", Active: "requests", Data: newData{
		Form:     form,
		Types:    request.TimeOffTypes(),
		Today:    h.Now().Format(validation.DateLayout),
		MaxFiles: attachment.MaxFiles,
	}}
}

func (h *Handler) handleNewPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "request_new", h.newPage(request.TimeOffForm{}))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form request.TimeOffForm
	err := shared.DecodeForm(r, &form)
	var files attachment.List
	if err == nil && r.MultipartForm != nil {
		if files, err = attachment.FromMultipart(r.MultipartForm.File[attachmentsField]); err != nil {
			err = validation.FieldError(attachmentsField, err.Error())
		}
	}
	var msg string
	if err == nil {
		_, msg, err = h.Service.SubmitTimeOff(r.Context(), form, files)
	}
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		status := http.StatusUnprocessableEntity
		if _, ok := validation.As(err); !ok {
			status = http.StatusBadGateway
			h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("time off submission failed")
		}
		h.Views.Render(w, r, status, "request_new", h.newPage(form).WithForm(err, request.MsgSubmitFailed))
		return
	}
	h.Views.Redirect(w, r, "/requests", flash.KindSuccess, msg)
}

func returnTo(r *http.Request, fallback string) string {
	if to := middleware.LocalPath(r.PostFormValue("return")); to != "/" {
		return to
	}
	return fallback
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fallbackTo, failed string, run func(id string) (string, error)) {
	to := returnTo(r, fallbackTo)
	msg, err := run(chi.URLParam(r, "requestID"))
	if err != nil {
		h.Views.Fail(w, r, to, err, failed)
		return
	}
	h.Log.WithFields(logrus.Fields{
		"requestId": middleware.GetRequestID(r),
		"target":    chi.URLParam(r, "requestID"),
	}).Info(msg)
	h.Views.Redirect(w, r, to, flash.KindSuccess, msg)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/requests?scope=team", request.MsgApproveFailed, func(id string) (string, error) {
		return h.Service.Approve(r.Context(), id)
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/requests", request.MsgCancelFailed, func(id string) (string, error) {
		return h.Service.Cancel(r.Context(), id)
	})
}

type rejectData struct {
	ID      string
	Form    request.RejectForm
	Enabled bool
	Return  string
	Max     int
}

func (h *Handler) rejectPage(id string, form request.RejectForm, ret string) views.Page {
	return views.Page{Title: "Reject request", Active: "requests", Data: rejectData{
		ID:      id,
		Form:    form,
		Enabled: form.ConfirmEnabled(),
		Return:  ret,
		Max:     request.MaxReasonLength,
	}}
}

func (h *Handler) handleRejectPage(w http.ResponseWriter, r *http.Request) {
	ret := middleware.LocalPath(r.URL.Query().Get("return"))
	if ret == "/" {
		ret = "/requests?" + url.Values{"scope": {string(request.ScopeTeam)}}.Encode()
	}
	h.Views.Render(w, r, http.StatusOK, "request_reject", h.rejectPage(chi.URLParam(r, "requestID"), request.RejectForm{}, ret))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	var form request.RejectForm
	err := shared.DecodeForm(r, &form)
	to := returnTo(r, "/requests?scope=team")
	var msg string
	if err == nil {
		msg, err = h.Service.Reject(r.Context(), id, form)
	}
	if err != nil {
		if _, ok := validation.As(err); ok {
			h.Views.Render(w, r, http.StatusUnprocessableEntity, "request_reject", h.rejectPage(id, form, to).WithForm(err, request.MsgRejectFailed))
			return
		}
		h.Views.Fail(w, r, to, err, request.MsgRejectFailed)
		return
	}
	h.Views.Redirect(w, r, to, flash.KindSuccess, msg)
}
