package timesheethandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/request"
	"hrportal/internal/domain/timesheet"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

// actionAddRow re-renders the form with one more row and sends nothing.
const actionAddRow = "add-row"

type Handler struct {
	Service *timesheet.Service
	Views   *views.Renderer
	Log     *logrus.Logger
	Now     func() time.Time
}

func NewHandler(service *timesheet.Service, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Service: service, Views: v, Log: log, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/new", h.handleNewPage)
		r.Post("/new", h.handleCreate)
		r.Get("/{timesheetID}", h.handleEditPage)
		r.Post("/{timesheetID}", h.handleUpdate)
	})
}

type listData struct {
	Sheets []timesheet.Timesheet
	Pager  shared.Pager
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	pageNum := shared.QueryInt(r, "page", 1)
	page := views.Page{Title: "Timesheets", Active: "timesheets"}
	result, err := h.Service.List(r.Context(), pageNum, request.DefaultLimit)
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("timesheet list failed")
		page.LoadError = backend.MessageOr(err, timesheet.MsgListFailed)
		page.Data = listData{}
		h.Views.Render(w, r, http.StatusOK, "timesheets", page)
		return
	}
	result = result.Normalize()
	meta := shared.MetaFrom(result.Pagination)
	pager := shared.NewPager(meta, "/timesheets", r.URL.Query())
	if pageNum > meta.TotalPages && meta.TotalPages > 0 {
		http.Redirect(w, r, pager.Href(meta.TotalPages), http.StatusSeeOther)
		return
	}
	page.Data = listData{Sheets: result.Data, Pager: pager}
	h.Views.Render(w, r, http.StatusOK, "timesheets", page)
}

type formData struct {
	ID     string
	Form   timesheet.Form
	Total  float64
	Action string
	Locked bool
	Status request.Status
}

func (h *Handler) formPage(id string, form timesheet.Form) views.Page {
	action := "/timesheets/new"
	title := "New timesheet"
	if id != "" {
		action = "/timesheets/" + id
		title = "Edit timesheet"
	}
	return views.Page{Title: title, Active: "timesheets", Data: formData{ID: id, Form: form, Total: form.TotalHours(), Action: action}}
}

func (h *Handler) handleNewPage(w http.ResponseWriter, r *http.Request) {
	week := timesheet.WeekOf(h.Now())
	if d, err := shared.ParseDate(r.URL.Query().Get("week")); err == nil && !d.IsZero() {
		week = timesheet.WeekOf(d)
	}
	h.Views.Render(w, r, http.StatusOK, "timesheet_form", h.formPage("", timesheet.BlankWeek(week)))
}

// readForm decodes the sheet and reports whether the user only asked for
// another row.
func readForm(r *http.Request) (timesheet.Form, bool, error) {
	var form timesheet.Form
	if err := shared.DecodeForm(r, &form); err != nil {
		return form, false, err
	}
	if r.PostFormValue("action") == actionAddRow && len(form.Entries) < timesheet.MaxEntries {
		form.Entries = append(form.Entries, timesheet.EntryForm{})
		return form, true, nil
	}
	return form, false, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, addRow, err := readForm(r)
	if err == nil && addRow {
		h.Views.Render(w, r, http.StatusOK, "timesheet_form", h.formPage("", form))
		return
	}
	var msg string
	if err == nil {
		_, msg, err = h.Service.Submit(r.Context(), form)
	}
	if err != nil {
		h.formFailed(w, r, "", form, err, timesheet.MsgSubmitFailed)
		return
	}
	h.Views.Redirect(w, r, "/timesheets", flash.KindSuccess, msg)
}

func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, id string, form timesheet.Form, err error, fallback string) {
	if h.Views.Expired(w, r, err) {
		return
	}
	status := http.StatusUnprocessableEntity
	if _, ok := validation.As(err); !ok {
		status = http.StatusBadGateway
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn(fallback)
	}
	h.Views.Render(w, r, status, "timesheet_form", h.formPage(id, form).WithForm(err, fallback))
}

func (h *Handler) handleEditPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "timesheetID")
	sheet, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Views.Unavailable(w, r, err, "Could not load the timesheet")
		return
	}
	page := h.formPage(id, timesheet.FormFrom(sheet))
	data := page.Data.(formData)
	data.Locked = !sheet.Editable()
	data.Status = sheet.Status
	page.Data = data
	h.Views.Render(w, r, http.StatusOK, "timesheet_form", page)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "timesheetID")
	to := "/timesheets/" + id
	sheet, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Views.Fail(w, r, "/timesheets", err, timesheet.MsgUpdateFailed)
		return
	}
	if !sheet.Editable() {
		h.Views.Redirect(w, r, to, flash.KindError, timesheet.MsgLocked)
		return
	}
	form, addRow, err := readForm(r)
	if err == nil && addRow {
		h.Views.Render(w, r, http.StatusOK, "timesheet_form", h.formPage(id, form))
		return
	}
	var msg string
	if err == nil {
		_, msg, err = h.Service.Update(r.Context(), id, form)
	}
	if err != nil {
		h.formFailed(w, r, id, form, err, timesheet.MsgUpdateFailed)
		return
	}
	h.Views.Redirect(w, r, "/timesheets", flash.KindSuccess, msg)
}
