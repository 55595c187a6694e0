package demohandler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/demo"
	"hrportal/internal/domain/employee"
	"hrportal/internal/domain/timesheet"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

const demoPageSize = 10

// Handler serves the fixture-backed screens. Nothing here reaches a backend.
type Handler struct {
	Employees  *demo.EmployeeStore
	Timesheets *demo.TimesheetStore
	Views      *views.Renderer
	Log        *logrus.Logger
}

func NewHandler(employees *demo.EmployeeStore, timesheets *demo.TimesheetStore, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Employees: employees, Timesheets: timesheets, Views: v, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/demo", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/demo/employees", http.StatusSeeOther)
		})
		r.Post("/reset", h.handleReset)
		r.Get("/employees", h.handleEmployees)
		r.Post("/employees/{employeeID}/status", h.handleStatus)
		r.Post("/employees/{employeeID}/delete", h.handleDelete)
		r.Get("/timesheet", h.handleTimesheet)
		r.Post("/timesheet", h.handleTimesheetAction)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.Employees.Reset()
	h.Timesheets.Reset()
	h.Log.Info("demo data reset")
	h.Views.Redirect(w, r, "/demo/employees", flash.KindInfo, "Demo data restored")
}

type filterQuery struct {
	Page        int      `form:"page"`
	Search      string   `form:"search"`
	Departments []int    `form:"department"`
	Statuses    []string `form:"status"`
}

type employeesData struct {
	Query       filterQuery
	Employees   []employee.Employee
	Pager       shared.Pager
	Departments []employee.Ref
	Statuses    []employee.Status
	Total       int
}

func (d employeesData) DepartmentChecked(id int) bool {
	for _, v := range d.Query.Departments {
		if v == id {
			return true
		}
	}
	return false
}

func (h *Handler) handleEmployees(w http.ResponseWriter, r *http.Request) {
	var q filterQuery
	if err := shared.DecodeQuery(r, &q); err != nil {
		h.Log.WithError(err).Info("malformed demo filter ignored")
	}
	f := demo.Filter{Search: q.Search, Departments: q.Departments}
	for _, raw := range q.Statuses {
		if s, err := employee.ParseStatus(raw); err == nil {
			f.Statuses = append(f.Statuses, s)
		}
	}
	all := h.Employees.List()
	filtered := demo.FilterEmployees(all, f)
	items, meta := shared.Paginate(filtered, q.Page, demoPageSize)
	data := employeesData{
		Query:       q,
		Employees:   items,
		Pager:       shared.NewPager(meta, "/demo/employees", r.URL.Query()),
		Departments: demo.Departments(),
		Statuses:    employee.Statuses(),
		Total:       len(all),
	}
	h.Views.Render(w, r, http.StatusOK, "demo_employees", views.Page{Title: "Demo directory", Active: "demo", Data: data})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	status, err := employee.ParseStatus(r.PostFormValue("status"))
	if err == nil {
		_, err = h.Employees.SetStatus(id, status)
	}
	if err != nil {
		h.Views.Redirect(w, r, "/demo/employees", flash.KindError, "Could not change the status")
		return
	}
	h.Views.Redirect(w, r, "/demo/employees", flash.KindSuccess, employee.MsgStatusUpdated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Employees.Remove(chi.URLParam(r, "employeeID")); err != nil {
		h.Views.Redirect(w, r, "/demo/employees", flash.KindError, "Employee not found")
		return
	}
	h.Views.Redirect(w, r, "/demo/employees", flash.KindSuccess, "Employee removed")
}

type timesheetData struct {
	Form      timesheet.Form
	Total     float64
	Submitted []timesheet.Timesheet
}

func (h *Handler) timesheetPage(form timesheet.Form) views.Page {
	return views.Page{Title: "Demo timesheet", Active: "demo", Data: timesheetData{
		Form:      form,
		Total:     form.TotalHours(),
		Submitted: h.Timesheets.Submitted(),
	}}
}

func (h *Handler) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "demo_timesheet", h.timesheetPage(h.Timesheets.Draft()))
}

// handleTimesheetAction saves the posted draft and then applies the button
// that was pressed.
func (h *Handler) handleTimesheetAction(w http.ResponseWriter, r *http.Request) {
	var form timesheet.Form
	if err := shared.DecodeForm(r, &form); err != nil {
		h.Views.Render(w, r, http.StatusUnprocessableEntity, "demo_timesheet", h.timesheetPage(form).WithForm(err, ""))
		return
	}
	h.Timesheets.SaveDraft(form)

	action := r.PostFormValue("action")
	switch {
	case action == "add-row":
		h.Timesheets.AddRow(form.WeekStart)
		h.Views.Redirect(w, r, "/demo/timesheet", "", "")
	case strings.HasPrefix(action, "remove-"):
		i, err := strconv.Atoi(strings.TrimPrefix(action, "remove-"))
		if err == nil {
			err = h.Timesheets.RemoveRow(i)
		}
		if err != nil {
			h.Views.Redirect(w, r, "/demo/timesheet", flash.KindError, "Row not found")
			return
		}
		h.Views.Redirect(w, r, "/demo/timesheet", "", "")
	case action == "submit":
		if _, err := h.Timesheets.Submit(); err != nil {
			if _, ok := validation.As(err); ok {
				h.Views.Render(w, r, http.StatusUnprocessableEntity, "demo_timesheet", h.timesheetPage(h.Timesheets.Draft()).WithForm(err, timesheet.MsgSubmitFailed))
				return
			}
			h.Views.Redirect(w, r, "/demo/timesheet", flash.KindError, timesheet.MsgSubmitFailed)
			return
		}
		h.Views.Redirect(w, r, "/demo/timesheet", flash.KindSuccess, timesheet.MsgSubmitted)
	default:
		h.Views.Redirect(w, r, "/demo/timesheet", flash.KindSuccess, "Draft saved")
	}
}
