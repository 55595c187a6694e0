package employeehandler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/employee"
	"hrportal/internal/domain/lookup"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/export"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/api"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Service *employee.Service
	Lookups *lookup.Service
	Views   *views.Renderer
	Log     *logrus.Logger
	Now     func() time.Time
}

func NewHandler(service *employee.Service, lookups *lookup.Service, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Service: service, Lookups: lookups, Views: v, Log: log, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	forbidden := h.Views.Forbidden()
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireCapability(auth.CapManageEmployees, forbidden))
		r.Get("/", h.handleList)
		r.Get("/export", h.handleExport)
		r.With(middleware.RequireCapability(auth.CapOnboard, forbidden)).Get("/new", h.handleOnboardPage)
		r.With(middleware.RequireCapability(auth.CapOnboard, forbidden)).Post("/new", h.handleOnboard)
		r.Get("/{employeeID}", h.handleDetail)
		r.Post("/{employeeID}/placement", h.handlePlacement)
		r.Post("/{employeeID}/status", h.handleStatus)
		r.Post("/{employeeID}/supervisors", h.handleSupervisors)
	})
}

// RegisterAPIRoutes mounts the JSON search the supervisor picker calls.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.CapManageEmployees, http.HandlerFunc(apiForbidden))).
		Get("/api/search/supervisors", h.handleSearchSupervisors)
}

func apiForbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r))
}

type listQuery struct {
	Page         int    `form:"page"`
	Search       string `form:"search"`
	DepartmentID int    `form:"departmentId"`
	Status       string `form:"status"`
}

func (q listQuery) params() employee.ListParams {
	p := employee.ListParams{Page: q.Page, PageSize: employee.DefaultPageSize, Search: q.Search, DepartmentID: q.DepartmentID}
	if status, err := employee.ParseStatus(q.Status); err == nil {
		p.Status = status
	}
	return p
}

func readListQuery(r *http.Request) listQuery {
	var q listQuery
	if err := shared.DecodeQuery(r, &q); err != nil {
		// A malformed filter falls back to the unfiltered first page.
		return listQuery{Search: r.URL.Query().Get("search")}
	}
	return q
}

type listData struct {
	Query       listQuery
	Employees   []employee.Employee
	Pager       shared.Pager
	Departments []lookup.Item
	Statuses    []employee.Status
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := readListQuery(r)
	data := listData{Query: q, Statuses: employee.Statuses()}
	page := views.Page{Title: "Employees", Active: "employees"}

	// The department filter is optional; the list renders without it.
	if departments, err := h.Lookups.Departments(r.Context()); err == nil {
		data.Departments = departments
	}

	result, err := h.Service.List(r.Context(), q.params())
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("employee list failed")
		page.LoadError = backend.MessageOr(err, employee.MsgListFailed)
		page.Data = data
		h.Views.Render(w, r, http.StatusOK, "employees", page)
		return
	}
	result = result.Normalize()
	meta := shared.MetaFrom(result.Pagination)
	if q.Page > meta.TotalPages && meta.TotalPages > 0 {
		http.Redirect(w, r, shared.NewPager(meta, "/employees", r.URL.Query()).Href(meta.TotalPages), http.StatusSeeOther)
		return
	}
	data.Employees = result.Data
	data.Pager = shared.NewPager(meta, "/employees", r.URL.Query())
	page.Data = data
	h.Views.Render(w, r, http.StatusOK, "employees", page)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	q := readListQuery(r)
	rows, err := h.Service.Directory(r.Context(), q.params())
	if err != nil {
		h.Views.Fail(w, r, "/employees", err, employee.MsgListFailed)
		return
	}
	body, err := export.XLSX("Employees", employee.DirectoryTable(rows))
	if err != nil {
		h.Views.Fail(w, r, "/employees", err, "Could not build the export")
		return
	}
	name := fmt.Sprintf("employees-%s.xlsx", h.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type onboardData struct {
	Form          employee.OnboardingForm
	Lookups       lookup.Set
	JobLevels     []string
	EmployeeTypes []string
	TimeTypes     []string
	Today         string
}

func (h *Handler) onboardPage(r *http.Request, form employee.OnboardingForm) views.Page {
	data := onboardData{
		Form:          form,
		JobLevels:     employee.JobLevels,
		EmployeeTypes: employee.EmployeeTypes,
		TimeTypes:     employee.TimeTypes,
		Today:         h.Now().Format(validation.DateLayout),
	}
	page := views.Page{Title: "Onboard employee", Active: "employees"}
	set, err := h.Lookups.All(r.Context())
	if err != nil {
		page.LoadError = backend.MessageOr(err, "Could not load departments and positions")
	}
	data.Lookups = set
	page.Data = data
	return page
}

func (h *Handler) handleOnboardPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "onboard", h.onboardPage(r, employee.OnboardingForm{}))
}

func (h *Handler) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var form employee.OnboardingForm
	err := shared.DecodeForm(r, &form)
	var created employee.Employee
	var msg string
	if err == nil {
		created, msg, err = h.Service.Onboard(r.Context(), form)
	}
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		status := http.StatusUnprocessableEntity
		if _, ok := validation.As(err); !ok {
			status = http.StatusBadGateway
			h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("onboarding failed")
		}
		page := h.onboardPage(r, form).WithForm(err, employee.MsgOnboardFailed)
		h.Views.Render(w, r, status, "onboard", page)
		return
	}
	h.Log.WithFields(logrus.Fields{"requestId": middleware.GetRequestID(r), "employeeId": created.ID}).Info("employee onboarded")
	to := "/employees"
	if created.ID != "" {
		to = "/employees/" + created.ID
	}
	h.Views.Redirect(w, r, to, flash.KindSuccess, msg)
}

type pickerData struct {
	Kind       employee.SupervisorKind
	Open       bool
	Term       string
	Candidates []employee.Person
	Err        string
}

type detailData struct {
	Employee      employee.Employee
	Lookups       lookup.Set
	LookupErr     string
	Placement     employee.PlacementForm
	Status        employee.StatusForm
	Supervisors   employee.SupervisorForm
	Statuses      []employee.Status
	JobLevels     []string
	EmployeeTypes []string
	TimeTypes     []string
	Picker        pickerData
}

func (h *Handler) detailPage(w http.ResponseWriter, r *http.Request, id string) (views.Page, bool) {
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Views.Unavailable(w, r, err, "Could not load the employee")
		return views.Page{}, false
	}
	data := detailData{
		Employee:      emp,
		Status:        employee.StatusForm{Status: emp.Status.String()},
		Supervisors:   employee.SupervisorForm{ManagerID: emp.ManagerID, HRID: emp.HRID},
		Statuses:      employee.Statuses(),
		JobLevels:     employee.JobLevels,
		EmployeeTypes: employee.EmployeeTypes,
		TimeTypes:     employee.TimeTypes,
	}
	if set, err := h.Lookups.All(r.Context()); err != nil {
		data.LookupErr = backend.MessageOr(err, "Could not load departments and positions")
	} else {
		data.Lookups = set
	}

	q := r.URL.Query()
	data.Picker = pickerData{
		Kind: employee.SupervisorKind(q.Get("picker")),
		Open: q.Get("picker") != "",
		Term: q.Get("term"),
	}
	people, err := h.Service.SearchSupervisors(r.Context(), data.Picker.Kind, employee.SearchGate{Open: data.Picker.Open, Term: data.Picker.Term})
	if err != nil {
		data.Picker.Err = backend.MessageOr(err, "Could not search supervisors")
	}
	data.Picker.Candidates = people
	if data.Picker.Kind != employee.KindHR && data.Picker.Open {
		data.Picker.Kind = employee.KindManager
	}
	return views.Page{Title: emp.FullName, Active: "employees", Data: data}, true
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	page, ok := h.detailPage(w, r, chi.URLParam(r, "employeeID"))
	if !ok {
		return
	}
	h.Views.Render(w, r, http.StatusOK, "employee_detail", page)
}

// mutate runs one of the detail page forms. Validation failures re-render the
// page inline; backend failures come back as a toast.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fallback string, run func(id string) (string, error), keep func(*detailData)) {
	id := chi.URLParam(r, "employeeID")
	to := "/employees/" + id
	msg, err := run(id)
	if err == nil {
		h.Views.Redirect(w, r, to, flash.KindSuccess, msg)
		return
	}
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, to, err, fallback)
		return
	}
	page, ok := h.detailPage(w, r, id)
	if !ok {
		return
	}
	data := page.Data.(detailData)
	keep(&data)
	page.Data = data
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "employee_detail", page.WithForm(err, fallback))
}

func (h *Handler) handlePlacement(w http.ResponseWriter, r *http.Request) {
	var form employee.PlacementForm
	h.mutate(w, r, employee.MsgUpdateFailed, func(id string) (string, error) {
		if err := shared.DecodeForm(r, &form); err != nil {
			return "", err
		}
		return h.Service.UpdatePlacement(r.Context(), id, form)
	}, func(d *detailData) { d.Placement = form })
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var form employee.StatusForm
	h.mutate(w, r, employee.MsgStatusFailed, func(id string) (string, error) {
		if err := shared.DecodeForm(r, &form); err != nil {
			return "", err
		}
		return h.Service.ChangeStatus(r.Context(), id, form)
	}, func(d *detailData) { d.Status = form })
}

func (h *Handler) handleSupervisors(w http.ResponseWriter, r *http.Request) {
	var form employee.SupervisorForm
	h.mutate(w, r, employee.MsgSupervisorsFailed, func(id string) (string, error) {
		if err := shared.DecodeForm(r, &form); err != nil {
			return "", err
		}
		return h.Service.ReassignSupervisors(r.Context(), id, form)
	}, func(d *detailData) { d.Supervisors = form })
}

// handleSearchSupervisors answers the picker. The picker sends open=1 only
// while its dropdown is shown.
func (h *Handler) handleSearchSupervisors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gate := employee.SearchGate{Open: q.Get("open") == "1" || strings.EqualFold(q.Get("open"), "true"), Term: q.Get("term")}
	people, err := h.Service.SearchSupervisors(r.Context(), employee.SupervisorKind(q.Get("kind")), gate)
	if err != nil {
		status := http.StatusBadGateway
		if backend.IsUnauthorized(err) {
			status = http.StatusUnauthorized
		}
		api.Fail(w, status, "search_failed", backend.MessageOr(err, "Could not search supervisors"), middleware.GetRequestID(r))
		return
	}
	api.Success(w, people, middleware.GetRequestID(r))
}
