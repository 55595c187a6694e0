package views

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	MsgSessionExpired = "Your session has expired. Please sign in again."

	displayLayout = "02 Jan 2006"
)

var pageNames = []string{
	"login",
	"forgot_password",
	"dashboard",
	"employees",
	"employee_detail",
	"onboard",
	"requests",
	"request_new",
	"request_reject",
	"timesheets",
	"timesheet_form",
	"profile",
	"education_form",
	"bank_form",
	"credits",
	"credits_transfer",
	"credits_redeem",
	"credits_confirm",
	"credits_team",
	"credits_adjust",
	"credits_redemptions",
	"demo_employees",
	"demo_timesheet",
	"error",
}

type NavItem struct {
	Key   string
	Label string
	Href  string
}

// Page is what every template receives. Errors holds inline field messages,
// Error a form-level banner and LoadError a failed read. An empty list with no
// LoadError is the empty state.
type Page struct {
	Title     string
	Active    string
	Session   auth.Session
	SignedIn  bool
	Flash     flash.Message
	HasFlash  bool
	Nav       []NavItem
	RequestID string
	Errors    map[string]string
	Error     string
	LoadError string
	Data      any
}

func (p Page) Can(capability string) bool {
	return p.SignedIn && p.Session.Role.Can(capability)
}

func (p Page) FieldError(name string) string {
	return p.Errors[name]
}

// WithForm copies a service error onto the page: field issues go inline and
// anything else becomes the banner.
func (p Page) WithForm(err error, fallback string) Page {
	if err == nil {
		return p
	}
	if verr, ok := validation.As(err); ok {
		p.Errors = verr.Fields()
		if msg, ok := p.Errors[""]; ok {
			p.Error = msg
		}
		return p
	}
	p.Error = backend.MessageOr(err, fallback)
	return p
}

type Renderer struct {
	pages    map[string]*template.Template
	sessions *middleware.Sessions
	log      *logrus.Logger
	demo     bool
}

func New(sessions *middleware.Sessions, log *logrus.Logger, demo bool) (*Renderer, error) {
	r := &Renderer{
		pages:    make(map[string]*template.Template, len(pageNames)),
		sessions: sessions,
		log:      log,
		demo:     demo,
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", name)
		}
		r.pages[name] = t
	}
	return r, nil
}

var funcs = template.FuncMap{
	"date": func(v any) string {
		switch d := v.(type) {
		case time.Time:
			if d.IsZero() {
				return ""
			}
			return d.Format(displayLayout)
		case *time.Time:
			if d == nil || d.IsZero() {
				return ""
			}
			return d.Format(displayLayout)
		case string:
			return shared.DisplayDate(d)
		}
		return ""
	},
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
	"contains": func(list []string, v string) bool {
		for _, item := range list {
			if item == v {
				return true
			}
		}
		return false
	},
}

func (v *Renderer) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func (v *Renderer) nav(session auth.Session) []NavItem {
	items := []NavItem{
		{Key: "dashboard", Label: "Dashboard", Href: "/"},
		{Key: "requests", Label: "Requests", Href: "/requests"},
		{Key: "timesheets", Label: "Timesheets", Href: "/timesheets"},
		{Key: "profile", Label: "Profile", Href: "/profile"},
		{Key: "credits", Label: "Credits", Href: "/credits"},
	}
	if session.Role.Can(auth.CapManageEmployees) {
		items = append(items[:1], append([]NavItem{{Key: "employees", Label: "Employees", Href: "/employees"}}, items[1:]...)...)
	}
	if session.Role.Can(auth.CapViewTeam) {
		items = append(items, NavItem{Key: "team", Label: "Team credits", Href: "/credits/team"})
	}
	if v.demo {
		items = append(items, NavItem{Key: "demo", Label: "Demo", Href: "/demo/employees"})
	}
	return items
}

// Render executes a page into a buffer first so a template failure never
// leaves a half-written response.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := v.pages[name]
	if !ok {
		v.log.WithField("template", name).Error("unknown template")
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if session, ok := middleware.GetSession(r.Context()); ok {
		p.Session = session
		p.SignedIn = true
		p.Nav = v.nav(session)
	}
	if msg, ok := flash.Pop(w, r); ok {
		p.Flash = msg
		p.HasFlash = true
	}
	p.RequestID = middleware.GetRequestID(r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		v.log.WithFields(logrus.Fields{"template": name, "requestId": p.RequestID}).WithError(err).Error("render failed")
		http.Error(w, "template render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Redirect finishes a Post/Redirect/Get cycle with a toast. A success toast
// also marks a guarded submission as done.
func (v *Renderer) Redirect(w http.ResponseWriter, r *http.Request, to string, kind flash.Kind, text string) {
	if kind == flash.KindSuccess {
		middleware.MarkSubmitted(r.Context())
	}
	if text != "" {
		flash.Set(w, kind, text)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Expired handles a backend 401: the session is dropped and the browser is
// sent to sign in again. It reports whether it wrote the response.
func (v *Renderer) Expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	v.log.WithField("requestId", middleware.GetRequestID(r)).Info("backend rejected session token")
	v.sessions.Clear(w)
	target := ""
	if r.Method == http.MethodGet {
		target = r.URL.RequestURI()
	}
	v.Redirect(w, r, middleware.LoginURL(target), flash.KindInfo, MsgSessionExpired)
	return true
}

// Fail reports a failed mutation back on the page it came from.
func (v *Renderer) Fail(w http.ResponseWriter, r *http.Request, to string, err error, fallback string) {
	if v.Expired(w, r, err) {
		return
	}
	v.log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn(fallback)
	v.Redirect(w, r, to, flash.KindError, backend.MessageOr(err, fallback))
}

type errorData struct {
	Status  int
	Heading string
	Detail  string
}

func (v *Renderer) Status(w http.ResponseWriter, r *http.Request, status int, detail string) {
	heading := http.StatusText(status)
	switch status {
	case http.StatusNotFound:
		heading = "Page not found"
	case http.StatusForbidden:
		heading = "You do not have access to this page"
	}
	v.Render(w, r, status, "error", Page{Title: heading, Data: errorData{Status: status, Heading: heading, Detail: detail}})
}

func (v *Renderer) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.Status(w, r, http.StatusNotFound, "")
	})
}

func (v *Renderer) Forbidden() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v.Status(w, r, http.StatusForbidden, "")
	})
}

// Unavailable renders a read failure, or the login redirect for a 401.
func (v *Renderer) Unavailable(w http.ResponseWriter, r *http.Request, err error, detail string) {
	if v.Expired(w, r, err) {
		return
	}
	v.log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn(detail)
	status := http.StatusBadGateway
	var be *backend.Error
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		status = http.StatusNotFound
	}
	v.Status(w, r, status, backend.MessageOr(err, detail))
}
