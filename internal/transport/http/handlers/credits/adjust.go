package credithandler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/credits"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

// adjustKind is one of the two manager dialogs over the same form.
type adjustKind struct {
	Name     string
	Title    string
	Verb     string
	Failed   string
	run      func(s *credits.Service, ctx context.Context, f credits.AdjustForm) (string, error)
	logEvent string
}

var (
	kindAward = adjustKind{
		Name: "award", Title: "Award points", Verb: "Award", Failed: credits.MsgAwardFailed,
		run: (*credits.Service).Award, logEvent: "points awarded",
	}
	kindDeduct = adjustKind{
		Name: "deduct", Title: "Deduct points", Verb: "Deduct", Failed: credits.MsgDeductFailed,
		run: (*credits.Service).Deduct, logEvent: "points deducted",
	}
)

type adjustData struct {
	Kind adjustKind
	Form credits.AdjustForm
	Name string
	Key  string
}

func (h *Handler) adjustView(kind adjustKind, form credits.AdjustForm, name string) views.Page {
	return views.Page{Title: kind.Title, Active: "team", Data: adjustData{Kind: kind, Form: form, Name: name, Key: uuid.NewString()}}
}

func (h *Handler) adjustPage(kind adjustKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		form := credits.AdjustForm{EmployeeID: q.Get("employeeId")}
		h.Views.Render(w, r, http.StatusOK, "credits_adjust", h.adjustView(kind, form, q.Get("name")))
	}
}

func (h *Handler) handleAdjust(kind adjustKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form credits.AdjustForm
		err := shared.DecodeForm(r, &form)
		var msg string
		if err == nil {
			msg, err = kind.run(h.Service, r.Context(), form)
		}
		if err != nil {
			if _, ok := validation.As(err); !ok {
				h.Views.Fail(w, r, "/credits/team", err, kind.Failed)
				return
			}
			page := h.adjustView(kind, form, r.PostFormValue("name")).WithForm(err, kind.Failed)
			h.Views.Render(w, r, http.StatusUnprocessableEntity, "credits_adjust", page)
			return
		}
		h.Log.WithFields(logrus.Fields{
			"requestId":  middleware.GetRequestID(r),
			"employeeId": form.EmployeeID,
			"points":     form.Points,
		}).Info(kind.logEvent)
		h.Views.Redirect(w, r, "/credits/team", flash.KindSuccess, msg)
	}
}
