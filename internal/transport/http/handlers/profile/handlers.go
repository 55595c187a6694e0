package profilehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/profile"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

type Handler struct {
	Service *profile.Service
	Views   *views.Renderer
	Log     *logrus.Logger
}

func NewHandler(service *profile.Service, v *views.Renderer, log *logrus.Logger) *Handler {
	return &Handler{Service: service, Views: v, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.handleProfile)
		r.Post("/personal", h.handlePersonal)

		r.Get("/education/new", h.handleEducationForm)
		r.Post("/education", h.handleEducationSave)
		r.Get("/education/{itemID}", h.handleEducationForm)
		r.Post("/education/{itemID}", h.handleEducationSave)
		r.Post("/education/{itemID}/delete", h.handleEducationDelete)

		r.Get("/bank-accounts/new", h.handleBankForm)
		r.Post("/bank-accounts", h.handleBankSave)
		r.Get("/bank-accounts/{itemID}", h.handleBankForm)
		r.Post("/bank-accounts/{itemID}", h.handleBankSave)
		r.Post("/bank-accounts/{itemID}/delete", h.handleBankDelete)
	})
}

type profileData struct {
	Personal     profile.PersonalForm
	PersonalErr  string
	Education    []profile.Education
	EducationErr string
	Banks        []profile.BankAccount
	BanksErr     string
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (profileData, bool) {
	var data profileData
	personal, err := h.Service.Personal(r.Context())
	if h.Views.Expired(w, r, err) {
		return data, false
	}
	if err != nil {
		data.PersonalErr = backend.MessageOr(err, profile.MsgLoadFailed)
	}
	data.Personal = profile.PersonalFormFrom(personal)

	if data.Education, err = h.Service.Education(r.Context()); err != nil {
		data.EducationErr = backend.MessageOr(err, "Could not load education")
	}
	if data.Banks, err = h.Service.BankAccounts(r.Context()); err != nil {
		if h.Views.Expired(w, r, err) {
			return data, false
		}
		data.BanksErr = backend.MessageOr(err, "Could not load bank accounts")
	}
	return data, true
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	h.Views.Render(w, r, http.StatusOK, "profile", views.Page{Title: "My profile", Active: "profile", Data: data})
}

func (h *Handler) handlePersonal(w http.ResponseWriter, r *http.Request) {
	var form profile.PersonalForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.UpdatePersonal(r.Context(), form)
	}
	if err == nil {
		h.Views.Redirect(w, r, "/profile", flash.KindSuccess, msg)
		return
	}
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, "/profile", err, profile.MsgPersonalFailed)
		return
	}
	data, ok := h.load(w, r)
	if !ok {
		return
	}
	data.Personal = form
	page := views.Page{Title: "My profile", Active: "profile", Data: data}.WithForm(err, profile.MsgPersonalFailed)
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "profile", page)
}

type itemData[F any] struct {
	ID     string
	Form   F
	Action string
}

func action(base, id string) string {
	if id == "" {
		return base
	}
	return base + "/" + id
}

func (h *Handler) handleEducationForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	var form profile.EducationForm
	if id != "" {
		item, found, err := h.Service.FindEducation(r.Context(), id)
		if err != nil {
			h.Views.Unavailable(w, r, err, "Could not load education")
			return
		}
		if !found {
			h.Views.Status(w, r, http.StatusNotFound, "")
			return
		}
		form = profile.EducationFormFrom(item)
	}
	h.Views.Render(w, r, http.StatusOK, "education_form", views.Page{Title: "Education", Active: "profile",
		Data: itemData[profile.EducationForm]{ID: id, Form: form, Action: action("/profile/education", id)}})
}

func (h *Handler) handleEducationSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	var form profile.EducationForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.SaveEducation(r.Context(), id, form)
	}
	if err == nil {
		h.Views.Redirect(w, r, "/profile", flash.KindSuccess, msg)
		return
	}
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, "/profile", err, profile.MsgEducationFailed)
		return
	}
	page := views.Page{Title: "Education", Active: "profile",
		Data: itemData[profile.EducationForm]{ID: id, Form: form, Action: action("/profile/education", id)}}
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "education_form", page.WithForm(err, profile.MsgEducationFailed))
}

func (h *Handler) handleEducationDelete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Service.DeleteEducation(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.Views.Fail(w, r, "/profile", err, profile.MsgEducationDeleteFailed)
		return
	}
	h.Views.Redirect(w, r, "/profile", flash.KindSuccess, msg)
}

func (h *Handler) handleBankForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	var form profile.BankAccountForm
	if id != "" {
		item, found, err := h.Service.FindBankAccount(r.Context(), id)
		if err != nil {
			h.Views.Unavailable(w, r, err, "Could not load the bank account")
			return
		}
		if !found {
			h.Views.Status(w, r, http.StatusNotFound, "")
			return
		}
		form = profile.BankAccountFormFrom(item)
	}
	h.Views.Render(w, r, http.StatusOK, "bank_form", views.Page{Title: "Bank account", Active: "profile",
		Data: itemData[profile.BankAccountForm]{ID: id, Form: form, Action: action("/profile/bank-accounts", id)}})
}

func (h *Handler) handleBankSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	var form profile.BankAccountForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.SaveBankAccount(r.Context(), id, form)
	}
	if err == nil {
		h.Views.Redirect(w, r, "/profile", flash.KindSuccess, msg)
		return
	}
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, "/profile", err, profile.MsgBankFailed)
		return
	}
	page := views.Page{Title: "Bank account", Active: "profile",
		Data: itemData[profile.BankAccountForm]{ID: id, Form: form, Action: action("/profile/bank-accounts", id)}}
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "bank_form", page.WithForm(err, profile.MsgBankFailed))
}

func (h *Handler) handleBankDelete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Service.DeleteBankAccount(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.Views.Fail(w, r, "/profile", err, profile.MsgBankDeleteFailed)
		return
	}
	h.Views.Redirect(w, r, "/profile", flash.KindSuccess, msg)
}
