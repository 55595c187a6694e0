package credithandler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hrportal/internal/domain/auth"
	"hrportal/internal/domain/credits"
	"hrportal/internal/domain/profile"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
	"hrportal/internal/transport/http/shared"
	"hrportal/internal/transport/http/views"
)

const MsgAlreadySubmitted = "This confirmation was already processed"

type Handler struct {
	Service *credits.Service
	Profile *profile.Service
	Views   *views.Renderer
	Log     *logrus.Logger
	// Once guards confirm endpoints against a double submit.
	Once func(http.Handler) http.Handler
	Now  func() time.Time
}

func NewHandler(service *credits.Service, profileSvc *profile.Service, v *views.Renderer, log *logrus.Logger, once func(http.Handler) http.Handler) *Handler {
	if once == nil {
		once = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{Service: service, Profile: profileSvc, Views: v, Log: log, Once: once, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	forbidden := h.Views.Forbidden()
	r.Route("/credits", func(r chi.Router) {
		r.Get("/", h.handleLedger)
		r.Get("/statement.pdf", h.handleStatement)
		r.Get("/redemptions", h.handleRedemptions)

		r.Get("/transfer", h.handleTransferPage)
		r.Post("/transfer", h.handleTransferReview)
		r.With(h.Once).Post("/transfer/confirm", h.handleTransferConfirm)

		r.Get("/redeem", h.handleRedeemPage)
		r.Post("/redeem", h.handleRedeemReview)
		r.With(h.Once).Post("/redeem/confirm", h.handleRedeemConfirm)

		r.With(middleware.RequireCapability(auth.CapViewTeam, forbidden)).Get("/team", h.handleTeam)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(auth.CapAwardCredits, forbidden))
			r.Get("/award", h.adjustPage(kindAward))
			r.With(h.Once).Post("/award", h.handleAdjust(kindAward))
			r.Get("/deduct", h.adjustPage(kindDeduct))
			r.With(h.Once).Post("/deduct", h.handleAdjust(kindDeduct))
		})
	})
}

// Duplicate answers a repeated confirmation.
func (h *Handler) Duplicate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Views.Redirect(w, r, "/credits", flash.KindInfo, MsgAlreadySubmitted)
	})
}

type ledgerData struct {
	Balance     credits.Balance
	BalanceErr  string
	Settings    credits.Settings
	SettingsErr string
	History     []credits.HistoryItem
	Pager       shared.Pager
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	var data ledgerData
	page := views.Page{Title: "Credits", Active: "credits"}
	var err error
	if data.Balance, err = h.Service.Balance(r.Context()); err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		data.BalanceErr = backend.MessageOr(err, credits.MsgLoadFailed)
	}
	if data.Settings, err = h.Service.Settings(r.Context()); err != nil {
		data.SettingsErr = backend.MessageOr(err, "Could not load the conversion rate")
	}
	pageNum := shared.QueryInt(r, "page", 1)
	history, err := h.Service.History(r.Context(), pageNum, credits.DefaultHistoryLimit)
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		h.Log.WithField("requestId", middleware.GetRequestID(r)).WithError(err).Warn("credits history failed")
		page.LoadError = backend.MessageOr(err, credits.MsgLoadFailed)
	} else {
		history = history.Normalize()
		meta := shared.MetaFrom(history.Pagination)
		data.Pager = shared.NewPager(meta, "/credits", r.URL.Query())
		if pageNum > meta.TotalPages && meta.TotalPages > 0 {
			http.Redirect(w, r, data.Pager.Href(meta.TotalPages), http.StatusSeeOther)
			return
		}
		data.History = history.Data
	}
	page.Data = data
	h.Views.Render(w, r, http.StatusOK, "credits", page)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())
	body, err := h.Service.Statement(r.Context(), session.FullName)
	if err != nil {
		h.Views.Fail(w, r, "/credits", err, credits.MsgExportFailed)
		return
	}
	name := fmt.Sprintf("credits-statement-%s.pdf", h.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) handleRedemptions(w http.ResponseWriter, r *http.Request) {
	page := views.Page{Title: "Redemptions", Active: "credits"}
	items, err := h.Service.RedeemHistory(r.Context())
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		page.LoadError = backend.MessageOr(err, credits.MsgLoadFailed)
	}
	page.Data = items
	h.Views.Render(w, r, http.StatusOK, "credits_redemptions", page)
}

type transferData struct {
	Form     credits.TransferForm
	Limits   credits.Limits
	LimitErr string
}

func (h *Handler) transferPage(r *http.Request, form credits.TransferForm) views.Page {
	data := transferData{Form: form}
	limits, err := h.Service.Limits(r.Context())
	if err != nil {
		data.LimitErr = backend.MessageOr(err, credits.MsgLoadFailed)
	}
	data.Limits = limits
	return views.Page{Title: "Transfer points", Active: "credits", Data: data}
}

func (h *Handler) handleTransferPage(w http.ResponseWriter, r *http.Request) {
	form := credits.TransferForm{RecipientID: r.URL.Query().Get("recipientId")}
	h.Views.Render(w, r, http.StatusOK, "credits_transfer", h.transferPage(r, form))
}

// Field is one line of the confirmation summary; hidden inputs replay it.
type Field struct {
	Name  string
	Label string
	Value string
	Shown string
}

type confirmData struct {
	Heading string
	Action  string
	Back    string
	Key     string
	Fields  []Field
	Note    string
}

func (h *Handler) handleTransferReview(w http.ResponseWriter, r *http.Request) {
	var form credits.TransferForm
	err := shared.DecodeForm(r, &form)
	var limits credits.Limits
	if err == nil {
		limits, err = h.Service.ReviewTransfer(r.Context(), form)
	}
	if err != nil {
		h.transferFailed(w, r, form, err)
		return
	}
	p := form.Payload()
	h.Views.Render(w, r, http.StatusOK, "credits_confirm", views.Page{Title: "Confirm transfer", Active: "credits", Data: confirmData{
		Heading: "Confirm transfer",
		Action:  "/credits/transfer/confirm",
		Back:    "/credits/transfer",
		Key:     uuid.NewString(),
		Fields: []Field{
			{Name: "recipientId", Label: "Recipient", Value: p.RecipientID, Shown: p.RecipientID},
			{Name: "points", Label: "Points", Value: strconv.Itoa(p.Points), Shown: strconv.Itoa(p.Points)},
			{Name: "note", Label: "Note", Value: p.Note, Shown: p.Note},
		},
		Note: fmt.Sprintf("Your balance will drop from %d to %d points.", limits.Balance, limits.Balance-p.Points),
	}})
}

func (h *Handler) transferFailed(w http.ResponseWriter, r *http.Request, form credits.TransferForm, err error) {
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, "/credits/transfer", err, credits.MsgTransferFailed)
		return
	}
	page := h.transferPage(r, form).WithForm(err, credits.MsgTransferFailed)
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "credits_transfer", page)
}

func (h *Handler) handleTransferConfirm(w http.ResponseWriter, r *http.Request) {
	var form credits.TransferForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.Transfer(r.Context(), form)
	}
	if err != nil {
		h.transferFailed(w, r, form, err)
		return
	}
	h.Log.WithFields(logrus.Fields{"requestId": middleware.GetRequestID(r), "points": form.Points}).Info("points transferred")
	h.Views.Redirect(w, r, "/credits", flash.KindSuccess, msg)
}

type redeemData struct {
	Form     credits.RedeemForm
	Limits   credits.Limits
	LimitErr string
	Accounts []profile.BankAccount
	BankErr  string
}

func (h *Handler) redeemPage(r *http.Request, form credits.RedeemForm) views.Page {
	data := redeemData{Form: form}
	limits, err := h.Service.Limits(r.Context())
	if err != nil {
		data.LimitErr = backend.MessageOr(err, credits.MsgLoadFailed)
	}
	data.Limits = limits
	if data.Accounts, err = h.Profile.BankAccounts(r.Context()); err != nil {
		data.BankErr = backend.MessageOr(err, "Could not load bank accounts")
	}
	if data.Form.BankAccountID == "" {
		for _, a := range data.Accounts {
			if a.IsPrimary {
				data.Form.BankAccountID = a.ID
			}
		}
	}
	return views.Page{Title: "Redeem points", Active: "credits", Data: data}
}

func (h *Handler) handleRedeemPage(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "credits_redeem", h.redeemPage(r, credits.RedeemForm{}))
}

func (h *Handler) handleRedeemReview(w http.ResponseWriter, r *http.Request) {
	var form credits.RedeemForm
	err := shared.DecodeForm(r, &form)
	var limits credits.Limits
	if err == nil {
		limits, err = h.Service.ReviewRedeem(r.Context(), form)
	}
	if err != nil {
		h.redeemFailed(w, r, form, err)
		return
	}
	p := form.Payload()
	account := p.BankAccountID
	if found, ok, err := h.Profile.FindBankAccount(r.Context(), p.BankAccountID); err == nil && ok {
		account = found.BankName + " " + found.Masked()
	}
	note := ""
	if !limits.Settings.ConversionRate.IsZero() {
		amount := limits.Settings.ConversionRate.Mul(decimal.NewFromInt(int64(p.Points)))
		note = "Estimated payout: " + credits.FormatAmount(amount, limits.Settings.Currency) + ". The final amount is set when the redemption is processed."
	}
	h.Views.Render(w, r, http.StatusOK, "credits_confirm", views.Page{Title: "Confirm redemption", Active: "credits", Data: confirmData{
		Heading: "Confirm redemption",
		Action:  "/credits/redeem/confirm",
		Back:    "/credits/redeem",
		Key:     uuid.NewString(),
		Fields: []Field{
			{Name: "points", Label: "Points", Value: strconv.Itoa(p.Points), Shown: strconv.Itoa(p.Points)},
			{Name: "bankAccountId", Label: "Pay to", Value: p.BankAccountID, Shown: account},
		},
		Note: note,
	}})
}

func (h *Handler) redeemFailed(w http.ResponseWriter, r *http.Request, form credits.RedeemForm, err error) {
	if _, ok := validation.As(err); !ok {
		h.Views.Fail(w, r, "/credits/redeem", err, credits.MsgRedeemFailed)
		return
	}
	page := h.redeemPage(r, form).WithForm(err, credits.MsgRedeemFailed)
	h.Views.Render(w, r, http.StatusUnprocessableEntity, "credits_redeem", page)
}

func (h *Handler) handleRedeemConfirm(w http.ResponseWriter, r *http.Request) {
	var form credits.RedeemForm
	err := shared.DecodeForm(r, &form)
	var msg string
	if err == nil {
		msg, err = h.Service.Redeem(r.Context(), form)
	}
	if err != nil {
		h.redeemFailed(w, r, form, err)
		return
	}
	h.Log.WithFields(logrus.Fields{"requestId": middleware.GetRequestID(r), "points": form.Points}).Info("points redeemed")
	h.Views.Redirect(w, r, "/credits/redemptions", flash.KindSuccess, msg)
}

type teamData struct {
	Members  []credits.TeamMember
	CanAward bool
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())
	page := views.Page{Title: "Team credits", Active: "team"}
	members, err := h.Service.Team(r.Context())
	if err != nil {
		if h.Views.Expired(w, r, err) {
			return
		}
		page.LoadError = backend.MessageOr(err, credits.MsgLoadFailed)
	}
	page.Data = teamData{Members: members, CanAward: session.Role.Can(auth.CapAwardCredits)}
	h.Views.Render(w, r, http.StatusOK, "credits_team", page)
}
