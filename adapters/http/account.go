package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/artpar/homekeep/app"
	"github.com/artpar/homekeep/domain/billing"
	"github.com/artpar/homekeep/ports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AccountHandler serves a user's subscriptions and bill.
type AccountHandler struct {
	service *app.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(service *app.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{service: service, logger: logger}
}

// Routes mounts the account endpoints. The enclosing route supplies {userID}.
func (h *AccountHandler) Routes(r chi.Router) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.ListSubscriptions)
		r.Post("/", h.AcquireSubscription)
		r.Get("/{id}", h.GetSubscription)
		r.Post("/{id}/cancel", h.CancelSubscription)
		r.Delete("/{id}", h.RemoveSubscription)
	})

	r.Get("/billing", h.BillingSummary)
	r.Get("/billing/current", h.CurrentCharge)
	r.Get("/billing/projection", h.Projection)
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// ListSubscriptions returns the user's ledger.
//
//	@Summary		List subscriptions
//	@Description	Returns every subscription of the account, cancelled ones included, oldest first
//	@Tags			Subscriptions
//	@Produce		json
//	@Param			userID	path		string						true	"User ID"
//	@Success		200		{object}	SubscriptionListResponse	"Ledger"
//	@Failure		500		{object}	ErrorResponseBody			"Internal error"
//	@Router			/api/v1/accounts/{userID}/subscriptions [get]
func (h *AccountHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.List(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSubscriptionListResponse(subs, h.service.Config().Currency))
}

// AcquireSubscription adds a tool to the account.
//
//	@Summary		Acquire a tool
//	@Description	Creates a subscription, either as a free trial or directly active
//	@Tags			Subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		string					true	"User ID"
//	@Param			request	body		AcquireRequest			true	"Tool to acquire"
//	@Success		201		{object}	SubscriptionResponse	"Created subscription"
//	@Failure		400		{object}	ErrorResponseBody		"Invalid request"
//	@Router			/api/v1/accounts/{userID}/subscriptions [post]
func (h *AccountHandler) AcquireSubscription(w http.ResponseWriter, r *http.Request) {
	var req AcquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", validationMessage(err))
		return
	}

	cfg := h.service.Config()
	params, err := req.params(chi.URLParam(r, "userID"), cfg.Location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	sub, err := h.service.Acquire(r.Context(), params)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, NewSubscriptionResponse(sub, cfg.Currency))
}

// GetSubscription returns one subscription.
//
//	@Summary		Get subscription
//	@Tags			Subscriptions
//	@Produce		json
//	@Param			userID	path		string					true	"User ID"
//	@Param			id		path		string					true	"Subscription ID"
//	@Success		200		{object}	SubscriptionResponse	"Subscription"
//	@Failure		404		{object}	ErrorResponseBody		"Subscription not found"
//	@Router			/api/v1/accounts/{userID}/subscriptions/{id} [get]
func (h *AccountHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSubscriptionResponse(sub, h.service.Config().Currency))
}

// CancelSubscription stops billing a tool. The record stays in the ledger.
//
//	@Summary		Cancel subscription
//	@Description	Marks the subscription cancelled; cancelling twice is a no-op
//	@Tags			Subscriptions
//	@Produce		json
//	@Param			userID	path		string					true	"User ID"
//	@Param			id		path		string					true	"Subscription ID"
//	@Success		200		{object}	SubscriptionResponse	"Cancelled subscription"
//	@Failure		404		{object}	ErrorResponseBody		"Subscription not found"
//	@Router			/api/v1/accounts/{userID}/subscriptions/{id}/cancel [post]
func (h *AccountHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Cancel(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSubscriptionResponse(sub, h.service.Config().Currency))
}

// RemoveSubscription deletes a subscription from the ledger.
//
//	@Summary		Remove subscription
//	@Tags			Subscriptions
//	@Param			userID	path	string	true	"User ID"
//	@Param			id		path	string	true	"Subscription ID"
//	@Success		204		"Removed"
//	@Failure		404		{object}	ErrorResponseBody	"Subscription not found"
//	@Router			/api/v1/accounts/{userID}/subscriptions/{id} [delete]
func (h *AccountHandler) RemoveSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Billing
// -----------------------------------------------------------------------------

// CurrentCharge returns what the account is charged now.
//
//	@Summary		Current charge
//	@Description	Active tools at their price, trials free, platform fee when any tool is held
//	@Tags			Billing
//	@Produce		json
//	@Param			userID	path		string				true	"User ID"
//	@Param			at		query		string				false	"Evaluate as of this date (YYYY-MM-DD or RFC3339)"
//	@Success		200		{object}	ChargeResponse		"Current charge"
//	@Failure		400		{object}	ErrorResponseBody	"Invalid date"
//	@Router			/api/v1/accounts/{userID}/billing/current [get]
func (h *AccountHandler) CurrentCharge(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()
	at, ok := h.parseAt(w, r, cfg.Location)
	if !ok {
		return
	}

	charge, err := h.service.Current(r.Context(), chi.URLParam(r, "userID"), at)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewChargeResponse(charge, cfg.Currency))
}

// Projection returns the simulated charge on the next billing date.
//
//	@Summary		Next-cycle projection
//	@Description	Simulates the charge on the next anchor date, converting trials that end by then
//	@Tags			Billing
//	@Produce		json
//	@Param			userID	path		string				true	"User ID"
//	@Param			at		query		string				false	"Project from this date (YYYY-MM-DD or RFC3339)"
//	@Success		200		{object}	ProjectionResponse	"Projection"
//	@Failure		400		{object}	ErrorResponseBody	"Invalid date"
//	@Router			/api/v1/accounts/{userID}/billing/projection [get]
func (h *AccountHandler) Projection(w http.ResponseWriter, r *http.Request) {
	cfg := h.service.Config()
	at, ok := h.parseAt(w, r, cfg.Location)
	if !ok {
		return
	}

	proj, err := h.service.Projection(r.Context(), chi.URLParam(r, "userID"), at)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewProjectionResponse(proj, cfg.Currency))
}

// BillingSummary returns the current charge and the projection together.
//
//	@Summary		Billing summary
//	@Tags			Billing
//	@Produce		json
//	@Param			userID	path		string				true	"User ID"
//	@Param			at		query		string				false	"Evaluate as of this date (YYYY-MM-DD or RFC3339)"
//	@Success		200		{object}	SummaryResponse		"Summary"
//	@Failure		400		{object}	ErrorResponseBody	"Invalid date"
//	@Router			/api/v1/accounts/{userID}/billing [get]
func (h *AccountHandler) BillingSummary(w http.ResponseWriter, r *http.Request) {
	at, ok := h.parseAt(w, r, h.service.Config().Location)
	if !ok {
		return
	}

	sum, err := h.service.Summary(r.Context(), chi.URLParam(r, "userID"), at)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSummaryResponse(sum))
}

// parseAt reads the optional ?at= override. A missing value yields the zero
// time, which the service replaces with the clock.
func (h *AccountHandler) parseAt(w http.ResponseWriter, r *http.Request, loc *time.Location) (time.Time, bool) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Time{}, true
	}
	at, err := ParseDate(raw, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "at must be a date (YYYY-MM-DD) or RFC3339 timestamp")
		return time.Time{}, false
	}
	return at, true
}

func (h *AccountHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound), errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusNotFound, "not_found", "Subscription not found")
	case errors.Is(err, app.ErrCorruptLedger):
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("ledger failed validation")
		writeError(w, http.StatusInternalServerError, "invalid_ledger", "Stored subscriptions are inconsistent")
	case errors.Is(err, billing.ErrInvalidSubscription):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ports.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", "Subscription already exists")
	default:
		h.logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
