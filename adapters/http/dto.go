package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/artpar/homekeep/app"
	"github.com/artpar/homekeep/domain/billing"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted and returned by the API.
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String(), time.UTC)
		return err == nil
	})
	return v
}

// validationMessage turns validator errors into one readable sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "date":
			msgs = append(msgs, fe.Field()+" must be a date (YYYY-MM-DD) or RFC3339 timestamp")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// ParseDate accepts a calendar date, interpreted as midnight in loc, or an
// RFC3339 timestamp.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.In(loc), nil
}

func optionalDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

// AcquireRequest is the body of POST /subscriptions.
type AcquireRequest struct {
	ToolID              string `json:"tool_id" validate:"required,max=64" example:"calendar"`
	Name                string `json:"name" validate:"max=128" example:"Family Calendar"`
	Price               string `json:"price" validate:"required,numeric" example:"4.99"`
	Trial               bool   `json:"trial" example:"true"`
	TrialEndDate        string `json:"trial_end_date,omitempty" validate:"omitempty,date" example:"2025-03-01"`
	PromoCode           string `json:"promo_code,omitempty" validate:"max=64" example:"SPRING25"`
	PromoExpirationDate string `json:"promo_expiration_date,omitempty" validate:"omitempty,date" example:"2025-04-30"`
}

func (req AcquireRequest) params(userID string, loc *time.Location) (app.AcquireParams, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return app.AcquireParams{}, fmt.Errorf("price: %w", err)
	}
	trialEnd, err := optionalDate(req.TrialEndDate, loc)
	if err != nil {
		return app.AcquireParams{}, fmt.Errorf("trial_end_date: %w", err)
	}
	promoEnd, err := optionalDate(req.PromoExpirationDate, loc)
	if err != nil {
		return app.AcquireParams{}, fmt.Errorf("promo_expiration_date: %w", err)
	}
	return app.AcquireParams{
		UserID:              userID,
		ToolID:              req.ToolID,
		Name:                req.Name,
		Price:               price,
		Trial:               req.Trial,
		TrialEndDate:        trialEnd,
		PromoCode:           req.PromoCode,
		PromoExpirationDate: promoEnd,
	}, nil
}

// -----------------------------------------------------------------------------
// Responses
// -----------------------------------------------------------------------------

// SubscriptionResponse is one ledger entry.
type SubscriptionResponse struct {
	ID                  string    `json:"id" example:"sub_3f2a9c1e-6b0d-4c7a-9f5e-2d8b1a4c6e90"`
	UserID              string    `json:"user_id" example:"user-1"`
	ToolID              string    `json:"tool_id" example:"calendar"`
	Name                string    `json:"name" example:"Family Calendar"`
	Price               string    `json:"price" example:"4.99"`
	PriceLabel          string    `json:"price_label" example:"Free (Trial)"`
	Status              string    `json:"status" example:"trial"`
	BillingDate         string    `json:"billing_date" example:"2025-03-01"`
	TrialEndDate        *string   `json:"trial_end_date,omitempty" example:"2025-03-01"`
	PromoCode           string    `json:"promo_code,omitempty" example:"SPRING25"`
	PromoExpirationDate *string   `json:"promo_expiration_date,omitempty" example:"2025-04-30"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SubscriptionListResponse wraps a user's ledger.
type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Total         int                    `json:"total" example:"3"`
}

// NewSubscriptionResponse renders a subscription with prices in currency.
func NewSubscriptionResponse(s billing.Subscription, currency string) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                  s.ID,
		UserID:              s.UserID,
		ToolID:              s.ToolID,
		Name:                s.Name,
		Price:               s.Price.StringFixed(2),
		PriceLabel:          billing.PriceLabel(s, currency),
		Status:              string(s.Status),
		BillingDate:         s.EffectiveBillingDate().Format(DateLayout),
		TrialEndDate:        formatDate(s.TrialEndDate),
		PromoCode:           s.PromoCode,
		PromoExpirationDate: formatDate(s.PromoExpirationDate),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func NewSubscriptionListResponse(subs []billing.Subscription, currency string) SubscriptionListResponse {
	out := SubscriptionListResponse{
		Subscriptions: make([]SubscriptionResponse, 0, len(subs)),
		Total:         len(subs),
	}
	for _, s := range subs {
		out.Subscriptions = append(out.Subscriptions, NewSubscriptionResponse(s, currency))
	}
	return out
}

// ChargeLineResponse is one subscription's share of the current charge.
type ChargeLineResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Name           string `json:"name" example:"Family Calendar"`
	Status         string `json:"status" example:"active"`
	ListPrice      string `json:"list_price" example:"4.99"`
	Charged        string `json:"charged" example:"4.99"`
	Label          string `json:"label" example:"$4.99"`
}

// ChargeResponse is the current monthly charge.
type ChargeResponse struct {
	Currency               string               `json:"currency" example:"USD"`
	AnchorDay              int                  `json:"anchor_day,omitempty" example:"15"`
	CurrentCycleDate       *string              `json:"current_cycle_date,omitempty" example:"2025-03-15"`
	ToolSubscriptionsTotal string               `json:"tool_subscriptions_total" example:"10.00"`
	PlatformFeeApplied     bool                 `json:"platform_fee_applied" example:"true"`
	PlatformFee            string               `json:"platform_fee" example:"5.00"`
	Total                  string               `json:"total" example:"15.00"`
	TotalLabel             string               `json:"total_label" example:"$15.00"`
	ActiveCount            int                  `json:"active_count" example:"1"`
	TrialCount             int                  `json:"trial_count" example:"1"`
	Lines                  []ChargeLineResponse `json:"lines"`
}

// NewChargeResponse renders a current charge.
func NewChargeResponse(c billing.ChargeSummary, currency string) ChargeResponse {
	out := ChargeResponse{
		Currency:               currency,
		AnchorDay:              c.AnchorDay,
		CurrentCycleDate:       formatDate(c.CurrentCycleDate),
		ToolSubscriptionsTotal: c.ToolSubscriptionsTotal.StringFixed(2),
		PlatformFeeApplied:     c.PlatformFeeApplied,
		PlatformFee:            c.PlatformFeeAmount.StringFixed(2),
		Total:                  c.Total.StringFixed(2),
		TotalLabel:             billing.FormatAmount(c.Total, currency),
		ActiveCount:            c.ActiveCount,
		TrialCount:             c.TrialCount,
		Lines:                  make([]ChargeLineResponse, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		label := billing.TrialLabel
		if l.Status != billing.StatusTrial {
			label = billing.FormatAmount(l.Charged, currency)
		}
		out.Lines = append(out.Lines, ChargeLineResponse{
			SubscriptionID: l.SubscriptionID,
			Name:           l.Name,
			Status:         string(l.Status),
			ListPrice:      l.ListPrice.StringFixed(2),
			Charged:        l.Charged.StringFixed(2),
			Label:          label,
		})
	}
	return out
}

// ProjectedToolResponse is an active tool billed on the next cycle.
type ProjectedToolResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Name           string `json:"name" example:"Family Calendar"`
	Price          string `json:"price" example:"4.99"`
	PriceLabel     string `json:"price_label" example:"$4.99"`
}

// ProjectedTrialResponse is a trial as seen from the next billing date.
type ProjectedTrialResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Name           string `json:"name" example:"Meal Planner"`
	Price          string `json:"price" example:"6.00"`
	PriceLabel     string `json:"price_label" example:"$6.00"`
	TrialEndDate   string `json:"trial_end_date" example:"2025-04-01"`
	DaysUntilEnd   int    `json:"days_until_end" example:"3"`
}

// ProjectionResponse is the simulated charge on the next billing date.
type ProjectionResponse struct {
	Currency               string                   `json:"currency" example:"USD"`
	NextBillingDate        *string                  `json:"next_billing_date" example:"2025-04-15"`
	ThisMonthAnchorDate    *string                  `json:"this_month_anchor_date,omitempty" example:"2025-03-15"`
	AnchorDay              int                      `json:"anchor_day,omitempty" example:"15"`
	ToolSubscriptionsTotal string                   `json:"tool_subscriptions_total" example:"15.00"`
	PlatformFeeApplied     bool                     `json:"platform_fee_applied" example:"true"`
	PlatformFee            string                   `json:"platform_fee" example:"5.00"`
	Total                  string                   `json:"total" example:"20.00"`
	TotalLabel             string                   `json:"total_label" example:"$20.00"`
	ActiveTools            []ProjectedToolResponse  `json:"active_tools"`
	TrialsEnding           []ProjectedTrialResponse `json:"trials_ending"`
	OngoingTrials          []ProjectedTrialResponse `json:"ongoing_trials"`
}

// NewProjectionResponse renders a next-cycle projection.
func NewProjectionResponse(p billing.Projection, currency string) ProjectionResponse {
	out := ProjectionResponse{
		Currency:               currency,
		NextBillingDate:        formatDate(p.NextBillingDate),
		ThisMonthAnchorDate:    formatDate(p.ThisMonthAnchorDate),
		AnchorDay:              p.AnchorDay,
		ToolSubscriptionsTotal: p.ToolSubscriptionsTotal.StringFixed(2),
		PlatformFeeApplied:     p.PlatformFeeApplied,
		PlatformFee:            p.PlatformFeeAmount.StringFixed(2),
		Total:                  p.Total.StringFixed(2),
		TotalLabel:             billing.FormatAmount(p.Total, currency),
		ActiveTools:            make([]ProjectedToolResponse, 0, len(p.ActiveTools)),
		TrialsEnding:           trialResponses(p.TrialsEnding, currency),
		OngoingTrials:          trialResponses(p.OngoingTrials, currency),
	}
	for _, t := range p.ActiveTools {
		out.ActiveTools = append(out.ActiveTools, ProjectedToolResponse{
			SubscriptionID: t.SubscriptionID,
			Name:           t.Name,
			Price:          t.Price.StringFixed(2),
			PriceLabel:     billing.FormatAmount(t.Price, currency),
		})
	}
	return out
}

func trialResponses(trials []billing.ProjectedTrial, currency string) []ProjectedTrialResponse {
	out := make([]ProjectedTrialResponse, 0, len(trials))
	for _, t := range trials {
		out = append(out, ProjectedTrialResponse{
			SubscriptionID: t.SubscriptionID,
			Name:           t.Name,
			Price:          t.Price.StringFixed(2),
			PriceLabel:     billing.FormatAmount(t.Price, currency),
			TrialEndDate:   t.TrialEndDate.Format(DateLayout),
			DaysUntilEnd:   t.DaysUntilEnd,
		})
	}
	return out
}

// SummaryResponse carries both billing views for one instant.
type SummaryResponse struct {
	UserID     string             `json:"user_id" example:"user-1"`
	At         time.Time          `json:"at"`
	Currency   string             `json:"currency" example:"USD"`
	Current    ChargeResponse     `json:"current"`
	Projection ProjectionResponse `json:"projection"`
}

// NewSummaryResponse converts a service summary into its API form.
func NewSummaryResponse(s app.Summary) SummaryResponse {
	return SummaryResponse{
		UserID:     s.UserID,
		At:         s.At,
		Currency:   s.Currency,
		Current:    NewChargeResponse(s.Current, s.Currency),
		Projection: NewProjectionResponse(s.Projection, s.Currency),
	}
}
