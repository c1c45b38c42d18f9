// Package billing provides subscription value types and the pure functions that
// resolve the account billing anchor, the current charge and the next-cycle projection.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus represents subscription state.
type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusCancelled:
		return true
	}
	return false
}

// ImplicitTrialDays is the window, in calendar days, every subscription is
// treated as having passed through for billing-date purposes, including ones
// created directly as active.
const ImplicitTrialDays = 7

var (
	// ErrInvalidSubscription is wrapped by every validation failure.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrDuplicateSubscription is returned when a ledger holds the same ID twice.
	ErrDuplicateSubscription = errors.New("duplicate subscription id")
)

// Subscription represents one tool acquired by a user (value type).
type Subscription struct {
	ID                  string
	UserID              string
	ToolID              string
	Name                string
	Price               decimal.Decimal // monthly charge once active
	Status              SubscriptionStatus
	CreatedAt           time.Time
	TrialEndDate        *time.Time // set only while Status is trial
	PromoCode           string     // display only
	PromoExpirationDate *time.Time // display only
	UpdatedAt           time.Time
}

// IsBillable returns true unless the subscription is cancelled.
func (s Subscription) IsBillable() bool {
	return s.Status == StatusActive || s.Status == StatusTrial
}

// IsTrial returns true if the subscription is in trial.
func (s Subscription) IsTrial() bool {
	return s.Status == StatusTrial
}

// EffectiveBillingDate returns the date this subscription would first bill on:
// the trial end for trials, creation plus the implicit trial window otherwise.
func (s Subscription) EffectiveBillingDate() time.Time {
	if s.Status == StatusTrial && s.TrialEndDate != nil {
		return *s.TrialEndDate
	}
	return s.CreatedAt.AddDate(0, 0, ImplicitTrialDays)
}

// ConvertedBy reports whether the subscription is effectively active as of t.
// Active subscriptions always are; trials are once their end date (by calendar
// day) is on or before t. The stored status is never rewritten.
func (s Subscription) ConvertedBy(t time.Time) bool {
	switch s.Status {
	case StatusActive:
		return true
	case StatusTrial:
		if s.TrialEndDate == nil {
			return false
		}
		return !StartOfDay(s.TrialEndDate.In(t.Location())).After(t)
	}
	return false
}

// Validate checks the record against the ledger invariants.
func (s Subscription) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSubscription)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalidSubscription, s.ID, s.Status)
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("%w: %s: price cannot be negative", ErrInvalidSubscription, s.ID)
	}
	if s.CreatedAt.IsZero() {
		return fmt.Errorf("%w: %s: created_at is required", ErrInvalidSubscription, s.ID)
	}
	if s.Status == StatusTrial {
		if s.TrialEndDate == nil {
			return fmt.Errorf("%w: %s: trial requires trial_end_date", ErrInvalidSubscription, s.ID)
		}
		end := StartOfDay(s.TrialEndDate.In(s.CreatedAt.Location()))
		if end.Before(StartOfDay(s.CreatedAt)) {
			return fmt.Errorf("%w: %s: trial_end_date is before created_at", ErrInvalidSubscription, s.ID)
		}
	}
	return nil
}

// In returns a copy with every timestamp converted to loc.
func (s Subscription) In(loc *time.Location) Subscription {
	s.CreatedAt = s.CreatedAt.In(loc)
	if !s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.UpdatedAt.In(loc)
	}
	if s.TrialEndDate != nil {
		t := s.TrialEndDate.In(loc)
		s.TrialEndDate = &t
	}
	if s.PromoExpirationDate != nil {
		t := s.PromoExpirationDate.In(loc)
		s.PromoExpirationDate = &t
	}
	return s
}

// Ledger is the set of subscriptions held by one account. Order is irrelevant
// to every computation.
type Ledger []Subscription

// NewLedger validates subs and returns them as a Ledger.
func NewLedger(subs []Subscription) (Ledger, error) {
	seen := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	ledger := make(Ledger, len(subs))
	copy(ledger, subs)
	return ledger, nil
}

// Billable returns the non-cancelled subscriptions.
func (l Ledger) Billable() []Subscription {
	var out []Subscription
	for _, s := range l {
		if s.IsBillable() {
			out = append(out, s)
		}
	}
	return out
}

// In returns a copy of the ledger with all timestamps converted to loc.
func (l Ledger) In(loc *time.Location) Ledger {
	if loc == nil {
		return l
	}
	out := make(Ledger, len(l))
	for i, s := range l {
		out[i] = s.In(loc)
	}
	return out
}
