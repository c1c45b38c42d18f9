// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/artpar/homekeep/domain/billing"
	"github.com/artpar/homekeep/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a subscription does not exist.
	ErrNotFound = errors.New("subscription not found")

	// ErrForbidden is returned when a subscription belongs to another user.
	ErrForbidden = errors.New("subscription belongs to another account")

	// ErrCorruptLedger is returned when stored subscriptions fail validation.
	// It wraps the underlying billing error.
	ErrCorruptLedger = errors.New("stored ledger is invalid")
)

// DefaultTrialDays is the trial length used when none is configured.
const DefaultTrialDays = 7

// Computation kinds reported to the BillingRecorder.
const (
	KindCurrent    = "current"
	KindProjection = "projection"
)

// BillingConfig contains hot-reloadable billing configuration.
type BillingConfig struct {
	PlatformFee decimal.Decimal
	Currency    string
	Location    *time.Location // calendar used for anchor dates, UTC when nil
	TrialDays   int
}

// AccountDeps contains dependencies for AccountService.
type AccountDeps struct {
	Subscriptions ports.SubscriptionStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Recorder      ports.BillingRecorder // optional
	Logger        zerolog.Logger
}

// AccountService manages an account's subscriptions and computes its bill.
type AccountService struct {
	subs     ports.SubscriptionStore
	clock    ports.Clock
	idGen    ports.IDGenerator
	recorder ports.BillingRecorder
	logger   zerolog.Logger

	cfg atomic.Pointer[BillingConfig]
}

// NewAccountService creates a new account service.
func NewAccountService(deps AccountDeps, cfg BillingConfig) *AccountService {
	s := &AccountService{
		subs:     deps.Subscriptions,
		clock:    deps.Clock,
		idGen:    deps.IDGen,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig swaps the billing configuration. Safe to call concurrently
// with requests; in-flight computations keep the config they started with.
func (s *AccountService) UpdateConfig(cfg BillingConfig) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Currency == "" {
		cfg.Currency = billing.DefaultCurrency
	}
	if cfg.TrialDays < 0 {
		cfg.TrialDays = DefaultTrialDays
	}
	s.cfg.Store(&cfg)
}

// Config returns the billing configuration in effect.
func (s *AccountService) Config() BillingConfig {
	return *s.cfg.Load()
}

// -----------------------------------------------------------------------------
// Billing
// -----------------------------------------------------------------------------

// Summary is the current charge and the next-cycle projection computed
// against the same ledger and instant.
type Summary struct {
	UserID     string
	At         time.Time
	Currency   string
	Current    billing.ChargeSummary
	Projection billing.Projection
}

// Ledger loads and validates the user's ledger, with timestamps in the
// billing location.
func (s *AccountService) Ledger(ctx context.Context, userID string) (billing.Ledger, error) {
	return s.ledger(ctx, userID, s.Config())
}

func (s *AccountService) ledger(ctx context.Context, userID string, cfg BillingConfig) (billing.Ledger, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	ledger, err := billing.NewLedger(subs)
	if err != nil {
		if s.recorder != nil {
			s.recorder.RecordLedgerRejected()
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("stored ledger failed validation")
		return nil, fmt.Errorf("%w: user %s: %w", ErrCorruptLedger, userID, err)
	}
	return ledger.In(cfg.Location), nil
}

// Current returns what the account is charged as of at. A zero at uses the clock.
func (s *AccountService) Current(ctx context.Context, userID string, at time.Time) (billing.ChargeSummary, error) {
	cfg := s.Config()
	start := time.Now()

	ledger, err := s.ledger(ctx, userID, cfg)
	if err != nil {
		return billing.ChargeSummary{}, err
	}
	result := billing.CurrentCharge(ledger, s.resolveNow(at, cfg), cfg.PlatformFee)

	s.record(KindCurrent, start)
	return result, nil
}

// Projection returns the simulated charge on the next billing date as seen
// from at. A zero at uses the clock.
func (s *AccountService) Projection(ctx context.Context, userID string, at time.Time) (billing.Projection, error) {
	cfg := s.Config()
	start := time.Now()

	ledger, err := s.ledger(ctx, userID, cfg)
	if err != nil {
		return billing.Projection{}, err
	}
	result := billing.ProjectNextCycle(ledger, s.resolveNow(at, cfg), cfg.PlatformFee)

	s.record(KindProjection, start)
	return result, nil
}

// Summary computes both views from a single ledger read.
func (s *AccountService) Summary(ctx context.Context, userID string, at time.Time) (Summary, error) {
	cfg := s.Config()
	start := time.Now()

	ledger, err := s.ledger(ctx, userID, cfg)
	if err != nil {
		return Summary{}, err
	}
	now := s.resolveNow(at, cfg)

	sum := Summary{
		UserID:     userID,
		At:         now,
		Currency:   cfg.Currency,
		Current:    billing.CurrentCharge(ledger, now, cfg.PlatformFee),
		Projection: billing.ProjectNextCycle(ledger, now, cfg.PlatformFee),
	}

	s.record(KindCurrent, start)
	s.record(KindProjection, start)
	return sum, nil
}

func (s *AccountService) resolveNow(at time.Time, cfg BillingConfig) time.Time {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return at.In(cfg.Location)
}

func (s *AccountService) record(kind string, start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordComputation(kind, time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// AcquireParams describes a tool being acquired.
type AcquireParams struct {
	UserID              string
	ToolID              string
	Name                string
	Price               decimal.Decimal
	Trial               bool
	TrialEndDate        *time.Time // defaults to creation plus the configured trial days
	PromoCode           string
	PromoExpirationDate *time.Time
}

// Acquire creates a subscription for the user, either as a trial or directly
// active.
func (s *AccountService) Acquire(ctx context.Context, p AcquireParams) (billing.Subscription, error) {
	if p.UserID == "" {
		return billing.Subscription{}, fmt.Errorf("%w: user_id is required", billing.ErrInvalidSubscription)
	}

	cfg := s.Config()
	now := s.clock.Now().In(cfg.Location)

	sub := billing.Subscription{
		ID:                  s.idGen.New(),
		UserID:              p.UserID,
		ToolID:              p.ToolID,
		Name:                p.Name,
		Price:               p.Price,
		Status:              billing.StatusActive,
		CreatedAt:           now,
		PromoCode:           p.PromoCode,
		PromoExpirationDate: p.PromoExpirationDate,
		UpdatedAt:           now,
	}
	if sub.Name == "" {
		sub.Name = p.ToolID
	}
	if p.Trial {
		end := now.AddDate(0, 0, cfg.TrialDays)
		if p.TrialEndDate != nil {
			end = *p.TrialEndDate
		}
		sub.Status = billing.StatusTrial
		sub.TrialEndDate = &end
	}

	if err := sub.Validate(); err != nil {
		return billing.Subscription{}, err
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return billing.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordAcquired(string(sub.Status))
	}
	s.logger.Info().
		Str("user_id", sub.UserID).
		Str("subscription_id", sub.ID).
		Str("tool_id", sub.ToolID).
		Str("status", string(sub.Status)).
		Str("price", sub.Price.String()).
		Msg("subscription acquired")

	return sub.In(cfg.Location), nil
}

// Cancel marks a subscription cancelled. Cancelling twice is a no-op.
func (s *AccountService) Cancel(ctx context.Context, userID, id string) (billing.Subscription, error) {
	sub, err := s.owned(ctx, userID, id)
	if err != nil {
		return billing.Subscription{}, err
	}
	if sub.Status == billing.StatusCancelled {
		return sub.In(s.Config().Location), nil
	}

	sub.Status = billing.StatusCancelled
	if err := s.subs.Update(ctx, sub); err != nil {
		return billing.Subscription{}, fmt.Errorf("cancel subscription: %w", mapStoreErr(err))
	}

	if s.recorder != nil {
		s.recorder.RecordCancelled()
	}
	s.logger.Info().Str("user_id", userID).Str("subscription_id", id).Msg("subscription cancelled")

	return sub.In(s.Config().Location), nil
}

// Remove deletes a subscription from the ledger.
func (s *AccountService) Remove(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete subscription: %w", mapStoreErr(err))
	}

	if s.recorder != nil {
		s.recorder.RecordRemoved()
	}
	s.logger.Info().Str("user_id", userID).Str("subscription_id", id).Msg("subscription removed")
	return nil
}

// Get returns one of the user's subscriptions.
func (s *AccountService) Get(ctx context.Context, userID, id string) (billing.Subscription, error) {
	sub, err := s.owned(ctx, userID, id)
	if err != nil {
		return billing.Subscription{}, err
	}
	return sub.In(s.Config().Location), nil
}

// List returns all of the user's subscriptions, cancelled ones included.
func (s *AccountService) List(ctx context.Context, userID string) ([]billing.Subscription, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return billing.Ledger(subs).In(s.Config().Location), nil
}

func (s *AccountService) owned(ctx context.Context, userID, id string) (billing.Subscription, error) {
	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return billing.Subscription{}, mapStoreErr(err)
	}
	if sub.UserID != userID {
		return billing.Subscription{}, ErrForbidden
	}
	return sub, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
