// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/homekeep/domain/billing"
)

// Store errors shared by every SubscriptionStore implementation.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// SubscriptionStore persists the subscriptions that make up an account ledger.
type SubscriptionStore interface {
	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id string) (billing.Subscription, error)

	// ListByUser returns every subscription of a user, cancelled ones included,
	// oldest first.
	ListByUser(ctx context.Context, userID string) ([]billing.Subscription, error)

	// Create stores a new subscription.
	Create(ctx context.Context, sub billing.Subscription) error

	// Update modifies a subscription.
	Update(ctx context.Context, sub billing.Subscription) error

	// Delete removes a subscription.
	Delete(ctx context.Context, id string) error
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// BillingRecorder records billing computations and subscription lifecycle events.
type BillingRecorder interface {
	// RecordComputation records one engine run of the given kind
	// ("current", "projection") and its duration.
	RecordComputation(kind string, d time.Duration)

	// RecordLedgerRejected records a ledger that failed validation.
	RecordLedgerRejected()

	// RecordAcquired records a new subscription with its initial status.
	RecordAcquired(status string)

	// RecordCancelled records a subscription moved to cancelled.
	RecordCancelled()

	// RecordRemoved records a deleted subscription.
	RecordRemoved()
}
