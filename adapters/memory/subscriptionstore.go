// Package memory provides in-memory implementations of storage ports.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artpar/homekeep/domain/billing"
	"github.com/artpar/homekeep/ports"
)

// Store errors, shared with the other adapters through ports.
var (
	ErrNotFound  = ports.ErrNotFound
	ErrDuplicate = ports.ErrDuplicate
)

// SubscriptionStore is an in-memory implementation of ports.SubscriptionStore.
type SubscriptionStore struct {
	mu     sync.RWMutex
	subs   map[string]billing.Subscription // by ID
	byUser map[string]map[string]struct{}  // user ID -> subscription IDs
	now    func() time.Time
}

// NewSubscriptionStore creates a new in-memory subscription store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs:   make(map[string]billing.Subscription),
		byUser: make(map[string]map[string]struct{}),
		now:    time.Now,
	}
}

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (billing.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return billing.Subscription{}, ErrNotFound
	}
	return copySubscription(sub), nil
}

// ListByUser returns all subscriptions of a user, oldest first.
func (s *SubscriptionStore) ListByUser(ctx context.Context, userID string) ([]billing.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	subs := make([]billing.Subscription, 0, len(ids))
	for id := range ids {
		subs = append(subs, copySubscription(s.subs[id]))
	}
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.Before(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

// Create stores a new subscription.
func (s *SubscriptionStore) Create(ctx context.Context, sub billing.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.ID]; exists {
		return ErrDuplicate
	}

	now := s.now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}

	s.subs[sub.ID] = copySubscription(sub)
	if s.byUser[sub.UserID] == nil {
		s.byUser[sub.UserID] = make(map[string]struct{})
	}
	s.byUser[sub.UserID][sub.ID] = struct{}{}
	return nil
}

// Update replaces an existing subscription. The owner cannot change.
func (s *SubscriptionStore) Update(ctx context.Context, sub billing.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.subs[sub.ID]
	if !ok {
		return ErrNotFound
	}

	sub.UserID = old.UserID
	sub.CreatedAt = old.CreatedAt
	sub.UpdatedAt = s.now().UTC()
	s.subs[sub.ID] = copySubscription(sub)
	return nil
}

// Delete removes a subscription.
func (s *SubscriptionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.subs, id)
	delete(s.byUser[sub.UserID], id)
	if len(s.byUser[sub.UserID]) == 0 {
		delete(s.byUser, sub.UserID)
	}
	return nil
}

// copySubscription detaches the optional dates so callers cannot mutate
// stored records through shared pointers.
func copySubscription(sub billing.Subscription) billing.Subscription {
	if sub.TrialEndDate != nil {
		t := *sub.TrialEndDate
		sub.TrialEndDate = &t
	}
	if sub.PromoExpirationDate != nil {
		t := *sub.PromoExpirationDate
		sub.PromoExpirationDate = &t
	}
	return sub
}

var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
