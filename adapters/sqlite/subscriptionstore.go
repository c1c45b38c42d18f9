package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/artpar/homekeep/domain/billing"
	"github.com/artpar/homekeep/ports"
	"github.com/mattn/go-sqlite3"
)

// Store errors, shared with the other adapters through ports.
var (
	ErrNotFound  = ports.ErrNotFound
	ErrDuplicate = ports.ErrDuplicate
)

const subscriptionColumns = `
	id, user_id, tool_id, name, price, status, created_at,
	trial_end_date, promo_code, promo_expiration_date, updated_at`

// SubscriptionStore implements ports.SubscriptionStore using SQLite.
// Timestamps are written in UTC; callers convert into the billing location.
type SubscriptionStore struct {
	db  *DB
	now func() time.Time
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db, now: time.Now}
}

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (billing.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = ?
	`, id)
	return scanSubscription(row)
}

// ListByUser returns all subscriptions of a user, oldest first.
func (s *SubscriptionStore) ListByUser(ctx context.Context, userID string) ([]billing.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []billing.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Create stores a new subscription.
func (s *SubscriptionStore) Create(ctx context.Context, sub billing.Subscription) error {
	now := s.now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID, sub.UserID, sub.ToolID, sub.Name, sub.Price, string(sub.Status),
		sub.CreatedAt.UTC(), nullTime(sub.TrialEndDate),
		nullString(sub.PromoCode), nullTime(sub.PromoExpirationDate),
		sub.UpdatedAt.UTC(),
	)
	if isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies every mutable column of a subscription.
func (s *SubscriptionStore) Update(ctx context.Context, sub billing.Subscription) error {
	sub.UpdatedAt = s.now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET tool_id = ?, name = ?, price = ?, status = ?,
		    trial_end_date = ?, promo_code = ?, promo_expiration_date = ?,
		    updated_at = ?
		WHERE id = ?
	`,
		sub.ToolID, sub.Name, sub.Price, string(sub.Status),
		nullTime(sub.TrialEndDate), nullString(sub.PromoCode), nullTime(sub.PromoExpirationDate),
		sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete removes a subscription.
func (s *SubscriptionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (billing.Subscription, error) {
	var (
		sub        billing.Subscription
		status     string
		promoCode  sql.NullString
		trialEnd   sql.NullTime
		promoUntil sql.NullTime
	)

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ToolID, &sub.Name, &sub.Price, &status,
		&sub.CreatedAt, &trialEnd, &promoCode, &promoUntil, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.Subscription{}, ErrNotFound
	}
	if err != nil {
		return billing.Subscription{}, err
	}

	sub.Status = billing.SubscriptionStatus(status)
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	if trialEnd.Valid {
		t := trialEnd.Time.UTC()
		sub.TrialEndDate = &t
	}
	if promoUntil.Valid {
		t := promoUntil.Time.UTC()
		sub.PromoExpirationDate = &t
	}
	if promoCode.Valid {
		sub.PromoCode = promoCode.String
	}
	return sub, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)
