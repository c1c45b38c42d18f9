package billing

import "time"

// Anchor is the shared day of month on which the whole account is charged.
// It is derived from the ledger on every call and never stored.
type Anchor struct {
	Day            int       // 1..31
	EffectiveDate  time.Time // earliest effective billing date in the ledger
	SubscriptionID string    // subscription that set the anchor
}

// ResolveAnchor returns the anchor for the ledger: the day of month of the
// earliest effective billing date among non-cancelled subscriptions.
// The second result is false when no subscription is billable.
// This is a PURE function.
func ResolveAnchor(ledger []Subscription) (Anchor, bool) {
	var (
		anchor Anchor
		found  bool
	)
	for _, s := range ledger {
		if !s.IsBillable() {
			continue
		}
		eff := s.EffectiveBillingDate()
		if !found || eff.Before(anchor.EffectiveDate) {
			anchor = Anchor{
				Day:            eff.Day(),
				EffectiveDate:  eff,
				SubscriptionID: s.ID,
			}
			found = true
		}
	}
	return anchor, found
}

// DateIn returns the anchor date for the month containing t, at midnight in t's
// location, clamped to the month's last day.
func (a Anchor) DateIn(t time.Time) time.Time {
	return AnchorDate(t.Year(), t.Month(), a.Day, t.Location())
}

// NextAfter returns the anchor date in the calendar month after the one
// containing t. It is always one full cycle ahead, even when this month's
// anchor date has not yet occurred.
func (a Anchor) NextAfter(t time.Time) time.Time {
	return AnchorDate(t.Year(), t.Month()+1, a.Day, t.Location())
}
