package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectedTool is an active subscription billed on the next cycle.
type ProjectedTool struct {
	SubscriptionID string
	Name           string
	Price          decimal.Decimal
}

// ProjectedTrial is a trial subscription as seen from the next billing date.
type ProjectedTrial struct {
	SubscriptionID string
	Name           string
	Price          decimal.Decimal
	TrialEndDate   time.Time
	DaysUntilEnd   int // whole days from now, never negative
}

// Projection is the simulated charge on the next occurrence of the anchor day.
type Projection struct {
	NextBillingDate        *time.Time // nil when the ledger has no anchor
	ThisMonthAnchorDate    *time.Time
	AnchorDay              int
	ToolSubscriptionsTotal decimal.Decimal
	PlatformFeeApplied     bool
	PlatformFeeAmount      decimal.Decimal
	Total                  decimal.Decimal

	ActiveTools   []ProjectedTool
	TrialsEnding  []ProjectedTrial // converted by the next billing date, charged
	OngoingTrials []ProjectedTrial // still in trial then, not charged
}

// IsEmpty reports whether the projection has no billing date.
func (p Projection) IsEmpty() bool {
	return p.NextBillingDate == nil
}

// ProjectNextCycle simulates the charge on the anchor day of the month after
// the one containing now. Trials whose end date falls on or before that day are
// billed as converted; later trials are not billed but still keep the platform
// fee on the account.
// This is a PURE function.
func ProjectNextCycle(ledger []Subscription, now time.Time, platformFee decimal.Decimal) Projection {
	p := Projection{
		ToolSubscriptionsTotal: decimal.Zero,
		PlatformFeeAmount:      platformFee,
		Total:                  decimal.Zero,
	}

	anchor, ok := ResolveAnchor(ledger)
	if !ok {
		return p
	}

	thisMonth := anchor.DateIn(now)
	next := anchor.NextAfter(now)
	p.AnchorDay = anchor.Day
	p.ThisMonthAnchorDate = &thisMonth
	p.NextBillingDate = &next

	for _, s := range ledger {
		switch s.Status {
		case StatusActive:
			p.ActiveTools = append(p.ActiveTools, ProjectedTool{
				SubscriptionID: s.ID,
				Name:           s.Name,
				Price:          s.Price,
			})
			p.ToolSubscriptionsTotal = p.ToolSubscriptionsTotal.Add(s.Price)

		case StatusTrial:
			if s.TrialEndDate == nil {
				continue
			}
			trial := ProjectedTrial{
				SubscriptionID: s.ID,
				Name:           s.Name,
				Price:          s.Price,
				TrialEndDate:   *s.TrialEndDate,
				DaysUntilEnd:   DaysBetween(now, *s.TrialEndDate),
			}
			if s.ConvertedBy(next) {
				p.TrialsEnding = append(p.TrialsEnding, trial)
				p.ToolSubscriptionsTotal = p.ToolSubscriptionsTotal.Add(s.Price)
			} else {
				p.OngoingTrials = append(p.OngoingTrials, trial)
			}
		}
	}

	p.PlatformFeeApplied = len(p.ActiveTools) > 0 ||
		len(p.TrialsEnding) > 0 ||
		len(p.OngoingTrials) > 0

	p.Total = p.ToolSubscriptionsTotal
	if p.PlatformFeeApplied {
		p.Total = p.Total.Add(platformFee)
	}

	return p
}
