package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeLine is one subscription's contribution to the current charge.
type ChargeLine struct {
	SubscriptionID string
	Name           string
	Status         SubscriptionStatus
	ListPrice      decimal.Decimal // steady-state price
	Charged        decimal.Decimal // zero while in trial
}

// ChargeSummary is what the account is charged right now.
type ChargeSummary struct {
	ToolSubscriptionsTotal decimal.Decimal
	PlatformFeeApplied     bool
	PlatformFeeAmount      decimal.Decimal
	Total                  decimal.Decimal

	AnchorDay        int        // 0 when the ledger has no anchor
	CurrentCycleDate *time.Time // anchor date in the month containing now
	ActiveCount      int
	TrialCount       int
	Lines            []ChargeLine
}

// CurrentCharge computes the current monthly charge. Active subscriptions are
// charged their price, trials are free until they convert, cancelled ones are
// ignored. The platform fee applies when at least one active or trial
// subscription exists.
// This is a PURE function.
func CurrentCharge(ledger []Subscription, now time.Time, platformFee decimal.Decimal) ChargeSummary {
	summary := ChargeSummary{
		ToolSubscriptionsTotal: decimal.Zero,
		PlatformFeeAmount:      platformFee,
		Total:                  decimal.Zero,
	}

	for _, s := range ledger {
		switch s.Status {
		case StatusActive:
			summary.ActiveCount++
			summary.ToolSubscriptionsTotal = summary.ToolSubscriptionsTotal.Add(s.Price)
			summary.Lines = append(summary.Lines, ChargeLine{
				SubscriptionID: s.ID,
				Name:           s.Name,
				Status:         s.Status,
				ListPrice:      s.Price,
				Charged:        s.Price,
			})
		case StatusTrial:
			summary.TrialCount++
			summary.Lines = append(summary.Lines, ChargeLine{
				SubscriptionID: s.ID,
				Name:           s.Name,
				Status:         s.Status,
				ListPrice:      s.Price,
				Charged:        decimal.Zero,
			})
		}
	}

	summary.PlatformFeeApplied = summary.ActiveCount+summary.TrialCount > 0
	summary.Total = summary.ToolSubscriptionsTotal
	if summary.PlatformFeeApplied {
		summary.Total = summary.Total.Add(platformFee)
	}

	if anchor, ok := ResolveAnchor(ledger); ok {
		date := anchor.DateIn(now)
		summary.AnchorDay = anchor.Day
		summary.CurrentCycleDate = &date
	}

	return summary
}
