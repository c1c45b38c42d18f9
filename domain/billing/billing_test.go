package billing_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/artpar/homekeep/domain/billing"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func ptr(t time.Time) *time.Time {
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func active(id, price string, created time.Time) billing.Subscription {
	return billing.Subscription{
		ID:        id,
		Name:      id,
		Price:     dec(price),
		Status:    billing.StatusActive,
		CreatedAt: created,
	}
}

func trial(id, price string, created, end time.Time) billing.Subscription {
	return billing.Subscription{
		ID:           id,
		Name:         id,
		Price:        dec(price),
		Status:       billing.StatusTrial,
		CreatedAt:    created,
		TrialEndDate: ptr(end),
	}
}

func cancelled(id, price string, created time.Time) billing.Subscription {
	return billing.Subscription{
		ID:        id,
		Name:      id,
		Price:     dec(price),
		Status:    billing.StatusCancelled,
		CreatedAt: created,
	}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

func TestSubscriptionStatus_Valid(t *testing.T) {
	tests := []struct {
		status billing.SubscriptionStatus
		want   bool
	}{
		{billing.StatusTrial, true},
		{billing.StatusActive, true},
		{billing.StatusCancelled, true},
		{"trialing", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscription_EffectiveBillingDate(t *testing.T) {
	created := date(2025, 3, 1)

	a := active("a", "10", created)
	if got := a.EffectiveBillingDate(); !got.Equal(date(2025, 3, 8)) {
		t.Errorf("active EffectiveBillingDate = %v, want 2025-03-08", got)
	}

	tr := trial("t", "5", created, date(2025, 3, 20))
	if got := tr.EffectiveBillingDate(); !got.Equal(date(2025, 3, 20)) {
		t.Errorf("trial EffectiveBillingDate = %v, want 2025-03-20", got)
	}

	// Clocks spring forward on 2025-03-09 in New York; seven calendar days
	// from a late-evening creation still land on the 9th.
	ny := newYork(t)
	late := active("late", "10", time.Date(2025, 3, 2, 23, 30, 0, 0, ny))
	want := time.Date(2025, 3, 9, 23, 30, 0, 0, ny)
	if got := late.EffectiveBillingDate(); !got.Equal(want) {
		t.Errorf("active across DST EffectiveBillingDate = %v, want %v", got, want)
	}
	anchor, ok := billing.ResolveAnchor([]billing.Subscription{late})
	if !ok || anchor.Day != 9 {
		t.Errorf("anchor across DST = %+v, want day 9", anchor)
	}
}

func TestSubscription_ConvertedBy(t *testing.T) {
	created := date(2025, 3, 1)
	tr := trial("t", "5", created, time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC))

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"day before", date(2025, 3, 14), false},
		{"same calendar day at midnight", date(2025, 3, 15), true},
		{"after", date(2025, 4, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.ConvertedBy(tt.at); got != tt.want {
				t.Errorf("ConvertedBy(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if !active("a", "1", created).ConvertedBy(created) {
		t.Error("active subscription should always count as converted")
	}
	if cancelled("c", "1", created).ConvertedBy(date(2030, 1, 1)) {
		t.Error("cancelled subscription should never count as converted")
	}
}

func TestSubscription_Validate(t *testing.T) {
	created := date(2025, 3, 10)

	noEnd := trial("t", "5", created, created)
	noEnd.TrialEndDate = nil

	tests := []struct {
		name    string
		sub     billing.Subscription
		wantErr bool
	}{
		{"active ok", active("a", "10", created), false},
		{"trial ok", trial("t", "5", created, date(2025, 3, 17)), false},
		{"trial ending on creation day", trial("t", "5", created, created), false},
		{"missing id", active("", "10", created), true},
		{"negative price", active("a", "-1", created), true},
		{"unknown status", billing.Subscription{ID: "x", Status: "paused", CreatedAt: created}, true},
		{"missing created_at", active("a", "10", time.Time{}), true},
		{"trial without end", noEnd, true},
		{"trial end before creation", trial("t", "5", created, date(2025, 3, 9)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, billing.ErrInvalidSubscription) {
				t.Errorf("error %v does not wrap ErrInvalidSubscription", err)
			}
		})
	}
}

func TestNewLedger(t *testing.T) {
	created := date(2025, 3, 10)

	ledger, err := billing.NewLedger([]billing.Subscription{
		active("a", "10", created),
		trial("b", "5", created, date(2025, 3, 17)),
	})
	if err != nil {
		t.Fatalf("NewLedger error: %v", err)
	}
	if len(ledger) != 2 {
		t.Errorf("len = %d, want 2", len(ledger))
	}

	_, err = billing.NewLedger([]billing.Subscription{
		active("a", "10", created),
		active("a", "12", created),
	})
	if !errors.Is(err, billing.ErrDuplicateSubscription) {
		t.Errorf("duplicate ids: err = %v, want ErrDuplicateSubscription", err)
	}

	_, err = billing.NewLedger([]billing.Subscription{active("a", "-3", created)})
	if !errors.Is(err, billing.ErrInvalidSubscription) {
		t.Errorf("invalid record: err = %v, want ErrInvalidSubscription", err)
	}
}

func TestLedger_Billable(t *testing.T) {
	created := date(2025, 3, 10)
	ledger := billing.Ledger{
		active("a", "10", created),
		cancelled("c", "99", created),
		trial("t", "5", created, date(2025, 3, 17)),
	}

	got := ledger.Billable()
	if len(got) != 2 {
		t.Fatalf("Billable len = %d, want 2", len(got))
	}
	for _, s := range got {
		if s.Status == billing.StatusCancelled {
			t.Errorf("cancelled subscription %s returned as billable", s.ID)
		}
	}
}

func TestLedger_In(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on Mar 1 is still Feb 28 at UTC-5.
	created := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)
	ledger := billing.Ledger{trial("t", "5", created, created)}

	moved := ledger.In(loc)
	if moved[0].TrialEndDate.Day() != 28 {
		t.Errorf("TrialEndDate day = %d, want 28", moved[0].TrialEndDate.Day())
	}
	if ledger[0].TrialEndDate.Location() != time.UTC {
		t.Error("In must not modify the original ledger")
	}
}

// -----------------------------------------------------------------------------
// Dates
// -----------------------------------------------------------------------------

func TestAnchorDate_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{"regular", 2025, time.March, 15, date(2025, 3, 15)},
		{"31 in february", 2025, time.February, 31, date(2025, 2, 28)},
		{"31 in leap february", 2024, time.February, 31, date(2024, 2, 29)},
		{"31 in april", 2025, time.April, 31, date(2025, 4, 30)},
		{"30 in february", 2025, time.February, 30, date(2025, 2, 28)},
		{"month overflow rolls year", 2025, time.December + 1, 31, date(2026, 1, 31)},
		{"day below range", 2025, time.June, 0, date(2025, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.AnchorDate(tt.year, tt.month, tt.day, time.UTC)
			if !got.Equal(tt.want) {
				t.Errorf("AnchorDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		if got := billing.DaysInMonth(tt.year, tt.month, time.UTC); got != tt.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"past", date(2025, 2, 20), 0},
		{"same instant", now, 0},
		{"later the same day", time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC), 0},
		{"next midnight", date(2025, 3, 2), 1},
		{"exactly three days", now.Add(72 * time.Hour), 3},
		{"three and a half days", now.Add(84 * time.Hour), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := billing.DaysBetween(now, tt.to); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny := newYork(t)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, ny)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, ny)

	if got := billing.DaysBetween(from, to); got != 9 {
		t.Errorf("DaysBetween across spring forward = %d, want 9", got)
	}

	// The end is read in from's location: 01:00 UTC on the 3rd is still the 2nd in New York.
	evening := time.Date(2025, 3, 1, 20, 0, 0, 0, ny)
	if got := billing.DaysBetween(evening, time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("DaysBetween mixed locations = %d, want 1", got)
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 3, 9, 23, 59, 59, 999, time.UTC)
	if got := billing.StartOfDay(in); !got.Equal(date(2025, 3, 9)) {
		t.Errorf("StartOfDay = %v, want 2025-03-09", got)
	}
}

// -----------------------------------------------------------------------------
// Money
// -----------------------------------------------------------------------------

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"0", "USD", "$0.00"},
		{"1", "", "$1.00"},
		{"29.99", "usd", "$29.99"},
		{"1000", "USD", "$1,000.00"},
		{"1234567.891", "USD", "$1,234,567.89"},
		{"0.5", "USD", "$0.50"},
		{"-5", "USD", "-$5.00"},
		{"12.5", "EUR", "12.50 EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := billing.FormatAmount(dec(tt.amount), tt.currency)
			if got != tt.want {
				t.Errorf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestPriceLabel(t *testing.T) {
	created := date(2025, 3, 1)

	if got := billing.PriceLabel(trial("t", "8", created, created), "USD"); got != billing.TrialLabel {
		t.Errorf("trial label = %q, want %q", got, billing.TrialLabel)
	}
	if got := billing.PriceLabel(active("a", "4.5", created), "USD"); got != "$4.50" {
		t.Errorf("active label = %q, want $4.50", got)
	}
}
