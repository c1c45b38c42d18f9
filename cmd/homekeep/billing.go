package main

import (
	"fmt"
	"io"
	"time"

	apihttp "github.com/artpar/homekeep/adapters/http"
	"github.com/artpar/homekeep/bootstrap"
	"github.com/artpar/homekeep/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Show what an account is charged",
	Long: `Show an account's current monthly charge and the projected charge on
its next billing date.

--at evaluates as of another day (YYYY-MM-DD or RFC3339), which is handy for
previewing when trials convert.

Examples:
  homekeep billing current --user u1
  homekeep billing projection --user u1 --at 2025-03-28
  homekeep billing summary --user u1 -o json`,
}

var billingCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current monthly charge",
	RunE:  runBillingCurrent,
}

var billingProjectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Show the projected charge on the next billing date",
	RunE:  runBillingProjection,
}

var billingSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the current charge and the projection",
	RunE:  runBillingSummary,
}

var (
	billingUser string
	billingAt   string
)

func init() {
	rootCmd.AddCommand(billingCmd)

	for _, c := range []*cobra.Command{billingCurrentCmd, billingProjectionCmd, billingSummaryCmd} {
		billingCmd.AddCommand(c)
		c.Flags().StringVarP(&billingUser, "user", "u", "", "account user ID (required)")
		c.Flags().StringVar(&billingAt, "at", "", "evaluate as of this date (default: now)")
		c.MarkFlagRequired("user")
		addOutputFlag(c)
	}
}

// billingInstant resolves --at in the billing location. Zero means now.
func billingInstant(a *bootstrap.App) (time.Time, error) {
	if billingAt == "" {
		return time.Time{}, nil
	}
	at, err := apihttp.ParseDate(billingAt, a.Accounts.Config().Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at: %w", err)
	}
	return at, nil
}

func runBillingCurrent(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	at, err := billingInstant(a)
	if err != nil {
		return err
	}
	charge, err := a.Accounts.Current(cmd.Context(), billingUser, at)
	if err != nil {
		return fmt.Errorf("failed to compute charge: %w", err)
	}
	currency := a.Accounts.Config().Currency

	return render(cmd.OutOrStdout(), apihttp.NewChargeResponse(charge, currency), func(w io.Writer) error {
		return printCharge(w, charge, currency)
	})
}

func runBillingProjection(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	at, err := billingInstant(a)
	if err != nil {
		return err
	}
	proj, err := a.Accounts.Projection(cmd.Context(), billingUser, at)
	if err != nil {
		return fmt.Errorf("failed to compute projection: %w", err)
	}
	currency := a.Accounts.Config().Currency

	return render(cmd.OutOrStdout(), apihttp.NewProjectionResponse(proj, currency), func(w io.Writer) error {
		return printProjection(w, proj, currency)
	})
}

func runBillingSummary(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	at, err := billingInstant(a)
	if err != nil {
		return err
	}
	sum, err := a.Accounts.Summary(cmd.Context(), billingUser, at)
	if err != nil {
		return fmt.Errorf("failed to compute billing summary: %w", err)
	}

	return render(cmd.OutOrStdout(), apihttp.NewSummaryResponse(sum), func(w io.Writer) error {
		fmt.Fprintf(w, "Account %s as of %s\n\n", sum.UserID, sum.At.Format(apihttp.DateLayout))
		fmt.Fprintln(w, "CURRENT CHARGE")
		if err := printCharge(w, sum.Current, sum.Currency); err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "NEXT CYCLE")
		return printProjection(w, sum.Projection, sum.Currency)
	})
}

func printCharge(w io.Writer, c billing.ChargeSummary, currency string) error {
	if len(c.Lines) == 0 {
		fmt.Fprintln(w, "No active or trial subscriptions; nothing is charged.")
		return nil
	}

	if c.CurrentCycleDate != nil {
		fmt.Fprintf(w, "Billing day %d (this cycle: %s)\n\n", c.AnchorDay, c.CurrentCycleDate.Format(apihttp.DateLayout))
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tSTATUS\tCHARGED")
	fmt.Fprintln(tw, "----\t------\t-------")
	for _, l := range c.Lines {
		label := billing.TrialLabel
		if l.Status != billing.StatusTrial {
			label = billing.FormatAmount(l.Charged, currency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Status, label)
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintf(tw, "Tools\t\t%s\n", billing.FormatAmount(c.ToolSubscriptionsTotal, currency))
	fmt.Fprintf(tw, "Platform fee\t\t%s\n", feeLabel(c.PlatformFeeApplied, c.PlatformFeeAmount, currency))
	fmt.Fprintf(tw, "Total\t\t%s\n", billing.FormatAmount(c.Total, currency))
	return tw.Flush()
}

func printProjection(w io.Writer, p billing.Projection, currency string) error {
	if p.IsEmpty() {
		fmt.Fprintln(w, "No active or trial subscriptions; nothing to project.")
		return nil
	}

	fmt.Fprintf(w, "Next billing date: %s (billing day %d)\n\n", p.NextBillingDate.Format(apihttp.DateLayout), p.AnchorDay)

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tSTATE\tTRIAL ENDS\tCHARGED")
	fmt.Fprintln(tw, "----\t-----\t----------\t-------")
	for _, t := range p.ActiveTools {
		fmt.Fprintf(tw, "%s\tactive\t-\t%s\n", t.Name, billing.FormatAmount(t.Price, currency))
	}
	for _, t := range p.TrialsEnding {
		fmt.Fprintf(tw, "%s\ttrial converts\t%s (in %d days)\t%s\n",
			t.Name, t.TrialEndDate.Format(apihttp.DateLayout), t.DaysUntilEnd, billing.FormatAmount(t.Price, currency))
	}
	for _, t := range p.OngoingTrials {
		fmt.Fprintf(tw, "%s\ttrial continues\t%s (in %d days)\t%s\n",
			t.Name, t.TrialEndDate.Format(apihttp.DateLayout), t.DaysUntilEnd, billing.TrialLabel)
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintf(tw, "Tools\t\t\t%s\n", billing.FormatAmount(p.ToolSubscriptionsTotal, currency))
	fmt.Fprintf(tw, "Platform fee\t\t\t%s\n", feeLabel(p.PlatformFeeApplied, p.PlatformFeeAmount, currency))
	fmt.Fprintf(tw, "Total\t\t\t%s\n", billing.FormatAmount(p.Total, currency))
	return tw.Flush()
}

func feeLabel(applied bool, fee decimal.Decimal, currency string) string {
	if !applied {
		return "not applied"
	}
	return billing.FormatAmount(fee, currency)
}
