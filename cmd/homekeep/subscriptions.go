package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	apihttp "github.com/artpar/homekeep/adapters/http"
	"github.com/artpar/homekeep/app"
	"github.com/artpar/homekeep/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage an account's subscriptions",
	Long: `Manage the tools an account subscribes to.

Examples:
  homekeep subscriptions list --user u1
  homekeep subscriptions add --user u1 --tool calendar --name "Calendar" --price 4.99 --trial
  homekeep subscriptions cancel --user u1 sub_123
  homekeep subscriptions remove --user u1 sub_123`,
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an account's subscriptions",
	RunE:  runSubscriptionsList,
}

var subscriptionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Acquire a tool",
	RunE:  runSubscriptionsAdd,
}

var subscriptionsCancelCmd = &cobra.Command{
	Use:   "cancel <subscription-id>",
	Short: "Cancel a subscription (kept in the ledger)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubscriptionsCancel,
}

var subscriptionsRemoveCmd = &cobra.Command{
	Use:   "remove <subscription-id>",
	Short: "Delete a subscription from the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubscriptionsRemove,
}

var (
	subUser         string
	subTool         string
	subName         string
	subPrice        string
	subTrial        bool
	subTrialEnd     string
	subPromo        string
	subPromoExpires string
)

func init() {
	rootCmd.AddCommand(subscriptionsCmd)

	subscriptionsCmd.AddCommand(subscriptionsListCmd)
	subscriptionsCmd.AddCommand(subscriptionsAddCmd)
	subscriptionsCmd.AddCommand(subscriptionsCancelCmd)
	subscriptionsCmd.AddCommand(subscriptionsRemoveCmd)

	for _, c := range []*cobra.Command{subscriptionsListCmd, subscriptionsAddCmd, subscriptionsCancelCmd, subscriptionsRemoveCmd} {
		c.Flags().StringVarP(&subUser, "user", "u", "", "account user ID (required)")
		c.MarkFlagRequired("user")
	}
	addOutputFlag(subscriptionsListCmd)
	addOutputFlag(subscriptionsAddCmd)

	subscriptionsAddCmd.Flags().StringVar(&subTool, "tool", "", "tool ID (required)")
	subscriptionsAddCmd.Flags().StringVar(&subName, "name", "", "display name (default: tool ID)")
	subscriptionsAddCmd.Flags().StringVar(&subPrice, "price", "", "monthly price, e.g. 4.99 (required)")
	subscriptionsAddCmd.Flags().BoolVar(&subTrial, "trial", false, "start with a free trial")
	subscriptionsAddCmd.Flags().StringVar(&subTrialEnd, "trial-end", "", "trial end date (default: configured trial length)")
	subscriptionsAddCmd.Flags().StringVar(&subPromo, "promo", "", "promo code")
	subscriptionsAddCmd.Flags().StringVar(&subPromoExpires, "promo-expires", "", "promo expiration date")
	subscriptionsAddCmd.MarkFlagRequired("tool")
	subscriptionsAddCmd.MarkFlagRequired("price")
}

func runSubscriptionsList(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	subs, err := a.Accounts.List(cmd.Context(), subUser)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}
	currency := a.Accounts.Config().Currency

	return render(cmd.OutOrStdout(), apihttp.NewSubscriptionListResponse(subs, currency), func(w io.Writer) error {
		if len(subs) == 0 {
			fmt.Fprintf(w, "No subscriptions for %s.\n\n", subUser)
			fmt.Fprintf(w, "Add one with: homekeep subscriptions add --user %s --tool calendar --price 4.99 --trial\n", subUser)
			return nil
		}
		return printSubscriptions(w, subs, currency)
	})
}

func printSubscriptions(w io.Writer, subs []billing.Subscription, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTOOL\tNAME\tSTATUS\tPRICE\tBILLING DATE")
	fmt.Fprintln(tw, "--\t----\t----\t------\t-----\t------------")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.ToolID, s.Name, s.Status,
			billing.PriceLabel(s, currency),
			s.EffectiveBillingDate().Format(apihttp.DateLayout))
	}
	return tw.Flush()
}

func runSubscriptionsAdd(cmd *cobra.Command, args []string) error {
	price, err := decimal.NewFromString(subPrice)
	if err != nil {
		return fmt.Errorf("invalid --price %q: %w", subPrice, err)
	}

	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	cfg := a.Accounts.Config()
	trialEnd, err := optionalDateFlag("trial-end", subTrialEnd, cfg.Location)
	if err != nil {
		return err
	}
	promoEnd, err := optionalDateFlag("promo-expires", subPromoExpires, cfg.Location)
	if err != nil {
		return err
	}

	sub, err := a.Accounts.Acquire(cmd.Context(), app.AcquireParams{
		UserID:              subUser,
		ToolID:              subTool,
		Name:                subName,
		Price:               price,
		Trial:               subTrial || trialEnd != nil,
		TrialEndDate:        trialEnd,
		PromoCode:           subPromo,
		PromoExpirationDate: promoEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to add subscription: %w", err)
	}

	return render(cmd.OutOrStdout(), apihttp.NewSubscriptionResponse(sub, cfg.Currency), func(w io.Writer) error {
		fmt.Fprintf(w, "%s Added %s (%s) for %s\n", checkMark, sub.Name, sub.ID, sub.UserID)
		if sub.IsTrial() {
			fmt.Fprintf(w, "  Trial ends %s, then %s per month\n",
				sub.TrialEndDate.Format(apihttp.DateLayout), billing.FormatAmount(sub.Price, cfg.Currency))
		} else {
			fmt.Fprintf(w, "  %s per month\n", billing.FormatAmount(sub.Price, cfg.Currency))
		}
		return nil
	})
}

func runSubscriptionsCancel(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	sub, err := a.Accounts.Cancel(cmd.Context(), subUser, args[0])
	if err != nil {
		return subscriptionError(args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Cancelled %s (%s)\n", checkMark, sub.Name, sub.ID)
	return nil
}

func runSubscriptionsRemove(cmd *cobra.Command, args []string) error {
	a, err := openAccounts(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	if err := a.Accounts.Remove(cmd.Context(), subUser, args[0]); err != nil {
		return subscriptionError(args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", checkMark, args[0])
	return nil
}

func subscriptionError(id string, err error) error {
	if errors.Is(err, app.ErrNotFound) || errors.Is(err, app.ErrForbidden) {
		return fmt.Errorf("subscription %s not found for user %s", id, subUser)
	}
	return err
}

func optionalDateFlag(name, value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := apihttp.ParseDate(value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}
