package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"asset-manager-api/internal/domain/organizations"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedOrgCmd(c *cli) *cobra.Command {
	var name, domain string
	cmd := &cobra.Command{
		Use:   "seed-org",
		Short: "Create an organization on the free plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return errors.New("--name is required")
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				org := organizations.New(name, domain, time.Now().UTC(), a.trialPeriod(), a.catalog)
				if err := a.store.Create(ctx, &org); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created organization %s (%s)\n", org.ID, org.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "Default Organization", "organization name")
	cmd.Flags().StringVar(&domain, "domain", "default.local", "organization domain")
	return cmd
}

func newLinkSubscriptionCmd(c *cli) *cobra.Command {
	var orgID, subscriptionID string
	cmd := &cobra.Command{
		Use:   "link-subscription",
		Short: "Attach an existing Stripe subscription to an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orgID == "" || subscriptionID == "" {
				return errors.New("--org and --subscription are required")
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				org, err := a.organization(ctx, orgID)
				if err != nil {
					return err
				}
				if err := a.service.LinkSubscription(ctx, org, subscriptionID); err != nil {
					return err
				}
				s := org.Subscription
				fmt.Fprintf(cmd.OutOrStdout(), "linked %s to %s: plan=%s status=%s maxAssets=%d\n",
					subscriptionID, org.Name, s.Plan, s.Status, s.MaxAssets)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	cmd.Flags().StringVar(&subscriptionID, "subscription", "", "Stripe subscription id (sub_...)")
	return cmd
}

func newSyncOrgCmd(c *cli) *cobra.Command {
	var orgID string
	var all bool
	cmd := &cobra.Command{
		Use:   "sync-org",
		Short: "Re-sync subscription snapshots from Stripe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orgID == "" && !all {
				return errors.New("either --org or --all is required")
			}
			return c.withApp(cmd, func(ctx context.Context, a *app) error {
				var targets []organizations.Organization
				if all {
					orgs, err := a.store.ListActive(ctx)
					if err != nil {
						return err
					}
					targets = orgs
				} else {
					org, err := a.organization(ctx, orgID)
					if err != nil {
						return err
					}
					targets = append(targets, *org)
				}

				var failed int
				for i := range targets {
					org := &targets[i]
					if !org.Subscription.HasStripeSubscription() {
						continue
					}
					if err := a.service.Resync(ctx, org); err != nil {
						failed++
						a.logger.Error("sync failed", zap.String("organization_id", org.ID), zap.Error(err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", org.ID, org.Subscription.Plan, org.Subscription.Status)
				}
				if failed > 0 {
					return fmt.Errorf("%d organizations failed to sync", failed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id")
	cmd.Flags().BoolVar(&all, "all", false, "sync every active organization")
	return cmd
}

func newPlansCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Print the plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog(c.cfg)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLAN\tPRICE\tMAX ASSETS\tSTRIPE PRICE\tFEATURES")
			for _, p := range catalog.Plans() {
				features := make([]string, 0, len(p.Features))
				for _, f := range p.Features {
					features = append(features, string(f))
				}
				fmt.Fprintf(w, "%s\t$%d\t%d\t%s\t%s\n", p.ID, p.Price, p.MaxAssets, orDash(p.StripePriceID), strings.Join(features, ","))
			}
			return w.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
