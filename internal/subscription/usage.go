package subscription

import (
	"context"
	"fmt"
	"math"

	"asset-manager-api/internal/domain/inventory"
	"asset-manager-api/internal/domain/organizations"

	"golang.org/x/sync/errgroup"
)

type Usage struct {
	Hardware        int64 `json:"hardware"`
	Software        int64 `json:"software"`
	Users           int64 `json:"users"`
	MaxAssets       int   `json:"maxAssets"`
	UsagePercentage int   `json:"usagePercentage"`
}

type Stats struct {
	Users           int64 `json:"users"`
	Assets          int64 `json:"assets"`
	Software        int64 `json:"software"`
	Telemetry       int64 `json:"telemetry"`
	Tickets         int64 `json:"tickets"`
	MaxAssets       int   `json:"maxAssets"`
	UsagePercentage int   `json:"usagePercentage"`
}

// UsagePercentage is round(100*assets/maxAssets). A non-positive limit
// reports as fully used.
func UsagePercentage(assets int64, maxAssets int) int {
	if maxAssets <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(assets) / float64(maxAssets)))
}

// countAll counts every collection concurrently; the first error cancels the rest.
func countAll(ctx context.Context, counter UsageCounter, orgID string, collections ...inventory.Collection) (map[inventory.Collection]int64, error) {
	results := make([]int64, len(collections))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		i, c := i, c
		g.Go(func() error {
			n, err := counter.Count(ctx, orgID, c)
			if err != nil {
				return fmt.Errorf("count %s: %w", c, err)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[inventory.Collection]int64, len(collections))
	for i, c := range collections {
		out[c] = results[i]
	}
	return out, nil
}

func (s *Service) Usage(ctx context.Context, org *organizations.Organization) (Usage, error) {
	counts, err := countAll(ctx, s.counter, org.ID,
		inventory.CollectionHardware, inventory.CollectionSoftware, inventory.CollectionUsers)
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		Hardware:        counts[inventory.CollectionHardware],
		Software:        counts[inventory.CollectionSoftware],
		Users:           counts[inventory.CollectionUsers],
		MaxAssets:       org.Subscription.MaxAssets,
		UsagePercentage: UsagePercentage(counts[inventory.CollectionHardware], org.Subscription.MaxAssets),
	}, nil
}

func (s *Service) Stats(ctx context.Context, org *organizations.Organization) (Stats, error) {
	counts, err := countAll(ctx, s.counter, org.ID,
		inventory.CollectionUsers, inventory.CollectionHardware, inventory.CollectionSoftware,
		inventory.CollectionTelemetry, inventory.CollectionTickets)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Users:           counts[inventory.CollectionUsers],
		Assets:          counts[inventory.CollectionHardware],
		Software:        counts[inventory.CollectionSoftware],
		Telemetry:       counts[inventory.CollectionTelemetry],
		Tickets:         counts[inventory.CollectionTickets],
		MaxAssets:       org.Subscription.MaxAssets,
		UsagePercentage: UsagePercentage(counts[inventory.CollectionHardware], org.Subscription.MaxAssets),
	}, nil
}

// AssetCount returns the number of hardware records, the quantity limited by plan.
func (s *Service) AssetCount(ctx context.Context, orgID string) (int64, error) {
	return s.counter.Count(ctx, orgID, inventory.CollectionHardware)
}
