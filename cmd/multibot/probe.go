package main

import (
	"context"
	"fmt"
	"time"

	"multibot/internal/config"
	"multibot/internal/provider"

	"github.com/spf13/cobra"
)

// probeCmd hits each upstream API once and reports reachability. Useful
// before enabling the gateway on a new host.
func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that every provider API is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := config.Validate(cfg); err != nil {
				return err
			}

			fetchTimeout := time.Duration(cfg.General.FetchTimeoutSeconds) * time.Second
			httpClient := provider.SharedHTTPClient(fetchTimeout)

			cats := provider.NewCatAPI(provider.CatAPIConfig{
				APIBase: cfg.Providers.CatAPI.APIBase,
				APIKey:  cfg.Providers.CatAPI.APIKey,
				Client:  httpClient,
				Logger:  logger,
			})
			astronomy := provider.NewNASA(provider.NASAConfig{
				APIBase: cfg.Providers.NASA.APIBase,
				APIKey:  cfg.Providers.NASA.APIKey,
				Client:  httpClient,
				Logger:  logger,
			})
			launches := provider.NewSpaceX(provider.SpaceXConfig{
				APIBase: cfg.Providers.SpaceX.APIBase,
				Client:  httpClient,
				Logger:  logger,
			})
			inventory := provider.NewPetstore(provider.PetstoreConfig{
				APIBase: cfg.Providers.Petstore.APIBase,
				Client:  httpClient,
				Logger:  logger,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 4*fetchTimeout)
			defer cancel()

			checks := []struct {
				name string
				run  func(context.Context) error
			}{
				{"catapi", func(ctx context.Context) error {
					_, err := cats.ListBreeds(ctx)
					return err
				}},
				{"nasa", func(ctx context.Context) error {
					_, err := astronomy.RandomAstronomy(ctx)
					return err
				}},
				{"spacex", func(ctx context.Context) error {
					_, err := launches.LatestLaunch(ctx)
					return err
				}},
				{"petstore", func(ctx context.Context) error {
					_, err := inventory.PetsByStatus(ctx, provider.PetStatusAvailable)
					return err
				}},
			}

			failures := 0
			for _, check := range checks {
				start := time.Now()
				err := check.run(ctx)
				latency := time.Since(start).Round(time.Millisecond)
				if err != nil {
					failures++
					fmt.Printf("✗ %-9s %v\n", check.name, err)
					continue
				}
				fmt.Printf("✓ %-9s %s\n", check.name, latency)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d providers unreachable", failures, len(checks))
			}
			return nil
		},
	}
}
