package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-tracker/internal/app"
	"github.com/bissquit/incident-tracker/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var (
		count     int
		force     bool
		rngSeed   uint64
		noMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert random sample incidents",
		Long: `Insert random sample incidents spread over the past 90 days.
An empty store is required unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if !noMigrate {
				if _, err := store.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			if rngSeed == 0 {
				rngSeed = uint64(time.Now().UnixNano())
			}

			n, err := seed.Run(cmd.Context(), store.Repository, seed.Options{
				Count: count,
				Force: force,
				Seed:  rngSeed,
			}, slog.Default())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d incidents\n", n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", seed.DefaultCount, "number of incidents to insert")
	cmd.Flags().BoolVar(&force, "force", false, "insert even when the store is not empty")
	cmd.Flags().Uint64Var(&rngSeed, "seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "skip applying migrations first")

	return cmd
}
