package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pwielgus/cashplan/internal/config"
	"github.com/pwielgus/cashplan/internal/seed"
)

func newSeedCommand() *cobra.Command {
	var balance string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo household dataset into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}
			store, closeFn, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer closeFn()
			}
			if err := seed.Load(cmd.Context(), store, bal); err != nil {
				return err
			}
			fmt.Println("Seed data loaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "0", "starting checking account balance")

	return cmd
}
