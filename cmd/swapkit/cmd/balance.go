package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [token]",
	Short: "Show the configured wallet's balance for a token",
	Long: `Resolve the wallet's holding account for a token and print its raw
balance. When several accounts exist for the mint, the one with the
largest balance is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		mint, err := registry.ResolveMint(args[0])
		if err != nil {
			return err
		}

		service, err := newService(cfg)
		if err != nil {
			return err
		}

		record, err := service.Balance(cmd.Context(), mint)
		if err != nil {
			return err
		}

		fmt.Printf("Owner:    %s\n", record.Owner)
		fmt.Printf("Account:  %s\n", record.Address)
		fmt.Printf("Balance:  %d (decimals %d)\n", record.Amount, record.Decimals)
		if !record.Exists {
			fmt.Println("Note:     holding account does not exist yet")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
