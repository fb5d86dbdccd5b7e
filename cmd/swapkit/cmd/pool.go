package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-swapkit/internal/orchestrate"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pool management commands",
	Long:  `Commands for creating pools, depositing liquidity and inspecting pool state.`,
}

var poolInitCmd = &cobra.Command{
	Use:   "init [token-a] [token-b] [amount-a] [amount-b]",
	Short: "Create a pool",
	Long: `Create the canonical pool for a token pair and seed it with the
initial deposits. The ratio of the two amounts sets the opening price.
Amounts are in each mint's base units.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		mint1, err := registry.ResolveMint(args[0])
		if err != nil {
			return err
		}
		mint2, err := registry.ResolveMint(args[1])
		if err != nil {
			return err
		}
		amount1, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		amount2, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		service, err := newService(cfg)
		if err != nil {
			return err
		}

		res, err := service.BuildInitialize(cmd.Context(), orchestrate.InitializeRequest{
			Mint1:   mint1,
			Mint2:   mint2,
			Amount1: amount1,
			Amount2: amount2,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Expected pool shares: %d\n", res.ExpectedShares)

		return printOutcome(service.SignAndSubmit(cmd.Context(), res))
	},
}

var (
	depositAmount1 uint64
	depositAmount2 uint64
)

var poolDepositCmd = &cobra.Command{
	Use:   "deposit [token-a] [token-b]",
	Short: "Deposit liquidity into a pool",
	Long: `Deposit into one or both sides of a pool. Sides are independent:
either amount may be zero, but not both. Amounts are in each mint's
base units.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		mint1, err := registry.ResolveMint(args[0])
		if err != nil {
			return err
		}
		mint2, err := registry.ResolveMint(args[1])
		if err != nil {
			return err
		}

		service, err := newService(cfg)
		if err != nil {
			return err
		}

		outcome, err := service.ExecuteDeposit(cmd.Context(), orchestrate.DepositRequest{
			Mint1:   mint1,
			Mint2:   mint2,
			Amount1: depositAmount1,
			Amount2: depositAmount2,
		})
		if err != nil {
			return err
		}
		return printOutcome(outcome)
	},
}

var poolShowCmd = &cobra.Command{
	Use:   "show [token-a] [token-b]",
	Short: "Show pool state",
	Long:  `Display the derived addresses, reserves, fees and share supply of a pool.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		mint1, err := registry.ResolveMint(args[0])
		if err != nil {
			return err
		}
		mint2, err := registry.ResolveMint(args[1])
		if err != nil {
			return err
		}

		service, err := newService(cfg)
		if err != nil {
			return err
		}

		state, err := service.PoolState(cmd.Context(), mint1, mint2)
		if err != nil {
			return err
		}

		a := state.Addresses
		fmt.Printf("Pool:       %s\n", a.Pool)
		fmt.Printf("Mint A:     %s\n", a.MintA)
		fmt.Printf("Mint B:     %s\n", a.MintB)
		fmt.Printf("Share mint: %s\n", a.ShareMint)
		if !state.Exists {
			fmt.Println("State:      uninitialized")
			return nil
		}
		fmt.Println("State:      active")
		fmt.Printf("Reserve A:  %d\n", state.ReserveA)
		fmt.Printf("Reserve B:  %d\n", state.ReserveB)
		fmt.Printf("Shares:     %d\n", state.ShareSupply)
		fmt.Printf("Trade fee:  %d/%d\n", state.Fees.Trade.Numerator, state.Fees.Trade.Denominator)
		return nil
	},
}

func init() {
	poolDepositCmd.Flags().Uint64Var(&depositAmount1, "amount-a", 0, "deposit amount for the first token")
	poolDepositCmd.Flags().Uint64Var(&depositAmount2, "amount-b", 0, "deposit amount for the second token")

	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolInitCmd)
	poolCmd.AddCommand(poolDepositCmd)
	poolCmd.AddCommand(poolShowCmd)
}
