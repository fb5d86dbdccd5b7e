package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-swapkit/internal/orchestrate"
)

var swapUnbounded bool

var swapCmd = &cobra.Command{
	Use:   "swap [token-in] [token-out] [amount]",
	Short: "Execute a swap",
	Long: `Swap an input amount for the other pool asset.

The swap is priced against current reserves, guarded by the configured
slippage tolerance, signed with the configured keypair and submitted.
The amount is in the input mint's base units.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		mintIn, err := registry.ResolveMint(args[0])
		if err != nil {
			return err
		}
		mintOut, err := registry.ResolveMint(args[1])
		if err != nil {
			return err
		}
		amount, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		service, err := newService(cfg)
		if err != nil {
			return err
		}

		outcome, err := service.ExecuteSwap(cmd.Context(), orchestrate.SwapRequest{
			MintIn:    mintIn,
			MintOut:   mintOut,
			AmountIn:  amount,
			Unbounded: swapUnbounded,
		})
		if err != nil {
			return err
		}
		return printOutcome(outcome)
	},
}

func init() {
	swapCmd.Flags().BoolVar(&swapUnbounded, "unbounded", false, "swap without a minimum-output floor")
	rootCmd.AddCommand(swapCmd)
}
