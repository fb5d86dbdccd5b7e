package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-swapkit/internal/orchestrate"
)

var quoteUnbounded bool

var quoteCmd = &cobra.Command{
	Use:   "quote [token-in] [token-out] [amount]",
	Short: "Quote a swap without executing it",
	Long: `Price an input amount against the pool's current reserves.

Tokens are registry symbols or base58 mint addresses; the amount is in
the input mint's base units.`,
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

		quote, err := service.QuoteSwap(cmd.Context(), orchestrate.SwapRequest{
			MintIn:    mintIn,
			MintOut:   mintOut,
			AmountIn:  amount,
			Unbounded: quoteUnbounded,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Amount in:   %d\n", quote.AmountIn)
		fmt.Printf("Trade fee:   %d\n", quote.FeeAmount)
		fmt.Printf("Amount out:  %d\n", quote.AmountOut)
		if quote.Unbounded {
			fmt.Println("Minimum out: none (unbounded)")
		} else {
			fmt.Printf("Minimum out: %d\n", quote.MinimumOut)
		}
		return nil
	},
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteUnbounded, "unbounded", false, "quote without a minimum-output floor")
	rootCmd.AddCommand(quoteCmd)
}
