package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lugondev/go-swapkit/internal/balance"
	"github.com/lugondev/go-swapkit/internal/blockhash"
	"github.com/lugondev/go-swapkit/internal/common"
	"github.com/lugondev/go-swapkit/internal/config"
	"github.com/lugondev/go-swapkit/internal/metrics"
	"github.com/lugondev/go-swapkit/internal/orchestrate"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
	"github.com/lugondev/go-swapkit/internal/swap"
	"github.com/lugondev/go-swapkit/internal/txn"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swapkit",
	Short: "Swapkit CLI - a token swap client for Solana",
	Long: `Swapkit is a CLI client for a constant-product token swap program.

It provides commands for:
- Quoting and executing swaps
- Creating pools and depositing liquidity
- Balance and wallet management`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.swapkit.yaml)")
	rootCmd.PersistentFlags().String("rpc", "", "Solana RPC endpoint")
	rootCmd.PersistentFlags().String("network", "devnet", "Solana network (mainnet, devnet, testnet, localnet)")
	rootCmd.PersistentFlags().String("keypair", "", "path to a Solana CLI keypair file")

	if err := viper.BindPFlag("solana.rpc", rootCmd.PersistentFlags().Lookup("rpc")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
	}
	if err := viper.BindPFlag("solana.network", rootCmd.PersistentFlags().Lookup("network")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
	}
	if err := viper.BindPFlag("swap.keypair_path", rootCmd.PersistentFlags().Lookup("keypair")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding flag: %v\n", err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// loadRegistry returns the configured token registry, or nil when none
// is configured. Mints can always be given as raw base58.
func loadRegistry(cfg *config.Config) (*config.Registry, error) {
	if cfg.Swap.RegistryPath == "" {
		return nil, nil
	}
	return config.LoadRegistry(cfg.Swap.RegistryPath)
}

// newService wires the full client stack from configuration.
func newService(cfg *config.Config) (*orchestrate.Service, error) {
	logger := common.NewLogger(cfg.Log.Level, cfg.Log.Format)
	m := metrics.NewLogMetrics(logger)

	if cfg.Swap.KeypairPath == "" {
		return nil, fmt.Errorf("no keypair configured; set swap.keypair_path or --keypair")
	}
	wallet, err := ledgerrpc.WalletFromFile(cfg.Swap.KeypairPath)
	if err != nil {
		return nil, err
	}

	programID, err := solana.PublicKeyFromBase58(cfg.Swap.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid swap program id: %w", err)
	}

	feeReceiver := wallet.PublicKey()
	if cfg.Swap.FeeReceiverWallet != "" {
		feeReceiver, err = solana.PublicKeyFromBase58(cfg.Swap.FeeReceiverWallet)
		if err != nil {
			return nil, fmt.Errorf("invalid fee receiver wallet: %w", err)
		}
	}

	client := ledgerrpc.NewClient(cfg.Solana.GetRPCEndpoint())
	cache := blockhash.NewCache(client,
		time.Duration(cfg.Swap.BlockhashRefreshSeconds)*time.Second, logger, m)

	return orchestrate.NewService(orchestrate.Options{
		Pools:             orchestrate.NewPoolReader(client, programID),
		Balances:          balance.NewResolver(client, logger),
		Blockhashes:       cache,
		Submitter:         txn.NewSubmitter(client, logger, m),
		Wallet:            wallet,
		FeeReceiverWallet: feeReceiver,
		Slippage: swap.Slippage{
			Numerator:   cfg.Swap.SlippageNumerator,
			Denominator: cfg.Swap.SlippageDenominator,
		},
		Logger:  logger,
		Metrics: m,
	})
}

func printOutcome(outcome txn.Outcome) error {
	switch outcome.Status {
	case txn.StatusSuccess:
		fmt.Printf("Confirmed: %s\n", outcome.Signature)
		return nil
	case txn.StatusLedgerRejected:
		return fmt.Errorf("transaction %s rejected: %s", outcome.Signature, outcome.Reason)
	case txn.StatusExpired:
		return fmt.Errorf("transaction %s expired before confirmation; re-quote and retry", outcome.Signature)
	case txn.StatusAbandoned:
		return fmt.Errorf("stopped waiting for transaction %s; it may still confirm", outcome.Signature)
	case txn.StatusUserCancelled:
		fmt.Println("Cancelled.")
		return nil
	default:
		return fmt.Errorf("submission failed: %v", outcome.Err)
	}
}
