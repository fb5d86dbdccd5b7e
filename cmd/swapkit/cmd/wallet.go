package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
)

var walletOutPath string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet management commands",
	Long:  `Commands for managing the Solana keypair swapkit signs with.`,
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new wallet",
	Long:  `Generate a new Solana wallet keypair, optionally saving it to a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallet := ledgerrpc.NewWallet()

		fmt.Println("New wallet generated!")
		fmt.Printf("  Public Key: %s\n", wallet.PublicKey())

		if walletOutPath != "" {
			if err := wallet.SaveToFile(walletOutPath); err != nil {
				return err
			}
			fmt.Printf("  Keypair saved to %s\n", walletOutPath)
		} else {
			fmt.Printf("  Private Key: %s\n", wallet.PrivateKey())
			fmt.Println("\n⚠️  WARNING: Save your private key securely. Never share it with anyone!")
		}
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured wallet's public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Swap.KeypairPath == "" {
			return fmt.Errorf("no keypair configured; set swap.keypair_path or --keypair")
		}
		wallet, err := ledgerrpc.WalletFromFile(cfg.Swap.KeypairPath)
		if err != nil {
			return err
		}
		fmt.Println(wallet.PublicKey())
		return nil
	},
}

func init() {
	walletNewCmd.Flags().StringVar(&walletOutPath, "out", "", "write the keypair to a file instead of printing it")

	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletNewCmd)
	walletCmd.AddCommand(walletShowCmd)
}
