// Package solana wraps the ledger RPC client behind the narrow surface
// swapkit needs: point reads of accounts and balances, the latest
// blockhash, raw submission, and confirmation polling.
package solana

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenAccount is one holding account returned by TokenAccounts.
type TokenAccount struct {
	Address solana.PublicKey
	Amount  uint64
}

// SignatureStatus reports the confirmation state of a submitted
// transaction. LedgerErr is the network's structured rejection reason,
// empty when the transaction succeeded.
type SignatureStatus struct {
	Confirmed bool
	LedgerErr string
}

// Client wraps the Solana RPC client
type Client struct {
	rpc *rpc.Client
}

// NewClient creates a new Solana client
func NewClient(endpoint string) *Client {
	return &Client{
		rpc: rpc.New(endpoint),
	}
}

// LatestBlockhash returns the latest finalized blockhash and the last
// block height at which it is valid.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, result.Value.LastValidBlockHeight, nil
}

// Balance returns the native balance of an account in lamports.
func (c *Client) Balance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// MultipleAccounts fetches raw account data for each address in one RPC
// call. Missing accounts yield a nil entry at the matching index.
func (c *Client) MultipleAccounts(ctx context.Context, addrs ...solana.PublicKey) ([][]byte, error) {
	result, err := c.rpc.GetMultipleAccounts(ctx, addrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	out := make([][]byte, len(addrs))
	for i, acc := range result.Value {
		if acc == nil {
			continue
		}
		out[i] = acc.Data.GetBinary()
	}
	return out, nil
}

// AccountExists reports whether an account is present on-ledger.
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	_, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		if err == rpc.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account info: %w", err)
	}
	return true, nil
}

// TokenAccounts returns every holding account of owner for the given
// mint, with raw amounts decoded from the token account layout.
func (c *Client) TokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]TokenAccount, error) {
	result, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts: %w", err)
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for _, item := range result.Value {
		var decoded token.Account
		if err := bin.NewBinDecoder(item.Account.Data.GetBinary()).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode token account %s: %w", item.Pubkey, err)
		}
		accounts = append(accounts, TokenAccount{
			Address: item.Pubkey,
			Amount:  decoded.Amount,
		})
	}
	return accounts, nil
}

// SendRawTransaction broadcasts a serialized transaction. Preflight
// simulation is skipped: the network itself is the source of truth.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight: true,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus returns the confirmation status of a signature, or nil
// when the network has not seen it yet.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	result, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return nil, nil
	}

	status := result.Value[0]
	out := &SignatureStatus{}
	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		out.Confirmed = true
	}
	if status.Err != nil {
		out.LedgerErr = fmt.Sprintf("%v", status.Err)
	}
	return out, nil
}

// BlockHeight returns the current finalized block height.
func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get block height: %w", err)
	}
	return height, nil
}
