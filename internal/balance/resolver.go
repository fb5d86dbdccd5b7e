// Package balance resolves which holding account an owner uses for an
// asset, and how much of it they hold.
package balance

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swapkit/internal/errors"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
)

// Record is the resolved balance of one (owner, mint) pair.
type Record struct {
	Owner   solana.PublicKey
	Mint    solana.PublicKey
	Address solana.PublicKey

	// Amount is the raw balance in base units.
	Amount uint64

	// Decimals is the mint's decimal scale.
	Decimals uint8

	// Exists reports whether the holding account is present on-ledger.
	// When false, Address is the canonical derived address a creation
	// instruction would target.
	Exists bool
}

// Ledger is the read-only RPC surface the resolver depends on.
type Ledger interface {
	Balance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	TokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]ledgerrpc.TokenAccount, error)
	AccountExists(ctx context.Context, address solana.PublicKey) (bool, error)
}

// Resolver finds holding accounts. It is read-only and holds no state
// across calls.
type Resolver struct {
	ledger Ledger
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(ledger Ledger, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{ledger: ledger, logger: logger}
}

// Resolve returns the holding account of owner for mint.
//
// For the native mint the balance comes from the owner's lamports and
// existence from the canonical wrapped account. For SPL mints the
// account with the strictly largest raw amount wins (first encountered
// on ties), defending against wallets that created several accounts for
// the same mint. With no account at all, the canonical derived address
// is reported with Exists=false.
//
// Transport failures surface as errors.ErrBalanceUnavailable so callers
// can distinguish "balance is zero" from "balance unknown".
func (r *Resolver) Resolve(ctx context.Context, owner, mint solana.PublicKey, decimals uint8) (Record, error) {
	if mint.Equals(solana.SolMint) {
		return r.resolveNative(ctx, owner, mint, decimals)
	}
	return r.resolveToken(ctx, owner, mint, decimals)
}

func (r *Resolver) resolveNative(ctx context.Context, owner, mint solana.PublicKey, decimals uint8) (Record, error) {
	lamports, err := r.ledger.Balance(ctx, owner)
	if err != nil {
		r.logger.Warn("native balance read failed", "owner", owner, "error", err)
		return Record{}, errors.ErrBalanceUnavailable.WithCause(err)
	}

	wrapped, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return Record{}, errors.Wrap(err, "failed to derive wrapped account")
	}

	exists, err := r.ledger.AccountExists(ctx, wrapped)
	if err != nil {
		r.logger.Warn("wrapped account read failed", "address", wrapped, "error", err)
		return Record{}, errors.ErrBalanceUnavailable.WithCause(err)
	}

	return Record{
		Owner:    owner,
		Mint:     mint,
		Address:  wrapped,
		Amount:   lamports,
		Decimals: decimals,
		Exists:   exists,
	}, nil
}

func (r *Resolver) resolveToken(ctx context.Context, owner, mint solana.PublicKey, decimals uint8) (Record, error) {
	accounts, err := r.ledger.TokenAccounts(ctx, owner, mint)
	if err != nil {
		r.logger.Warn("token accounts read failed", "owner", owner, "mint", mint, "error", err)
		return Record{}, errors.ErrBalanceUnavailable.WithCause(err)
	}

	var (
		best    *ledgerrpc.TokenAccount
		largest uint64
	)
	for i := range accounts {
		if best == nil || accounts[i].Amount > largest {
			best = &accounts[i]
			largest = accounts[i].Amount
		}
	}

	if best == nil {
		derived, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return Record{}, errors.Wrap(err, "failed to derive holding account")
		}
		return Record{
			Owner:    owner,
			Mint:     mint,
			Address:  derived,
			Amount:   0,
			Decimals: decimals,
			Exists:   false,
		}, nil
	}

	return Record{
		Owner:    owner,
		Mint:     mint,
		Address:  best.Address,
		Amount:   best.Amount,
		Decimals: decimals,
		Exists:   true,
	}, nil
}
