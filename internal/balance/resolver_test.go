package balance

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-swapkit/internal/errors"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
)

type fakeLedger struct {
	lamports      uint64
	tokenAccounts []ledgerrpc.TokenAccount
	exists        bool
	err           error
}

func (f *fakeLedger) Balance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	return f.lamports, f.err
}

func (f *fakeLedger) TokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]ledgerrpc.TokenAccount, error) {
	return f.tokenAccounts, f.err
}

func (f *fakeLedger) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	return f.exists, f.err
}

func key(b byte) solana.PublicKey {
	var pk solana.PublicKey
	pk[0] = b
	return pk
}

func TestResolvePicksLargestTokenAccount(t *testing.T) {
	ledger := &fakeLedger{
		tokenAccounts: []ledgerrpc.TokenAccount{
			{Address: key(1), Amount: 5},
			{Address: key(2), Amount: 50},
			{Address: key(3), Amount: 20},
		},
	}
	r := NewResolver(ledger, nil)

	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	rec, err := r.Resolve(context.Background(), owner, mint, 6)
	require.NoError(t, err)
	require.True(t, rec.Exists)
	require.Equal(t, uint64(50), rec.Amount)
	require.Equal(t, key(2), rec.Address)
	require.Equal(t, uint8(6), rec.Decimals)
}

func TestResolveTieBreaksOnFirstEncountered(t *testing.T) {
	ledger := &fakeLedger{
		tokenAccounts: []ledgerrpc.TokenAccount{
			{Address: key(1), Amount: 7},
			{Address: key(2), Amount: 7},
		},
	}
	r := NewResolver(ledger, nil)

	rec, err := r.Resolve(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 0)
	require.NoError(t, err)
	require.Equal(t, key(1), rec.Address)
}

func TestResolveDerivesAddressWhenNoAccounts(t *testing.T) {
	r := NewResolver(&fakeLedger{}, nil)

	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	rec, err := r.Resolve(context.Background(), owner, mint, 9)
	require.NoError(t, err)
	require.False(t, rec.Exists)
	require.Zero(t, rec.Amount)
	require.False(t, rec.Address.IsZero())

	expected, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	require.Equal(t, expected, rec.Address)
}

func TestResolveNativeUsesLamports(t *testing.T) {
	ledger := &fakeLedger{lamports: 123_456, exists: true}
	r := NewResolver(ledger, nil)

	rec, err := r.Resolve(context.Background(), solana.NewWallet().PublicKey(), solana.SolMint, 9)
	require.NoError(t, err)
	require.True(t, rec.Exists)
	require.Equal(t, uint64(123_456), rec.Amount)
}

func TestResolveNativeReportsMissingWrappedAccount(t *testing.T) {
	ledger := &fakeLedger{lamports: 10, exists: false}
	r := NewResolver(ledger, nil)

	rec, err := r.Resolve(context.Background(), solana.NewWallet().PublicKey(), solana.SolMint, 9)
	require.NoError(t, err)
	require.False(t, rec.Exists)
	require.Equal(t, uint64(10), rec.Amount)
}

func TestResolveSurfacesUnavailable(t *testing.T) {
	ledger := &fakeLedger{err: errors.NewError("X", "rpc down")}
	r := NewResolver(ledger, nil)

	_, err := r.Resolve(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrBalanceUnavailable))
}
