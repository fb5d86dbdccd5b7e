package txn

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-swapkit/internal/blockhash"
	"github.com/lugondev/go-swapkit/internal/errors"
	"github.com/lugondev/go-swapkit/internal/swap"
)

var testProgramID = solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")

func testPlan(t *testing.T, owner solana.PublicKey) *swap.Plan {
	t.Helper()

	addrs, err := swap.DeriveAddresses(testProgramID, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)

	dest := solana.NewWallet().PublicKey()
	plan, err := swap.BuildSwap(swap.State{
		Addresses:   addrs,
		Exists:      true,
		Fees:        swap.DefaultFeeSchedule(),
		ReserveA:    1_000_000,
		ReserveB:    2_000_000,
		ShareSupply: 1_500_000,
	}, swap.SwapParams{
		Owner:             owner,
		SourceMint:        addrs.MintA,
		AmountIn:          10_000,
		MinimumOut:        19_654,
		Source:            solana.NewWallet().PublicKey(),
		Dest:              &dest,
		FeeReceiverWallet: solana.NewWallet().PublicKey(),
	})
	require.NoError(t, err)
	return plan
}

func testToken() blockhash.Token {
	return blockhash.Token{
		Blockhash:            solana.Hash(solana.NewWallet().PublicKey()),
		LastValidBlockHeight: 1_000,
	}
}

func TestAssembleAppliesEphemeralSignatures(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	plan := testPlan(t, owner)
	token := testToken()

	tx, err := Assemble(plan, owner, token)
	require.NoError(t, err)
	require.Equal(t, token.Blockhash, tx.Message.RecentBlockhash)

	authority := plan.RequiredCoSigners()[0]
	signers := tx.Message.Signers()

	// The authority's slot carries a real signature; the wallet-held
	// slot stays empty until the primary signer signs.
	for i, key := range signers {
		if key.Equals(authority) {
			require.False(t, tx.Signatures[i].IsZero())
		}
		if key.Equals(owner) {
			require.True(t, tx.Signatures[i].IsZero())
		}
	}
}

func TestAssembleRejectsPlanWithoutCoSignerSlot(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	plan := testPlan(t, owner)

	// Keep only the allowance grant: the ephemeral authority is no
	// longer a required signer of the message.
	plan.Instructions = plan.Instructions[:1]

	_, err := Assemble(plan, owner, testToken())
	require.Error(t, err)

	var swapErr *errors.SwapError
	require.True(t, errors.As(err, &swapErr))
	require.Equal(t, errors.ErrCodeInvariantViolation, swapErr.Code)
}
