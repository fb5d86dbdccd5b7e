package swap

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("SwaPpA9LAaLfeLi3a68M4DjnLqgtticKg6CnyNwgAC8")

func TestDeriveAddressesCanonicalOrder(t *testing.T) {
	mint1 := solana.NewWallet().PublicKey()
	mint2 := solana.NewWallet().PublicKey()

	forward, err := DeriveAddresses(testProgramID, mint1, mint2)
	require.NoError(t, err)
	reverse, err := DeriveAddresses(testProgramID, mint2, mint1)
	require.NoError(t, err)

	// One canonical pool per unordered pair.
	require.Equal(t, forward, reverse)
	require.True(t, bytes.Compare(forward.MintA[:], forward.MintB[:]) < 0)

	require.False(t, forward.Pool.IsZero())
	require.False(t, forward.Authority.IsZero())
	require.False(t, forward.VaultA.IsZero())
	require.False(t, forward.VaultB.IsZero())
	require.False(t, forward.ShareMint.IsZero())
}

func TestDeriveAddressesRejectsSameMint(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	_, err := DeriveAddresses(testProgramID, mint, mint)
	require.Error(t, err)
}

func TestDecodePoolAccountRoundTrip(t *testing.T) {
	src := poolAccount{
		MintA:     solana.NewWallet().PublicKey(),
		MintB:     solana.NewWallet().PublicKey(),
		VaultA:    solana.NewWallet().PublicKey(),
		VaultB:    solana.NewWallet().PublicKey(),
		ShareMint: solana.NewWallet().PublicKey(),

		TradeFeeNumerator:           25,
		TradeFeeDenominator:         10000,
		OwnerTradeFeeNumerator:      5,
		OwnerTradeFeeDenominator:    10000,
		OwnerWithdrawFeeNumerator:   0,
		OwnerWithdrawFeeDenominator: 1,
		HostFeeNumerator:            20,
		HostFeeDenominator:          100,

		Bump: 254,
	}

	buf := new(bytes.Buffer)
	buf.Write(poolAccountDiscriminator[:])
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(src))

	decoded, err := decodePoolAccount(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, src, *decoded)
}

func TestDecodePoolAccountRejectsForeignAccount(t *testing.T) {
	_, err := decodePoolAccount([]byte{1, 2, 3})
	require.Error(t, err)

	_, err = decodePoolAccount(bytes.Repeat([]byte{0xff}, 64))
	require.Error(t, err)
}

func TestFeeScheduleFromAccountNormalizesZeroOverZero(t *testing.T) {
	fees, err := feeScheduleFromAccount(&poolAccount{
		TradeFeeNumerator:         25,
		TradeFeeDenominator:       10000,
		OwnerTradeFeeNumerator:    5,
		OwnerTradeFeeDenominator:  10000,
		HostFeeNumerator:          20,
		HostFeeDenominator:        100,
		// OwnerWithdraw recorded as 0/0 by older pools.
	})
	require.NoError(t, err)
	require.Equal(t, Fee{Numerator: 0, Denominator: 1}, fees.OwnerWithdraw)
}

func TestFeeScheduleFromAccountRejectsBadRates(t *testing.T) {
	_, err := feeScheduleFromAccount(&poolAccount{
		TradeFeeNumerator:   2,
		TradeFeeDenominator: 1,
	})
	require.Error(t, err)
}

func TestSideOf(t *testing.T) {
	mint1 := solana.NewWallet().PublicKey()
	mint2 := solana.NewWallet().PublicKey()
	addrs, err := DeriveAddresses(testProgramID, mint1, mint2)
	require.NoError(t, err)

	state := State{Addresses: addrs}

	sideA, err := state.SideOf(addrs.MintA)
	require.NoError(t, err)
	require.Equal(t, SideA, sideA)

	sideB, err := state.SideOf(addrs.MintB)
	require.NoError(t, err)
	require.Equal(t, SideB, sideB)

	_, err = state.SideOf(solana.NewWallet().PublicKey())
	require.Error(t, err)
}
