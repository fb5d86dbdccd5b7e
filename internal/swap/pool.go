package swap

import (
	"bytes"
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/lugondev/go-swapkit/internal/errors"
)

// ShareDecimals is the fixed decimal scale of every pool-share mint.
const ShareDecimals uint8 = 9

// Addresses are the deterministically derived accounts of one pool. For
// any unordered mint pair there is exactly one canonical pool: mints are
// ordered by raw byte comparison before derivation.
type Addresses struct {
	ProgramID solana.PublicKey

	MintA solana.PublicKey
	MintB solana.PublicKey

	Pool      solana.PublicKey
	Authority solana.PublicKey
	VaultA    solana.PublicKey
	VaultB    solana.PublicKey
	ShareMint solana.PublicKey
}

// DeriveAddresses computes the canonical pool accounts for a mint pair.
// The two mints may be given in either order.
func DeriveAddresses(programID, mint1, mint2 solana.PublicKey) (Addresses, error) {
	if mint1.Equals(mint2) {
		return Addresses{}, errors.InvalidInput("pool mints must differ")
	}

	mintA, mintB := mint1, mint2
	if bytes.Compare(mintB[:], mintA[:]) < 0 {
		mintA, mintB = mintB, mintA
	}

	pool, _, err := solana.FindProgramAddress([][]byte{[]byte("swap_pool"), mintA[:], mintB[:]}, programID)
	if err != nil {
		return Addresses{}, errors.Wrap(err, "failed to derive pool address")
	}
	authority, _, err := solana.FindProgramAddress([][]byte{[]byte("authority"), pool[:]}, programID)
	if err != nil {
		return Addresses{}, errors.Wrap(err, "failed to derive pool authority")
	}
	vaultA, _, err := solana.FindProgramAddress([][]byte{[]byte("vault_a"), pool[:]}, programID)
	if err != nil {
		return Addresses{}, errors.Wrap(err, "failed to derive vault A")
	}
	vaultB, _, err := solana.FindProgramAddress([][]byte{[]byte("vault_b"), pool[:]}, programID)
	if err != nil {
		return Addresses{}, errors.Wrap(err, "failed to derive vault B")
	}
	shareMint, _, err := solana.FindProgramAddress([][]byte{[]byte("lpmint"), pool[:]}, programID)
	if err != nil {
		return Addresses{}, errors.Wrap(err, "failed to derive share mint")
	}

	return Addresses{
		ProgramID: programID,
		MintA:     mintA,
		MintB:     mintB,
		Pool:      pool,
		Authority: authority,
		VaultA:    vaultA,
		VaultB:    vaultB,
		ShareMint: shareMint,
	}, nil
}

// State is the resolved state of a pool: either Uninitialized
// (Exists=false, only the derived addresses and mint decimals are
// meaningful) or Active. Resolved once per flow invocation and never
// re-checked mid-sequence.
type State struct {
	Addresses Addresses
	Exists    bool

	Fees FeeSchedule

	ReserveA uint64
	ReserveB uint64

	MintADecimals uint8
	MintBDecimals uint8

	ShareSupply uint64
}

// Side selects one leg of a pool.
type Side int

const (
	SideA Side = iota
	SideB
)

// AccountFetcher is the multi-account point-read the state fetch needs.
type AccountFetcher interface {
	MultipleAccounts(ctx context.Context, addrs ...solana.PublicKey) ([][]byte, error)
}

// poolAccount is the on-chain pool account layout (after the 8-byte
// discriminator).
type poolAccount struct {
	MintA     solana.PublicKey
	MintB     solana.PublicKey
	VaultA    solana.PublicKey
	VaultB    solana.PublicKey
	ShareMint solana.PublicKey

	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64

	Bump uint8
}

var poolAccountDiscriminator = [8]byte{0x9c, 0x2f, 0x11, 0x6b, 0x5a, 0xd0, 0x43, 0x27}

// FetchState reads the pool, both mints, both vaults and the share mint
// in a single multi-account call and decodes them.
func FetchState(ctx context.Context, fetcher AccountFetcher, programID, mint1, mint2 solana.PublicKey) (State, error) {
	addrs, err := DeriveAddresses(programID, mint1, mint2)
	if err != nil {
		return State{}, err
	}

	raw, err := fetcher.MultipleAccounts(ctx,
		addrs.Pool, addrs.MintA, addrs.MintB, addrs.VaultA, addrs.VaultB, addrs.ShareMint)
	if err != nil {
		return State{}, errors.Unavailable("pool state", err)
	}
	if len(raw) != 6 {
		return State{}, errors.Unavailable("pool state", errors.NewError(errors.ErrCodeUnavailable, "short multi-account response"))
	}
	poolData, mintAData, mintBData := raw[0], raw[1], raw[2]
	vaultAData, vaultBData, shareMintData := raw[3], raw[4], raw[5]

	if mintAData == nil || mintBData == nil {
		return State{}, errors.InvalidInput("mint does not exist on ledger")
	}
	mintADecimals, err := decodeMintDecimals(addrs.MintA, mintAData)
	if err != nil {
		return State{}, err
	}
	mintBDecimals, err := decodeMintDecimals(addrs.MintB, mintBData)
	if err != nil {
		return State{}, err
	}

	state := State{
		Addresses:     addrs,
		MintADecimals: mintADecimals,
		MintBDecimals: mintBDecimals,
	}

	if poolData == nil {
		return state, nil
	}

	pool, err := decodePoolAccount(poolData)
	if err != nil {
		return State{}, err
	}
	fees, err := feeScheduleFromAccount(pool)
	if err != nil {
		return State{}, err
	}

	if vaultAData == nil || vaultBData == nil || shareMintData == nil {
		return State{}, errors.InvariantViolation("pool %s exists but its vaults or share mint are missing", addrs.Pool)
	}
	reserveA, err := decodeTokenAmount(addrs.VaultA, vaultAData)
	if err != nil {
		return State{}, err
	}
	reserveB, err := decodeTokenAmount(addrs.VaultB, vaultBData)
	if err != nil {
		return State{}, err
	}
	shareSupply, err := decodeMintSupply(addrs.ShareMint, shareMintData)
	if err != nil {
		return State{}, err
	}

	state.Exists = true
	state.Fees = fees
	state.ReserveA = reserveA
	state.ReserveB = reserveB
	state.ShareSupply = shareSupply
	return state, nil
}

// FetchMintDecimals reads one mint's decimal scale.
func FetchMintDecimals(ctx context.Context, fetcher AccountFetcher, mint solana.PublicKey) (uint8, error) {
	raw, err := fetcher.MultipleAccounts(ctx, mint)
	if err != nil {
		return 0, errors.Unavailable("mint", err)
	}
	if len(raw) != 1 || raw[0] == nil {
		return 0, errors.InvalidInput("mint %s does not exist on ledger", mint)
	}
	return decodeMintDecimals(mint, raw[0])
}

// ReserveDecimals returns the reserve amount and decimals of one side.
func (s State) ReserveDecimals(side Side) (uint64, uint8) {
	if side == SideA {
		return s.ReserveA, s.MintADecimals
	}
	return s.ReserveB, s.MintBDecimals
}

// SideOf maps a mint to its pool side.
func (s State) SideOf(mint solana.PublicKey) (Side, error) {
	switch {
	case mint.Equals(s.Addresses.MintA):
		return SideA, nil
	case mint.Equals(s.Addresses.MintB):
		return SideB, nil
	default:
		return 0, errors.InvalidInput("mint %s is not part of pool %s", mint, s.Addresses.Pool)
	}
}

func decodePoolAccount(data []byte) (*poolAccount, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], poolAccountDiscriminator[:]) {
		return nil, errors.InvariantViolation("account is not a swap pool")
	}
	var pool poolAccount
	if err := bin.NewBorshDecoder(data[8:]).Decode(&pool); err != nil {
		return nil, errors.Wrap(err, "failed to decode pool account")
	}
	return &pool, nil
}

// feeScheduleFromAccount validates on-chain fee rates. A 0/0 rate, as
// older pools recorded unused fees, is normalized to 0/1.
func feeScheduleFromAccount(pool *poolAccount) (FeeSchedule, error) {
	normalize := func(num, den uint64) Fee {
		if num == 0 && den == 0 {
			return Fee{Numerator: 0, Denominator: 1}
		}
		return Fee{Numerator: num, Denominator: den}
	}
	return NewFeeSchedule(
		normalize(pool.TradeFeeNumerator, pool.TradeFeeDenominator),
		normalize(pool.OwnerTradeFeeNumerator, pool.OwnerTradeFeeDenominator),
		normalize(pool.OwnerWithdrawFeeNumerator, pool.OwnerWithdrawFeeDenominator),
		normalize(pool.HostFeeNumerator, pool.HostFeeDenominator),
	)
}

func decodeMintDecimals(addr solana.PublicKey, data []byte) (uint8, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return 0, errors.Wrap(err, "failed to decode mint "+addr.String())
	}
	return mint.Decimals, nil
}

func decodeMintSupply(addr solana.PublicKey, data []byte) (uint64, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return 0, errors.Wrap(err, "failed to decode mint "+addr.String())
	}
	return mint.Supply, nil
}

func decodeTokenAmount(addr solana.PublicKey, data []byte) (uint64, error) {
	var account token.Account
	if err := bin.NewBinDecoder(data).Decode(&account); err != nil {
		return 0, errors.Wrap(err, "failed to decode token account "+addr.String())
	}
	return account.Amount, nil
}
