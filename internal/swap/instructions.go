package swap

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swapkit/internal/errors"
)

// Instruction discriminators of the swap program.
var (
	initializeDiscriminator = [8]byte{0xaf, 0xaf, 0x6d, 0x1f, 0x0d, 0x98, 0x9b, 0xed}
	depositDiscriminator    = [8]byte{0x6c, 0x41, 0xa5, 0x3e, 0x2f, 0x8a, 0x71, 0x90}
	swapDiscriminator       = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}
)

// constantProductCurve is the only curve type this client targets.
const constantProductCurve uint8 = 0

type feeArgs struct {
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64
}

func feeArgsFrom(s FeeSchedule) feeArgs {
	return feeArgs{
		TradeFeeNumerator:           s.Trade.Numerator,
		TradeFeeDenominator:         s.Trade.Denominator,
		OwnerTradeFeeNumerator:      s.OwnerTrade.Numerator,
		OwnerTradeFeeDenominator:    s.OwnerTrade.Denominator,
		OwnerWithdrawFeeNumerator:   s.OwnerWithdraw.Numerator,
		OwnerWithdrawFeeDenominator: s.OwnerWithdraw.Denominator,
		HostFeeNumerator:            s.Host.Numerator,
		HostFeeDenominator:          s.Host.Denominator,
	}
}

type initializeArgs struct {
	Fees           feeArgs
	CurveType      uint8
	InitialAmountA uint64
	InitialAmountB uint64
}

type depositArgs struct {
	SourceTokenAmount      uint64
	MinimumPoolTokenAmount uint64
}

type swapArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

func encodeInstruction(discriminator [8]byte, args any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, errors.Wrap(err, "failed to encode instruction")
	}
	return buf.Bytes(), nil
}

// newInitializeInstruction emits the single curve-initialization
// instruction. The provider's share holding account is created by the
// program as part of this instruction, not separately.
func newInitializeInstruction(a Addresses, fees FeeSchedule, amountA, amountB uint64, owner, transferAuthority, sourceA, sourceB, shareAccount, feeReceiver, feeReceiverWallet solana.PublicKey) (solana.Instruction, error) {
	data, err := encodeInstruction(initializeDiscriminator, initializeArgs{
		Fees:           feeArgsFrom(fees),
		CurveType:      constantProductCurve,
		InitialAmountA: amountA,
		InitialAmountB: amountB,
	})
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(a.VaultA, true, false),
		solana.NewAccountMeta(a.VaultB, true, false),
		solana.NewAccountMeta(a.ShareMint, true, false),
		solana.NewAccountMeta(feeReceiver, true, false),
		solana.NewAccountMeta(feeReceiverWallet, false, false),
		solana.NewAccountMeta(a.MintA, false, false),
		solana.NewAccountMeta(a.MintB, false, false),
		solana.NewAccountMeta(owner, true, true),
		solana.NewAccountMeta(transferAuthority, false, true),
		solana.NewAccountMeta(sourceA, true, false),
		solana.NewAccountMeta(sourceB, true, false),
		solana.NewAccountMeta(shareAccount, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(a.ProgramID, metas, data), nil
}

// newDepositInstruction emits a single-sided deposit of one leg. The
// untouched side's token account slot carries the program id, the
// convention for an absent optional account.
func newDepositInstruction(a Addresses, side Side, amount, minShares uint64, owner, transferAuthority, source, shareAccount solana.PublicKey) (solana.Instruction, error) {
	data, err := encodeInstruction(depositDiscriminator, depositArgs{
		SourceTokenAmount:      amount,
		MinimumPoolTokenAmount: minShares,
	})
	if err != nil {
		return nil, err
	}

	tokenA, tokenB := source, a.ProgramID
	if side == SideB {
		tokenA, tokenB = a.ProgramID, source
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(owner, false, true),
		solana.NewAccountMeta(transferAuthority, false, true),
		solana.NewAccountMeta(tokenA, true, false),
		solana.NewAccountMeta(tokenB, true, false),
		solana.NewAccountMeta(a.VaultA, true, false),
		solana.NewAccountMeta(a.VaultB, true, false),
		solana.NewAccountMeta(a.ShareMint, true, false),
		solana.NewAccountMeta(shareAccount, true, false),
		solana.NewAccountMeta(a.MintA, false, false),
		solana.NewAccountMeta(a.MintB, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(a.ProgramID, metas, data), nil
}

// newSwapInstruction emits the swap with its minimum-acceptable-output
// guard and the referrer fee destination.
func newSwapInstruction(a Addresses, amountIn, minimumOut uint64, owner, transferAuthority, source, sourceVault, destVault, dest, feeReceiver, hostFeeReceiver solana.PublicKey) (solana.Instruction, error) {
	data, err := encodeInstruction(swapDiscriminator, swapArgs{
		AmountIn:         amountIn,
		MinimumAmountOut: minimumOut,
	})
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(owner, false, true),
		solana.NewAccountMeta(transferAuthority, false, true),
		solana.NewAccountMeta(source, true, false),
		solana.NewAccountMeta(sourceVault, true, false),
		solana.NewAccountMeta(destVault, true, false),
		solana.NewAccountMeta(dest, true, false),
		solana.NewAccountMeta(a.ShareMint, true, false),
		solana.NewAccountMeta(feeReceiver, true, false),
		solana.NewAccountMeta(hostFeeReceiver, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(a.ProgramID, metas, data), nil
}

// newCreateHoldingAccountInstruction idempotently creates the canonical
// holding account for (owner, mint). It never fails when the account
// already exists.
func newCreateHoldingAccountInstruction(payer, account, owner, mint solana.PublicKey) solana.Instruction {
	// CreateIdempotent variant of the associated token account program.
	data := []byte{1}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, metas, data)
}
