package swap

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/lugondev/go-swapkit/internal/errors"
)

// Plan is the ordered instruction list of one flow, plus the ephemeral
// transfer authorities that must co-sign the transaction.
//
// Each ephemeral authority is created immediately before its approval
// instruction, used for exactly one transaction, and must be zeroized
// once the signed transaction has been serialized. Reusing one across
// transactions would allow unbounded replay of its allowance.
type Plan struct {
	Instructions []solana.Instruction

	ephemeral []solana.PrivateKey
}

// EphemeralSigners returns the private keys that must co-sign.
func (p *Plan) EphemeralSigners() []solana.PrivateKey {
	return p.ephemeral
}

// RequiredCoSigners returns the public keys of every ephemeral
// authority.
func (p *Plan) RequiredCoSigners() []solana.PublicKey {
	out := make([]solana.PublicKey, len(p.ephemeral))
	for i, pk := range p.ephemeral {
		out[i] = pk.PublicKey()
	}
	return out
}

// Zeroize wipes the ephemeral key material. The plan must not be signed
// with afterwards.
func (p *Plan) Zeroize() {
	for _, pk := range p.ephemeral {
		for i := range pk {
			pk[i] = 0
		}
	}
	p.ephemeral = nil
}

func (p *Plan) newEphemeralAuthority() solana.PrivateKey {
	key := solana.NewWallet().PrivateKey
	p.ephemeral = append(p.ephemeral, key)
	return key
}

func approveInstruction(source, delegate, owner solana.PublicKey, amount uint64) (solana.Instruction, error) {
	inst, err := token.NewApproveInstruction(amount, source, delegate, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build approve instruction")
	}
	return inst, nil
}

// InitializeParams describe a pool-initialization flow.
type InitializeParams struct {
	Owner solana.PublicKey

	// MaxAmountA/B are the initial deposits, in each mint's base units.
	MaxAmountA uint64
	MaxAmountB uint64

	SourceA solana.PublicKey
	SourceB solana.PublicKey

	Fees              FeeSchedule
	FeeReceiverWallet solana.PublicKey
}

// BuildInitialize sequences pool creation: a single delegated authority
// is granted an allowance over both source accounts, then one
// initialization instruction carries both amounts and the fee schedule.
func BuildInitialize(state State, p InitializeParams) (*Plan, error) {
	if state.Exists {
		return nil, errors.ErrPoolExists
	}
	if p.MaxAmountA == 0 || p.MaxAmountB == 0 {
		return nil, errors.InvalidInput("initialization requires positive amounts on both sides")
	}
	if err := p.Fees.Validate(); err != nil {
		return nil, err
	}

	a := state.Addresses
	shareAccount, _, err := solana.FindAssociatedTokenAddress(p.Owner, a.ShareMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive share account")
	}
	feeReceiver, _, err := solana.FindAssociatedTokenAddress(p.FeeReceiverWallet, a.ShareMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive fee receiver")
	}

	plan := &Plan{}
	authority := plan.newEphemeralAuthority()

	approveA, err := approveInstruction(p.SourceA, authority.PublicKey(), p.Owner, p.MaxAmountA)
	if err != nil {
		return nil, err
	}
	approveB, err := approveInstruction(p.SourceB, authority.PublicKey(), p.Owner, p.MaxAmountB)
	if err != nil {
		return nil, err
	}
	initialize, err := newInitializeInstruction(a, p.Fees, p.MaxAmountA, p.MaxAmountB,
		p.Owner, authority.PublicKey(), p.SourceA, p.SourceB, shareAccount, feeReceiver, p.FeeReceiverWallet)
	if err != nil {
		return nil, err
	}

	plan.Instructions = []solana.Instruction{approveA, approveB, initialize}
	return plan, nil
}

// DepositParams describe a liquidity-deposit flow. Sides are
// independent: a deposit with only one positive amount moves only that
// side.
type DepositParams struct {
	Owner solana.PublicKey

	AmountA uint64
	AmountB uint64

	SourceA solana.PublicKey
	SourceB solana.PublicKey
}

// BuildDeposit sequences a deposit: the provider's share account is
// ensured idempotently, then each positive side gets a fresh single-use
// authority scoped to exactly that side's amount, immediately followed
// by that side's deposit instruction. The (grant, deposit) pair of a
// leg must stay adjacent; pairing leg A's grant with leg B's deposit is
// unrecoverable after submission.
func BuildDeposit(state State, p DepositParams) (*Plan, error) {
	if !state.Exists {
		return nil, errors.ErrPoolNotFound
	}
	if p.AmountA == 0 && p.AmountB == 0 {
		return nil, errors.InvalidInput("deposit requires a positive amount on at least one side")
	}

	a := state.Addresses
	shareAccount, _, err := solana.FindAssociatedTokenAddress(p.Owner, a.ShareMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive share account")
	}

	plan := &Plan{
		Instructions: []solana.Instruction{
			newCreateHoldingAccountInstruction(p.Owner, shareAccount, p.Owner, a.ShareMint),
		},
	}

	type leg struct {
		side   Side
		amount uint64
		source solana.PublicKey
	}
	legs := []leg{
		{SideA, p.AmountA, p.SourceA},
		{SideB, p.AmountB, p.SourceB},
	}

	for _, l := range legs {
		if l.amount == 0 {
			continue
		}

		reserve, _ := state.ReserveDecimals(l.side)
		minShares, err := SharesOut(l.amount, reserve, state.ShareSupply)
		if err != nil {
			return nil, err
		}

		authority := plan.newEphemeralAuthority()
		approve, err := approveInstruction(l.source, authority.PublicKey(), p.Owner, l.amount)
		if err != nil {
			return nil, err
		}
		deposit, err := newDepositInstruction(a, l.side, l.amount, minShares,
			p.Owner, authority.PublicKey(), l.source, shareAccount)
		if err != nil {
			return nil, err
		}
		plan.Instructions = append(plan.Instructions, approve, deposit)
	}

	return plan, nil
}

// SwapParams describe a swap flow.
type SwapParams struct {
	Owner solana.PublicKey

	// SourceMint selects the direction; it must be one of the pool's
	// mints.
	SourceMint solana.PublicKey

	AmountIn uint64

	// MinimumOut is the slippage guard. Ignored when Unbounded.
	MinimumOut uint64
	Unbounded  bool

	Source solana.PublicKey

	// Dest is the destination holding account. When nil the canonical
	// account is derived and created idempotently.
	Dest *solana.PublicKey

	FeeReceiverWallet solana.PublicKey
}

// BuildSwap sequences a swap: at most one idempotent destination
// creation, exactly one delegated authority scoped to the input amount,
// and the swap instruction itself.
func BuildSwap(state State, p SwapParams) (*Plan, error) {
	if !state.Exists {
		return nil, errors.ErrPoolNotFound
	}
	if p.AmountIn == 0 {
		return nil, errors.InvalidInput("swap requires a positive input amount")
	}

	side, err := state.SideOf(p.SourceMint)
	if err != nil {
		return nil, err
	}

	a := state.Addresses
	sourceVault, destVault := a.VaultA, a.VaultB
	destMint := a.MintB
	if side == SideB {
		sourceVault, destVault = a.VaultB, a.VaultA
		destMint = a.MintA
	}

	feeReceiver, _, err := solana.FindAssociatedTokenAddress(p.FeeReceiverWallet, a.ShareMint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive fee receiver")
	}

	plan := &Plan{}

	var dest solana.PublicKey
	if p.Dest != nil {
		dest = *p.Dest
	} else {
		derived, _, err := solana.FindAssociatedTokenAddress(p.Owner, destMint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive destination account")
		}
		dest = derived
		plan.Instructions = append(plan.Instructions,
			newCreateHoldingAccountInstruction(p.Owner, dest, p.Owner, destMint))
	}

	minimumOut := p.MinimumOut
	if p.Unbounded {
		minimumOut = 0
	}

	authority := plan.newEphemeralAuthority()
	approve, err := approveInstruction(p.Source, authority.PublicKey(), p.Owner, p.AmountIn)
	if err != nil {
		return nil, err
	}
	swap, err := newSwapInstruction(a, p.AmountIn, minimumOut,
		p.Owner, authority.PublicKey(), p.Source, sourceVault, destVault, dest, feeReceiver, feeReceiver)
	if err != nil {
		return nil, err
	}

	plan.Instructions = append(plan.Instructions, approve, swap)
	return plan, nil
}
