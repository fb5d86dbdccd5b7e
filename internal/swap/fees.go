// Package swap holds the client-side model of the on-chain token-swap
// program: pool address derivation, pool state, the quote engine, and
// the instruction sequencer.
package swap

import (
	"math/big"

	"github.com/lugondev/go-swapkit/internal/errors"
)

// Fee is an exact rational fee rate. Amounts that settle on-ledger are
// never priced with floating point.
type Fee struct {
	Numerator   uint64
	Denominator uint64
}

// Validate checks the fee invariants: a nonzero denominator and a rate
// of at most 1.
func (f Fee) Validate() error {
	if f.Denominator == 0 {
		return errors.InvalidInput("fee denominator must not be zero")
	}
	if f.Numerator > f.Denominator {
		return errors.InvalidInput("fee rate %d/%d exceeds 1", f.Numerator, f.Denominator)
	}
	return nil
}

// Apply returns floor(amount * numerator / denominator).
func (f Fee) Apply(amount uint64) uint64 {
	return mulDiv(amount, f.Numerator, f.Denominator)
}

// FeeSchedule is the validated set of fee rates a pool charges.
type FeeSchedule struct {
	// Trade is the total fee taken from every swap input.
	Trade Fee

	// OwnerTrade is the subset of the trade fee routed to the protocol.
	OwnerTrade Fee

	// OwnerWithdraw is taken from withdrawals.
	OwnerWithdraw Fee

	// Host is the referrer's share, routed to the host fee receiver.
	Host Fee
}

// NewFeeSchedule validates and returns a fee schedule.
func NewFeeSchedule(trade, ownerTrade, ownerWithdraw, host Fee) (FeeSchedule, error) {
	s := FeeSchedule{
		Trade:         trade,
		OwnerTrade:    ownerTrade,
		OwnerWithdraw: ownerWithdraw,
		Host:          host,
	}
	if err := s.Validate(); err != nil {
		return FeeSchedule{}, err
	}
	return s, nil
}

// Validate checks every rate of the schedule.
func (s FeeSchedule) Validate() error {
	for _, f := range []Fee{s.Trade, s.OwnerTrade, s.OwnerWithdraw, s.Host} {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultFeeSchedule returns the fee rates of the reference deployment:
// 0.25% trade fee, 0.05% of which goes to the protocol, no withdraw fee,
// and a 20% host share.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Trade:         Fee{Numerator: 25, Denominator: 10000},
		OwnerTrade:    Fee{Numerator: 5, Denominator: 10000},
		OwnerWithdraw: Fee{Numerator: 0, Denominator: 1},
		Host:          Fee{Numerator: 20, Denominator: 100},
	}
}

// mulDiv returns floor(a * b / den) without intermediate overflow.
func mulDiv(a, b, den uint64) uint64 {
	x := new(big.Int).SetUint64(a)
	x.Mul(x, new(big.Int).SetUint64(b))
	x.Quo(x, new(big.Int).SetUint64(den))
	return x.Uint64()
}
