package swap

import (
	"math/big"

	"github.com/lugondev/go-swapkit/internal/errors"
)

// Slippage is a user-specified tolerance expressed as an exact fraction,
// e.g. 5/1000 for 0.5%. A nil *Slippage selects the distinct
// infinite-tolerance mode: the swap carries no minimum-output floor.
type Slippage struct {
	Numerator   uint64
	Denominator uint64
}

// Validate checks the tolerance is a fraction of at most 1.
func (s Slippage) Validate() error {
	if s.Denominator == 0 {
		return errors.InvalidInput("slippage denominator must not be zero")
	}
	if s.Numerator > s.Denominator {
		return errors.InvalidInput("slippage %d/%d exceeds 1", s.Numerator, s.Denominator)
	}
	return nil
}

// SwapQuote is a pure, recomputed-per-input estimate of a swap. It is
// never persisted.
type SwapQuote struct {
	AmountIn uint64

	// FeeAmount is the trade fee subtracted from AmountIn before the
	// curve is applied.
	FeeAmount uint64

	// AmountOut is the raw curve output.
	AmountOut uint64

	// MinimumOut is the slippage-adjusted minimum acceptable output.
	// Meaningless when Unbounded is true.
	MinimumOut uint64

	// Unbounded marks the infinite-tolerance mode: the caller set no
	// slippage and accepts any output.
	Unbounded bool

	// InDecimals and OutDecimals are the decimal scales of the two
	// sides, taken from pool state and never assumed equal.
	InDecimals  uint8
	OutDecimals uint8
}

// QuoteSwap prices amountIn against a constant-product pool.
//
// The trade fee is subtracted from the input first, then the invariant
// is applied: out = floor(reserveOut * effIn / (reserveIn + effIn)).
// All rounding floors, so a quote never overstates the output.
func QuoteSwap(amountIn, reserveIn, reserveOut uint64, inDecimals, outDecimals uint8, fees FeeSchedule, tolerance *Slippage) (SwapQuote, error) {
	if err := fees.Validate(); err != nil {
		return SwapQuote{}, err
	}
	if tolerance != nil {
		if err := tolerance.Validate(); err != nil {
			return SwapQuote{}, err
		}
	}
	if reserveIn == 0 || reserveOut == 0 {
		return SwapQuote{}, errors.ErrPoolNotLiquid
	}

	q := SwapQuote{
		AmountIn:    amountIn,
		Unbounded:   tolerance == nil,
		InDecimals:  inDecimals,
		OutDecimals: outDecimals,
	}
	if amountIn == 0 {
		return q, nil
	}

	q.FeeAmount = fees.Trade.Apply(amountIn)
	effectiveIn := amountIn - q.FeeAmount

	// floor(reserveOut * effectiveIn / (reserveIn + effectiveIn))
	num := new(big.Int).SetUint64(reserveOut)
	num.Mul(num, new(big.Int).SetUint64(effectiveIn))
	den := new(big.Int).SetUint64(reserveIn)
	den.Add(den, new(big.Int).SetUint64(effectiveIn))
	q.AmountOut = num.Quo(num, den).Uint64()

	if tolerance != nil {
		q.MinimumOut = mulDiv(q.AmountOut, tolerance.Denominator-tolerance.Numerator, tolerance.Denominator)
	}
	return q, nil
}

// SharesOut quotes the pool shares owed for a single-sided deposit:
// floor(deposit * totalShares / reserve). Floor rounding is mandatory so
// a depositor can never extract more pool value than contributed.
//
// The totalShares == 0 case is only reachable through pool
// initialization, which prices with InitialShares instead; quoting a
// deposit against an empty pool is an error here.
func SharesOut(deposit, reserve, totalShares uint64) (uint64, error) {
	if reserve == 0 || totalShares == 0 {
		return 0, errors.ErrPoolNotLiquid
	}
	if deposit == 0 {
		return 0, nil
	}
	return mulDiv(deposit, totalShares, reserve), nil
}

// InitialShares converts a first deposit into pool shares at the pool's
// fixed share precision.
func InitialShares(amount uint64, mintDecimals uint8) uint64 {
	if mintDecimals == ShareDecimals {
		return amount
	}
	if mintDecimals < ShareDecimals {
		return amount * pow10(ShareDecimals-mintDecimals)
	}
	return amount / pow10(mintDecimals-ShareDecimals)
}

func pow10(n uint8) uint64 {
	out := uint64(1)
	for i := uint8(0); i < n; i++ {
		out *= 10
	}
	return out
}
