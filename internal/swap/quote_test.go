package swap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-swapkit/internal/errors"
)

func defaultSlippage() *Slippage {
	return &Slippage{Numerator: 5, Denominator: 1000}
}

func TestQuoteSwapReferenceScenario(t *testing.T) {
	// Reserves (A=1_000_000, B=2_000_000), trade fee 25/10000,
	// 10_000 of A in.
	q, err := QuoteSwap(10_000, 1_000_000, 2_000_000, 6, 6, DefaultFeeSchedule(), defaultSlippage())
	require.NoError(t, err)

	require.Equal(t, uint64(25), q.FeeAmount)              // effectiveIn = 9_975
	require.Equal(t, uint64(19_753), q.AmountOut)          // floor(2e6*9975/1_009_975)
	require.Equal(t, uint64(19_654), q.MinimumOut)         // floor(19753 * 0.995)
	require.False(t, q.Unbounded)
}

func TestQuoteSwapUnboundedMode(t *testing.T) {
	q, err := QuoteSwap(10_000, 1_000_000, 2_000_000, 6, 6, DefaultFeeSchedule(), nil)
	require.NoError(t, err)
	require.True(t, q.Unbounded)
	require.Zero(t, q.MinimumOut)
	require.Equal(t, uint64(19_753), q.AmountOut)
}

func TestQuoteSwapNeverDrainsReserve(t *testing.T) {
	fees := DefaultFeeSchedule()
	for _, amountIn := range []uint64{1, 1000, 1_000_000, 1 << 40, 1<<63 - 1} {
		q, err := QuoteSwap(amountIn, 1000, 500, 0, 0, fees, nil)
		require.NoError(t, err)
		require.LessOrEqual(t, q.AmountOut, uint64(500), "amountIn=%d", amountIn)
	}
}

func TestQuoteSwapMonotonicInInput(t *testing.T) {
	fees := DefaultFeeSchedule()
	var prev uint64
	for amountIn := uint64(0); amountIn <= 50_000; amountIn += 617 {
		q, err := QuoteSwap(amountIn, 1_000_000, 2_000_000, 6, 6, fees, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, q.AmountOut, prev, "amountIn=%d", amountIn)
		prev = q.AmountOut
	}
}

func TestQuoteSwapFeeMonotonicity(t *testing.T) {
	// A strictly larger trade fee strictly decreases the output.
	low := FeeSchedule{
		Trade:         Fee{Numerator: 25, Denominator: 10000},
		OwnerTrade:    Fee{Numerator: 5, Denominator: 10000},
		OwnerWithdraw: Fee{Numerator: 0, Denominator: 1},
		Host:          Fee{Numerator: 20, Denominator: 100},
	}
	high := low
	high.Trade.Numerator = 500

	qLow, err := QuoteSwap(100_000, 1_000_000, 2_000_000, 6, 6, low, nil)
	require.NoError(t, err)
	qHigh, err := QuoteSwap(100_000, 1_000_000, 2_000_000, 6, 6, high, nil)
	require.NoError(t, err)

	require.Less(t, qHigh.AmountOut, qLow.AmountOut)
}

func TestQuoteSwapZeroInput(t *testing.T) {
	q, err := QuoteSwap(0, 1_000_000, 2_000_000, 6, 6, DefaultFeeSchedule(), defaultSlippage())
	require.NoError(t, err)
	require.Zero(t, q.AmountOut)
	require.Zero(t, q.FeeAmount)
	require.Zero(t, q.MinimumOut)
}

func TestQuoteSwapEmptyReservesUndefined(t *testing.T) {
	_, err := QuoteSwap(100, 0, 2_000_000, 6, 6, DefaultFeeSchedule(), nil)
	require.True(t, errors.Is(err, errors.ErrPoolNotLiquid))

	_, err = QuoteSwap(100, 1_000_000, 0, 6, 6, DefaultFeeSchedule(), nil)
	require.True(t, errors.Is(err, errors.ErrPoolNotLiquid))
}

func TestQuoteSwapDecimalsCarriedPerSide(t *testing.T) {
	q, err := QuoteSwap(1, 10, 10, 6, 9, DefaultFeeSchedule(), nil)
	require.NoError(t, err)
	require.Equal(t, uint8(6), q.InDecimals)
	require.Equal(t, uint8(9), q.OutDecimals)
}

func TestQuoteSwapRejectsInvalidSlippage(t *testing.T) {
	_, err := QuoteSwap(1, 10, 10, 0, 0, DefaultFeeSchedule(), &Slippage{Numerator: 2, Denominator: 1})
	require.Error(t, err)

	_, err = QuoteSwap(1, 10, 10, 0, 0, DefaultFeeSchedule(), &Slippage{Numerator: 1, Denominator: 0})
	require.Error(t, err)
}

func TestSharesOutFloorsAdversarialValues(t *testing.T) {
	// depositAmount=1, totalShares=1, reserveAmount=3 must floor to 0.
	shares, err := SharesOut(1, 3, 1)
	require.NoError(t, err)
	require.Zero(t, shares)
}

func TestSharesOutProportional(t *testing.T) {
	shares, err := SharesOut(500, 1000, 4000)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), shares)
}

func TestSharesOutLargeValuesNoOverflow(t *testing.T) {
	// deposit * totalShares overflows uint64; the floor-div result fits.
	shares, err := SharesOut(1<<40, 1<<41, 1<<41)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), shares)
}

func TestSharesOutEmptyPoolRejected(t *testing.T) {
	_, err := SharesOut(100, 0, 1000)
	require.True(t, errors.Is(err, errors.ErrPoolNotLiquid))

	_, err = SharesOut(100, 1000, 0)
	require.True(t, errors.Is(err, errors.ErrPoolNotLiquid))
}

func TestSharesOutZeroDeposit(t *testing.T) {
	shares, err := SharesOut(0, 1000, 1000)
	require.NoError(t, err)
	require.Zero(t, shares)
}

func TestInitialSharesScalesIntoSharePrecision(t *testing.T) {
	require.Equal(t, uint64(1_000), InitialShares(1, 6))
	require.Equal(t, uint64(1), InitialShares(1, 9))
	require.Equal(t, uint64(1), InitialShares(1_000, 12))
}

func TestFeeValidation(t *testing.T) {
	require.Error(t, Fee{Numerator: 1, Denominator: 0}.Validate())
	require.Error(t, Fee{Numerator: 2, Denominator: 1}.Validate())
	require.NoError(t, Fee{Numerator: 0, Denominator: 1}.Validate())

	_, err := NewFeeSchedule(
		Fee{Numerator: 25, Denominator: 10000},
		Fee{Numerator: 5, Denominator: 10000},
		Fee{Numerator: 0, Denominator: 0},
		Fee{Numerator: 20, Denominator: 100},
	)
	require.Error(t, err)

	require.NoError(t, DefaultFeeSchedule().Validate())
}
