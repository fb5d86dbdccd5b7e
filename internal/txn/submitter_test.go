package txn

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-swapkit/internal/errors"
	"github.com/lugondev/go-swapkit/internal/metrics"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
)

type fakeLedger struct {
	sendErr error
	sig     solana.Signature

	// statuses are returned in order; the last entry repeats.
	statuses []*ledgerrpc.SignatureStatus
	statusAt int

	height uint64
}

func (f *fakeLedger) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return f.sig, nil
}

func (f *fakeLedger) SignatureStatus(ctx context.Context, sig solana.Signature) (*ledgerrpc.SignatureStatus, error) {
	if len(f.statuses) == 0 {
		return nil, nil
	}
	st := f.statuses[f.statusAt]
	if f.statusAt < len(f.statuses)-1 {
		f.statusAt++
	}
	return st, nil
}

func (f *fakeLedger) BlockHeight(ctx context.Context) (uint64, error) {
	return f.height, nil
}

func newTestSubmitter(ledger Broadcaster) (*Submitter, *metrics.LogMetrics) {
	m := metrics.NewLogMetrics(nil)
	s := NewSubmitter(ledger, nil, m)
	s.pollInterval = time.Millisecond
	return s, m
}

func TestSubmitRawConfirms(t *testing.T) {
	ledger := &fakeLedger{
		sig: solana.Signature{1},
		statuses: []*ledgerrpc.SignatureStatus{
			nil,
			{Confirmed: true},
		},
	}
	s, m := newTestSubmitter(ledger)

	outcome := s.SubmitRaw(context.Background(), []byte{1, 2, 3}, 100)
	require.Equal(t, StatusSuccess, outcome.Status)
	require.Equal(t, ledger.sig, outcome.Signature)
	require.Equal(t, uint64(1), m.Counter(metrics.MetricTransactionsConfirmed))
}

func TestSubmitRawReportsLedgerRejection(t *testing.T) {
	ledger := &fakeLedger{
		sig: solana.Signature{2},
		statuses: []*ledgerrpc.SignatureStatus{
			{Confirmed: true, LedgerErr: "custom program error: 0x1"},
		},
	}
	s, m := newTestSubmitter(ledger)

	outcome := s.SubmitRaw(context.Background(), []byte{1}, 100)
	require.Equal(t, StatusLedgerRejected, outcome.Status)
	require.Equal(t, "custom program error: 0x1", outcome.Reason)
	require.Equal(t, uint64(1), m.Counter(metrics.MetricTransactionsRejected))

	var swapErr *errors.SwapError
	require.True(t, errors.As(outcome.Err, &swapErr))
	require.Equal(t, errors.ErrCodeLedgerRejected, swapErr.Code)
}

func TestSubmitRawExpiresPastLastValidHeight(t *testing.T) {
	ledger := &fakeLedger{
		sig:    solana.Signature{3},
		height: 101,
	}
	s, m := newTestSubmitter(ledger)

	outcome := s.SubmitRaw(context.Background(), []byte{1}, 100)
	require.Equal(t, StatusExpired, outcome.Status)
	require.True(t, errors.Is(outcome.Err, errors.ErrStaleBlockhash))
	require.Equal(t, uint64(1), m.Counter(metrics.MetricTransactionsExpired))
}

func TestSubmitRawUnavailableOnBroadcastFailure(t *testing.T) {
	ledger := &fakeLedger{sendErr: context.DeadlineExceeded}
	s, m := newTestSubmitter(ledger)

	outcome := s.SubmitRaw(context.Background(), []byte{1}, 100)
	require.Equal(t, StatusUnavailable, outcome.Status)
	require.Error(t, outcome.Err)
	require.Equal(t, uint64(1), m.Counter(metrics.MetricSubmissionsUnavailable))
}

func TestSubmitRawAbandonedOnCancelledWait(t *testing.T) {
	ledger := &fakeLedger{
		sig:    solana.Signature{4},
		height: 10,
	}
	s, _ := newTestSubmitter(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := s.SubmitRaw(ctx, []byte{1}, 100)
	require.Equal(t, StatusAbandoned, outcome.Status)
	require.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "success", StatusSuccess.String())
	require.Equal(t, "ledger_rejected", StatusLedgerRejected.String())
	require.Equal(t, "expired", StatusExpired.String())
	require.Equal(t, "user_cancelled", StatusUserCancelled.String())
	require.Equal(t, "unavailable", StatusUnavailable.String())
	require.Equal(t, "abandoned", StatusAbandoned.String())
}
