package txn

import (
	"context"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swapkit/internal/errors"
	"github.com/lugondev/go-swapkit/internal/metrics"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
)

// Status classifies what happened to a submitted transaction.
type Status int

const (
	// StatusSuccess: the transaction confirmed on-ledger.
	StatusSuccess Status = iota

	// StatusLedgerRejected: the network returned an explicit error.
	// Never retried automatically.
	StatusLedgerRejected

	// StatusExpired: the freshness token expired before confirmation.
	// The caller must re-quote and rebuild; reserves may have moved.
	StatusExpired

	// StatusUserCancelled: the wallet declined to sign. Not a failure.
	StatusUserCancelled

	// StatusUnavailable: transport failed before anything was
	// broadcast. Safe to retry with a fresh blockhash.
	StatusUnavailable

	// StatusAbandoned: the caller stopped waiting after broadcast. The
	// transaction may still confirm until its expiry height, so this is
	// never safe to retry.
	StatusAbandoned
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusLedgerRejected:
		return "ledger_rejected"
	case StatusExpired:
		return "expired"
	case StatusUserCancelled:
		return "user_cancelled"
	case StatusUnavailable:
		return "unavailable"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of a submission. Submission never throws
// past this boundary: exactly one code path handles "did it land".
type Outcome struct {
	Status    Status
	Signature solana.Signature

	// Reason carries the network's structured rejection reason.
	Reason string

	// Err classifies the failure for errors.Is: ErrStaleBlockhash on
	// expiry, a LEDGER_REJECTED error on rejection, the transport or
	// context error otherwise. Nil on success and user cancellation.
	Err error
}

// UserCancelled is the outcome for a declined signing prompt.
func UserCancelled() Outcome {
	return Outcome{Status: StatusUserCancelled}
}

// Unavailable is the outcome for a transport failure before broadcast.
func Unavailable(err error) Outcome {
	return Outcome{Status: StatusUnavailable, Err: err}
}

// Broadcaster is the submission surface of the ledger RPC client.
type Broadcaster interface {
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (*ledgerrpc.SignatureStatus, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

// Submitter broadcasts serialized transactions and awaits confirmation.
type Submitter struct {
	ledger       Broadcaster
	logger       *slog.Logger
	metrics      metrics.Metrics
	pollInterval time.Duration
}

// NewSubmitter creates a Submitter. Nil logger and metrics select
// defaults.
func NewSubmitter(ledger Broadcaster, logger *slog.Logger, m metrics.Metrics) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Submitter{
		ledger:       ledger,
		logger:       logger,
		metrics:      m,
		pollInterval: 500 * time.Millisecond,
	}
}

// SubmitRaw broadcasts raw and waits for confirmation up to
// expiryHeight, the freshness token's last valid block height. There is
// no other timeout: a transaction outliving its blockhash fails closed
// on the network side, never "maybe applied".
func (s *Submitter) SubmitRaw(ctx context.Context, raw []byte, expiryHeight uint64) Outcome {
	_ = s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsSubmitted, 1)

	sig, err := s.ledger.SendRawTransaction(ctx, raw)
	if err != nil {
		_ = s.metrics.IncrementCounter(ctx, metrics.MetricSubmissionsUnavailable, 1)
		s.logger.Warn("broadcast failed", "error", err)
		return Unavailable(err)
	}

	s.logger.Info("transaction broadcast", "signature", sig, "expiry_height", expiryHeight)
	return s.awaitConfirmation(ctx, sig, expiryHeight)
}

// Submit serializes and broadcasts a signed transaction.
func (s *Submitter) Submit(ctx context.Context, tx *solana.Transaction, expiryHeight uint64) Outcome {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return Unavailable(err)
	}
	return s.SubmitRaw(ctx, raw, expiryHeight)
}

func (s *Submitter) awaitConfirmation(ctx context.Context, sig solana.Signature, expiryHeight uint64) Outcome {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.ledger.SignatureStatus(ctx, sig)
		if err != nil {
			s.logger.Warn("status poll failed", "signature", sig, "error", err)
		} else if status != nil && status.Confirmed {
			if status.LedgerErr != "" {
				_ = s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsRejected, 1)
				s.logger.Warn("transaction rejected", "signature", sig, "reason", status.LedgerErr)
				return Outcome{
					Status:    StatusLedgerRejected,
					Signature: sig,
					Reason:    status.LedgerErr,
					Err:       errors.NewError(errors.ErrCodeLedgerRejected, status.LedgerErr),
				}
			}
			_ = s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsConfirmed, 1)
			s.logger.Info("transaction confirmed", "signature", sig)
			return Outcome{Status: StatusSuccess, Signature: sig}
		}

		height, err := s.ledger.BlockHeight(ctx)
		if err == nil && height > expiryHeight {
			_ = s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsExpired, 1)
			s.logger.Warn("blockhash expired before confirmation", "signature", sig)
			return Outcome{Status: StatusExpired, Signature: sig, Err: errors.ErrStaleBlockhash}
		}

		select {
		case <-ctx.Done():
			// The caller abandoned the wait, not the submission; the
			// transaction stays in flight until its expiry height.
			return Outcome{Status: StatusAbandoned, Signature: sig, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
