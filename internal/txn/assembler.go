// Package txn assembles sequenced instructions into a transaction and
// submits it, classifying the outcome.
package txn

import (
	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swapkit/internal/blockhash"
	"github.com/lugondev/go-swapkit/internal/errors"
	"github.com/lugondev/go-swapkit/internal/swap"
)

// Assemble attaches the fee payer and freshness token to a plan's
// instructions, in sequencer order, and applies the ephemeral
// co-signatures. The wallet-held primary signature is attached by the
// wallet collaborator afterwards.
//
// A plan whose ephemeral authorities cannot all co-sign would be
// rejected outright by the network; that is a programming error in the
// sequencer and is reported as a non-retryable invariant violation.
func Assemble(plan *swap.Plan, payer solana.PublicKey, token blockhash.Token) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		plan.Instructions,
		token.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assemble transaction")
	}

	signers := plan.EphemeralSigners()
	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to apply ephemeral signatures")
	}

	if err := verifyCoSigners(tx, plan.RequiredCoSigners()); err != nil {
		return nil, err
	}
	return tx, nil
}

// verifyCoSigners checks that every required ephemeral authority holds
// a signature slot and actually signed.
func verifyCoSigners(tx *solana.Transaction, required []solana.PublicKey) error {
	signerKeys := tx.Message.Signers()

	for _, authority := range required {
		idx := -1
		for i, key := range signerKeys {
			if key.Equals(authority) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return errors.InvariantViolation("authority %s is not a required signer of its own transaction", authority)
		}
		if idx >= len(tx.Signatures) || tx.Signatures[idx].IsZero() {
			return errors.InvariantViolation("authority %s did not co-sign", authority)
		}
	}
	return nil
}
