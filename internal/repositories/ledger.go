package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "jamii/internal/config"
	"jamii/internal/domain"
	"jamii/internal/domain/models"
	"jamii/internal/utils"
)

// Outcome is a terminal result observed for a payment attempt, from
// either the gateway callback or a status query.
type Outcome struct {
	Success            bool
	ReceiptNumber      string
	TransactionDate    string
	FailureCode        string
	FailureDescription string
}

// LedgerWriter finalizes a PaymentRequest and its levy together. Settle
// is idempotent: the terminal write is guarded on the row still being
// non-terminal, so whichever of the callback and the poll observes the
// outcome first wins and the loser is a no-op. Both updates share one
// transaction; no observer ever sees a completed payment against an
// unpaid levy.
type LedgerWriter struct {
	DB *sql.DB
}

func (w LedgerWriter) db() *sql.DB {
	if w.DB != nil {
		return w.DB
	}
	return intconfig.DB
}

// Settle applies the outcome exactly once. Re-settling an already
// terminal row returns nil without touching anything.
func (w LedgerWriter) Settle(paymentID int64, out Outcome) error {
	tx, err := w.db().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var levyID int64
	var paymentRef string
	err = tx.QueryRow(`SELECT levy_id, COALESCE(payment_ref,'') FROM mpesa_payments WHERE id=?`, paymentID).
		Scan(&levyID, &paymentRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "payment"}
		}
		return err
	}

	completedAt := utils.ParseGatewayTimestamp(out.TransactionDate)
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	if !out.Success {
		res, err := tx.Exec(`
			UPDATE mpesa_payments
			SET status=?, response_code=?, response_description=?, completed_at=?
			WHERE id=? AND status IN (?,?)`,
			models.PaymentFailed, out.FailureCode, out.FailureDescription, completedAt,
			paymentID, models.PaymentInitiated, models.PaymentPending,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			// already terminal, first writer won
			return nil
		}
		// the levy stays payable on failure
		return tx.Commit()
	}

	res, err := tx.Exec(`
		UPDATE mpesa_payments
		SET status=?, mpesa_receipt=?, completed_at=?
		WHERE id=? AND status IN (?,?)`,
		models.PaymentCompleted, out.ReceiptNumber, completedAt,
		paymentID, models.PaymentInitiated, models.PaymentPending,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	// status queries report success without a receipt; fall back to the
	// local idempotent reference so the levy always carries a traceable one
	reference := out.ReceiptNumber
	if reference == "" {
		reference = paymentRef
	}

	if _, err := tx.Exec(`
		UPDATE levies
		SET status=?, payment_method='mpesa', payment_reference=?, payment_date=?
		WHERE id=?`,
		models.LevyPaid, reference, utils.FormatDate(completedAt), levyID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
