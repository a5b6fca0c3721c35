package repositories

import (
	"database/sql"
	"errors"

	intconfig "jamii/internal/config"
	intdb "jamii/internal/db"
	"jamii/internal/domain"
	"jamii/internal/domain/models"
)

// PaymentRepository owns mpesa_payments rows. Terminal status writes go
// through LedgerWriter only; this repository never moves a row past
// pending on its own.
type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `id,
       community_id,
       levy_id,
       user_id,
       COALESCE(phone,''),
       amount,
       COALESCE(payment_ref,''),
       COALESCE(account_ref,''),
       COALESCE(checkout_request_id,''),
       status,
       COALESCE(response_code,''),
       COALESCE(response_description,''),
       COALESCE(mpesa_receipt,''),
       completed_at,
       created_at`

func scanPayment(row *sql.Row) (models.PaymentRequest, error) {
	var p models.PaymentRequest
	var completedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.CommunityID,
		&p.LevyID,
		&p.UserID,
		&p.Phone,
		&p.Amount,
		&p.PaymentRef,
		&p.AccountRef,
		&p.CheckoutRequestID,
		&p.Status,
		&p.ResponseCode,
		&p.ResponseDescription,
		&p.MpesaReceipt,
		&completedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		p.CompletedAt = &t
	}
	return p, nil
}

// Create inserts a new attempt in initiated status and fills in p.ID.
// Insertion happens before the gateway call so a crash mid-flight still
// leaves an auditable row.
func (r PaymentRepository) Create(p *models.PaymentRequest) error {
	p.Status = models.PaymentInitiated
	res, err := r.db().Exec(`
		INSERT INTO mpesa_payments
			(community_id, levy_id, user_id, phone, amount, payment_ref, account_ref, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,NOW())`,
		p.CommunityID, p.LevyID, p.UserID, p.Phone, p.Amount, p.PaymentRef, p.AccountRef, p.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// AttachCheckout records the gateway's answer to the push and moves the
// row from initiated to pending or failed. The status guard keeps the
// transition monotonic if a callback somehow lands first.
func (r PaymentRepository) AttachCheckout(id int64, checkoutID, responseCode, responseDescription, status string) error {
	if status != models.PaymentPending && status != models.PaymentFailed {
		return domain.ValidationError{Field: "status", Msg: "must be pending or failed"}
	}
	_, err := r.db().Exec(`
		UPDATE mpesa_payments
		SET checkout_request_id=?, response_code=?, response_description=?, status=?
		WHERE id=? AND status=?`,
		intdb.NullIfEmpty(checkoutID), responseCode, responseDescription, status,
		id, models.PaymentInitiated,
	)
	return err
}

// GetScoped loads an attempt scoped to the requesting community and user.
func (r PaymentRepository) GetScoped(id int64, rc domain.RequestContext) (models.PaymentRequest, error) {
	row := r.db().QueryRow(`
		SELECT `+paymentColumns+`
		FROM mpesa_payments
		WHERE id=? AND community_id=? AND user_id=?
		LIMIT 1`, id, rc.CommunityID, rc.UserID)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentRequest{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.PaymentRequest{}, err
	}
	return p, nil
}

// GetByCheckoutID correlates a gateway callback with the local attempt.
func (r PaymentRepository) GetByCheckoutID(checkoutID string) (models.PaymentRequest, error) {
	if checkoutID == "" {
		return models.PaymentRequest{}, domain.NotFoundError{Resource: "payment"}
	}
	row := r.db().QueryRow(`
		SELECT `+paymentColumns+`
		FROM mpesa_payments
		WHERE checkout_request_id=?
		LIMIT 1`, checkoutID)

	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentRequest{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.PaymentRequest{}, err
	}
	return p, nil
}
