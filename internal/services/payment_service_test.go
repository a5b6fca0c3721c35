package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"jamii/internal/domain"
	"jamii/internal/domain/models"
	"jamii/internal/mpesa"
	"jamii/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

type stubGateway struct {
	initiateResult mpesa.InitiateResult
	initiateErr    error
	statusResult   mpesa.StatusResult
	statusErr      error
	initiateCalls  int
	queryCalls     int
}

func (g *stubGateway) InitiateSTKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (mpesa.InitiateResult, error) {
	g.initiateCalls++
	return g.initiateResult, g.initiateErr
}

func (g *stubGateway) QueryStatus(ctx context.Context, checkoutRequestID string) (mpesa.StatusResult, error) {
	g.queryCalls++
	return g.statusResult, g.statusErr
}

func (g *stubGateway) ValidateCallback(raw []byte) bool {
	return mpesa.ValidateCallbackPayload(raw)
}

func (g *stubGateway) ParseCallback(raw []byte) (mpesa.CallbackData, error) {
	return mpesa.ParseCallbackPayload(raw)
}

func testRC() domain.RequestContext {
	return domain.RequestContext{UserID: 5, CommunityID: 10, Role: "resident"}
}

func levyRows(amount float64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "community_id", "unit_id", "description", "amount",
		"due_date", "status", "payment_method", "payment_reference", "payment_date",
	}).AddRow(42, 10, 3, "Service charge September", amount, "2025-09-30", status, "", "", "")
}

func paymentRows(status, checkoutID, receipt, responseCode, responseDesc string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "community_id", "levy_id", "user_id", "phone", "amount",
		"payment_ref", "account_ref", "checkout_request_id", "status",
		"response_code", "response_description", "mpesa_receipt",
		"completed_at", "created_at",
	}).AddRow(
		17, 10, 42, 5, "254700000000", 500.0,
		"local-ref", "JAMII-10-3-42", checkoutID, status,
		responseCode, responseDesc, receipt,
		nil, time.Now(),
	)
}

func TestInitiateAmountMismatchFailsBeforeGatewayCall(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM levies l").
		WithArgs(int64(42), int64(10), int64(5)).
		WillReturnRows(levyRows(600.00, models.LevyPending))

	gw := &stubGateway{}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		LevyRepo:    repositories.LevyRepository{DB: db},
		Ledger:      repositories.LedgerWriter{DB: db},
		Gateway:     gw,
		RequestID:   "test-req",
	}

	_, err = svc.Initiate(context.Background(), testRC(), InitiateInput{LevyID: 42, Phone: "0700000000", Amount: 500.00})
	if !domain.IsAmountMismatch(err) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	if gw.initiateCalls != 0 {
		t.Fatalf("gateway must not be called on mismatch")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitiateAlreadySettledLevy(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM levies l").
		WillReturnRows(levyRows(500.00, models.LevyPaid))

	gw := &stubGateway{}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		LevyRepo:    repositories.LevyRepository{DB: db},
		Gateway:     gw,
	}

	_, err = svc.Initiate(context.Background(), testRC(), InitiateInput{LevyID: 42, Phone: "0700000000", Amount: 500.00})
	if !domain.IsAlreadySettled(err) {
		t.Fatalf("expected already settled, got %v", err)
	}
	if gw.initiateCalls != 0 {
		t.Fatalf("gateway must not be called for a settled levy")
	}
}

func TestInitiateHappyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM levies l").
		WillReturnRows(levyRows(500.00, models.LevyPending))
	mock.ExpectExec("INSERT INTO mpesa_payments").
		WillReturnResult(sqlmock.NewResult(17, 1))
	mock.ExpectExec("UPDATE mpesa_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	gw := &stubGateway{initiateResult: mpesa.InitiateResult{
		Success:             true,
		CheckoutRequestID:   "ws_CO_TEST1",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
	}}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		LevyRepo:    repositories.LevyRepository{DB: db},
		Gateway:     gw,
	}

	out, err := svc.Initiate(context.Background(), testRC(), InitiateInput{LevyID: 42, Phone: "0700000000", Amount: 500.00})
	if err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	if out.PaymentID != 17 || out.CheckoutRequestID != "ws_CO_TEST1" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if gw.initiateCalls != 1 {
		t.Fatalf("gateway should be called exactly once, got %d", gw.initiateCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitiateGatewayDeclineRecordsFailedAttempt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM levies l").
		WillReturnRows(levyRows(500.00, models.LevyPending))
	mock.ExpectExec("INSERT INTO mpesa_payments").
		WillReturnResult(sqlmock.NewResult(18, 1))
	mock.ExpectExec("UPDATE mpesa_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	gw := &stubGateway{initiateResult: mpesa.InitiateResult{
		Success:             false,
		ResponseCode:        "1",
		ResponseDescription: "The balance is insufficient for the transaction",
	}}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		LevyRepo:    repositories.LevyRepository{DB: db},
		Gateway:     gw,
	}

	_, err = svc.Initiate(context.Background(), testRC(), InitiateInput{LevyID: 42, Phone: "0700000000", Amount: 500.00})
	var decline domain.GatewayDeclineError
	if !errors.As(err, &decline) {
		t.Fatalf("expected gateway decline, got %v", err)
	}
	if !decline.CanRetry {
		t.Fatalf("insufficient funds should be retryable")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatusStillProcessingIsRepeatableNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM mpesa_payments").
		WillReturnRows(paymentRows(models.PaymentPending, "ws_CO_TEST1", "", "0", ""))

	gw := &stubGateway{statusResult: mpesa.StatusResult{
		ResultCode:        mpesa.CodeStillProcessing,
		ResultDescription: "The request is still being processed",
	}}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		Ledger:      repositories.LedgerWriter{DB: db},
		Gateway:     gw,
	}

	out, err := svc.Status(context.Background(), testRC(), 17)
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if out.Status != models.PaymentPending {
		t.Fatalf("expected pending, got %q", out.Status)
	}
	// no settle transaction may run
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatusSettlesSuccessViaPoll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM mpesa_payments").
		WillReturnRows(paymentRows(models.PaymentPending, "ws_CO_TEST1", "", "0", ""))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT levy_id").
		WillReturnRows(sqlmock.NewRows([]string{"levy_id", "payment_ref"}).AddRow(42, "local-ref"))
	mock.ExpectExec("UPDATE mpesa_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE levies").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("FROM mpesa_payments").
		WillReturnRows(paymentRows(models.PaymentCompleted, "ws_CO_TEST1", "", "0", ""))

	gw := &stubGateway{statusResult: mpesa.StatusResult{ResultCode: mpesa.CodeSuccess}}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		Ledger:      repositories.LedgerWriter{DB: db},
		Gateway:     gw,
	}

	out, err := svc.Status(context.Background(), testRC(), 17)
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if out.Status != models.PaymentCompleted {
		t.Fatalf("expected completed, got %q", out.Status)
	}
	// the poll path learned no receipt; the local reference stands in
	if out.Receipt != "local-ref" {
		t.Fatalf("expected local reference fallback, got %q", out.Receipt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStatusTerminalRowSkipsGateway(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM mpesa_payments").
		WillReturnRows(paymentRows(models.PaymentCompleted, "ws_CO_TEST1", "ABC123", "0", ""))

	gw := &stubGateway{}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		Gateway:     gw,
	}

	out, err := svc.Status(context.Background(), testRC(), 17)
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if out.Status != models.PaymentCompleted || out.Receipt != "ABC123" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if gw.queryCalls != 0 {
		t.Fatalf("terminal row must answer from the ledger, not the gateway")
	}
}

func TestStatusGatewayUnreachableReportsPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM mpesa_payments").
		WillReturnRows(paymentRows(models.PaymentPending, "ws_CO_TEST1", "", "0", ""))

	gw := &stubGateway{statusErr: domain.GatewayTransportError{Op: "query", Err: errors.New("timeout")}}
	svc := PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		Gateway:     gw,
	}

	out, err := svc.Status(context.Background(), testRC(), 17)
	if err != nil {
		t.Fatalf("transport failure must not surface, got %v", err)
	}
	if out.Status != models.PaymentPending {
		t.Fatalf("expected pending on unreachable gateway, got %q", out.Status)
	}
}
