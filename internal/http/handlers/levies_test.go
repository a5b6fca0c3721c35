package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	intconfig "jamii/internal/config"
	"jamii/internal/http/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

// levyRouter mounts POST /api/levies exactly as the real router does,
// with a stub auth layer injecting the given identity and role.
func levyRouter(t *testing.T, role string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		intconfig.DB = nil
	})
	intconfig.DB = db

	r := gin.New()
	r.POST("/api/levies",
		func(c *gin.Context) {
			c.Set("user_id", int64(9))
			c.Set("community_id", int64(4))
			c.Set("userRole", role)
		},
		middleware.RequireRoles("admin", "treasurer"),
		CreateLevy)
	return r, mock
}

func postLevy(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/levies", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLevyAsTreasurer(t *testing.T) {
	r, mock := levyRouter(t, "treasurer")

	mock.ExpectExec("INSERT INTO levies").
		WithArgs(int64(4), int64(12), "water arrears", 2500.0, "2026-10-01", "pending").
		WillReturnResult(sqlmock.NewResult(31, 1))

	w := postLevy(r, `{"unit_id":12,"description":"water  arrears","amount":2500,"due_date":"2026-10-01"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var body struct {
		Levy struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"levy"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Levy.ID != 31 || body.Levy.Status != "pending" {
		t.Fatalf("unexpected levy in response: %+v", body.Levy)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateLevyForbiddenForResident(t *testing.T) {
	r, mock := levyRouter(t, "resident")

	w := postLevy(r, `{"unit_id":12,"description":"water","amount":2500,"due_date":"2026-10-01"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resident role, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("forbidden request must not touch the DB: %v", err)
	}
}

func TestCreateLevyRejectsBadDueDate(t *testing.T) {
	r, mock := levyRouter(t, "admin")

	w := postLevy(r, `{"unit_id":12,"description":"water","amount":2500,"due_date":"next tuesday"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unparseable due date, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("invalid payload must not touch the DB: %v", err)
	}
}
