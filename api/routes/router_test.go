package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/bancore/backend/internal/accounts"
	"github.com/bancore/backend/internal/movements"
	"github.com/bancore/backend/internal/reports"
	"github.com/bancore/backend/pkg/config"
	"github.com/bancore/backend/pkg/db/models"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
)

type stubAccounts struct{}

func (stubAccounts) Create(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "not under test")
}

func (stubAccounts) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
}

func (stubAccounts) List(ctx context.Context, customerID *uuid.UUID) ([]models.Account, error) {
	return []models.Account{}, nil
}

func (stubAccounts) UpdateType(ctx context.Context, accountNumber, accountType string) (*models.Account, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
}

func (stubAccounts) Deactivate(ctx context.Context, accountNumber string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
}

type stubMovements struct{}

func (stubMovements) Create(ctx context.Context, input movements.CreateMovementInput) (*models.Movement, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "not under test")
}

func (stubMovements) GetByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
}

func (stubMovements) Search(ctx context.Context, filter movements.SearchFilter) ([]models.Movement, error) {
	return []models.Movement{}, nil
}

func (stubMovements) Void(ctx context.Context, movementID uuid.UUID, reason string) (*movements.VoidResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
}

func (stubMovements) Rectify(ctx context.Context, movementID uuid.UUID, input movements.RectifyInput) (*movements.RectifyResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
}

type stubReports struct{}

func (stubReports) AccountStatement(ctx context.Context, query reports.Query) (*reports.Report, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "not under test")
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		DBPinger:  okPinger{},
		Redis:     okPinger{},
		Accounts:  stubAccounts{},
		Movements: stubMovements{},
		Reports:   stubReports{},
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts/478758", http.StatusNotFound},
		{http.MethodGet, "/api/v1/movements", http.StatusOK},
		{http.MethodGet, "/api/v1/movements/" + uuid.NewString(), http.StatusNotFound},
		{http.MethodGet, "/api/v1/reports", http.StatusBadRequest},
		{http.MethodGet, "/no/such/route", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d got %d (%s)", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header")
	}
}
