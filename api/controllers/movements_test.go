package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancore/backend/internal/movements"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/bancore/backend/pkg/enums"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
)

type stubMovementService struct {
	movement *models.Movement
	rows     []models.Movement
	voidRes  *movements.VoidResult
	rectRes  *movements.RectifyResult
	err      error

	gotCreate  *movements.CreateMovementInput
	gotVoidID  uuid.UUID
	gotReason  string
	gotFilter  *movements.SearchFilter
	gotRectify *movements.RectifyInput
}

func (s *stubMovementService) Create(ctx context.Context, input movements.CreateMovementInput) (*models.Movement, error) {
	s.gotCreate = &input
	return s.movement, s.err
}

func (s *stubMovementService) GetByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error) {
	return s.movement, s.err
}

func (s *stubMovementService) Search(ctx context.Context, filter movements.SearchFilter) ([]models.Movement, error) {
	s.gotFilter = &filter
	return s.rows, s.err
}

func (s *stubMovementService) Void(ctx context.Context, movementID uuid.UUID, reason string) (*movements.VoidResult, error) {
	s.gotVoidID = movementID
	s.gotReason = reason
	return s.voidRes, s.err
}

func (s *stubMovementService) Rectify(ctx context.Context, movementID uuid.UUID, input movements.RectifyInput) (*movements.RectifyResult, error) {
	s.gotRectify = &input
	return s.rectRes, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func sampleMovement() *models.Movement {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return &models.Movement{
		MovementID:    uuid.New(),
		AccountNumber: "478758",
		MovementType:  enums.MovementTypeDeposit,
		Amount:        decimal.NewFromInt(25),
		BalanceAfter:  decimal.NewFromInt(125),
		MovementDate:  now,
		CreatedAt:     now,
		Status:        enums.MovementStatusActive,
	}
}

func TestMovementCreateSuccess(t *testing.T) {
	svc := &stubMovementService{movement: sampleMovement()}
	handler := MovementCreate(svc, testLogger())

	body := []byte(`{"account_number":"478758","movement_type":"DEPOSIT","amount":"25.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotCreate == nil {
		t.Fatal("service was not called")
	}
	if svc.gotCreate.MovementType != enums.MovementTypeDeposit {
		t.Fatalf("expected DEPOSIT got %s", svc.gotCreate.MovementType)
	}
	if !svc.gotCreate.Amount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected amount 25 got %s", svc.gotCreate.Amount)
	}

	var envelope struct {
		Data struct {
			MovementID   string `json:"movement_id"`
			BalanceAfter string `json:"balance_after"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.MovementID == "" {
		t.Fatal("expected movement_id in response")
	}
}

func TestMovementCreateRejectsBadType(t *testing.T) {
	svc := &stubMovementService{}
	handler := MovementCreate(svc, testLogger())

	body := []byte(`{"account_number":"478758","movement_type":"TRANSFER","amount":"25.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.gotCreate != nil {
		t.Fatal("service should not be called on validation failure")
	}
}

func TestMovementCreateRejectsUnknownField(t *testing.T) {
	handler := MovementCreate(&stubMovementService{}, testLogger())

	body := []byte(`{"account_number":"478758","movement_type":"DEPOSIT","amount":"25.00","extra":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMovementCreatePropagatesConflict(t *testing.T) {
	svc := &stubMovementService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient funds")}
	handler := MovementCreate(svc, testLogger())

	body := []byte(`{"account_number":"478758","movement_type":"WITHDRAWAL","amount":"60.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT got %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "insufficient funds" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestMovementVoid(t *testing.T) {
	movementID := uuid.New()
	svc := &stubMovementService{voidRes: &movements.VoidResult{
		OriginalMovementID: movementID,
		ReversalMovementID: uuid.New(),
		AccountNumber:      "478758",
		CurrentBalance:     decimal.NewFromInt(100),
	}}
	handler := MovementVoid(svc, testLogger())

	body := []byte(`{"reason":"duplicate entry"}`)
	req := newRouteRequest(http.MethodDelete, "/api/v1/movements/"+movementID.String(), body, "movementId", movementID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotVoidID != movementID {
		t.Fatalf("expected movement id %s got %s", movementID, svc.gotVoidID)
	}
	if svc.gotReason != "duplicate entry" {
		t.Fatalf("unexpected reason %q", svc.gotReason)
	}
}

func TestMovementVoidRequiresReason(t *testing.T) {
	svc := &stubMovementService{}
	handler := MovementVoid(svc, testLogger())

	movementID := uuid.New()
	req := newRouteRequest(http.MethodDelete, "/api/v1/movements/"+movementID.String(), []byte(`{}`), "movementId", movementID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMovementRectify(t *testing.T) {
	movementID := uuid.New()
	svc := &stubMovementService{rectRes: &movements.RectifyResult{
		OriginalMovementID:    movementID,
		ReversalMovementID:    uuid.New(),
		ReplacementMovementID: uuid.New(),
		AccountNumber:         "478758",
		CurrentBalance:        decimal.NewFromInt(50),
	}}
	handler := MovementRectify(svc, testLogger())

	body := []byte(`{"movement_type":"WITHDRAWAL","amount":"50.00"}`)
	req := newRouteRequest(http.MethodPut, "/api/v1/movements/"+movementID.String(), body, "movementId", movementID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotRectify == nil {
		t.Fatal("service was not called")
	}
	if svc.gotRectify.MovementType != enums.MovementTypeWithdrawal {
		t.Fatalf("expected WITHDRAWAL got %s", svc.gotRectify.MovementType)
	}
}

func TestMovementGetRejectsBadID(t *testing.T) {
	handler := MovementGet(&stubMovementService{movement: sampleMovement()}, testLogger())

	req := newRouteRequest(http.MethodGet, "/api/v1/movements/not-a-uuid", nil, "movementId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestMovementSearchBuildsFilter(t *testing.T) {
	svc := &stubMovementService{rows: []models.Movement{*sampleMovement()}}
	handler := MovementSearch(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/movements?account_number=478758&from=2026-01-01&to=2026-01-31&include_voided=true", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotFilter == nil {
		t.Fatal("service was not called")
	}
	if svc.gotFilter.AccountNumber != "478758" {
		t.Fatalf("unexpected account filter %q", svc.gotFilter.AccountNumber)
	}
	if svc.gotFilter.From == nil || svc.gotFilter.To == nil {
		t.Fatal("expected date bounds to be parsed")
	}
	if !svc.gotFilter.IncludeVoided {
		t.Fatal("expected include_voided true")
	}
}

func TestMovementSearchIncludesWholeEndDay(t *testing.T) {
	svc := &stubMovementService{rows: []models.Movement{}}
	handler := MovementSearch(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/movements?account_number=478758&from=2026-01-01&to=2026-01-02", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotFilter == nil || svc.gotFilter.To == nil {
		t.Fatal("expected to bound to be parsed")
	}

	// a movement made during the to day must fall inside the window
	during := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)
	if svc.gotFilter.To.Before(during) {
		t.Fatalf("to bound %v excludes movements made on the end day", svc.gotFilter.To)
	}
}

// newRouteRequest builds a request with a chi route parameter attached.
func newRouteRequest(method, target string, body []byte, paramKey, paramValue string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(paramKey, paramValue)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}
