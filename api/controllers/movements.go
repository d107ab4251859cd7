package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bancore/backend/api/responses"
	"github.com/bancore/backend/api/validators"
	"github.com/bancore/backend/internal/movements"
	"github.com/bancore/backend/pkg/enums"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
)

type createMovementRequest struct {
	AccountNumber string          `json:"account_number" validate:"required"`
	MovementType  string          `json:"movement_type" validate:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
}

type voidMovementRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type rectifyMovementRequest struct {
	MovementType string          `json:"movement_type" validate:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	MovementDate *time.Time      `json:"movement_date"`
}

type voidMovementResponse struct {
	OriginalMovementID string          `json:"original_movement_id"`
	ReversalMovementID string          `json:"reversal_movement_id"`
	AccountNumber      string          `json:"account_number"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
}

type rectifyMovementResponse struct {
	OriginalMovementID    string          `json:"original_movement_id"`
	ReversalMovementID    string          `json:"reversal_movement_id"`
	ReplacementMovementID string          `json:"replacement_movement_id"`
	AccountNumber         string          `json:"account_number"`
	CurrentBalance        decimal.Decimal `json:"current_balance"`
}

// MovementCreate handles POST /api/v1/movements.
func MovementCreate(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(req.MovementType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type"))
			return
		}

		movement, err := svc.Create(ctx, movements.CreateMovementInput{
			AccountNumber: req.AccountNumber,
			MovementType:  movementType,
			Amount:        req.Amount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithMovementID(ctx, movement.MovementID.String())
		logg.Info(ctx, "movement created")
		responses.WriteSuccessStatus(w, http.StatusCreated, newMovementResponse(movement))
	}
}

// MovementGet handles GET /api/v1/movements/{movementId}.
func MovementGet(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		movementID, err := validators.ParsePathUUID(chi.URLParam(r, "movementId"), "movementId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movement, err := svc.GetByID(ctx, movementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMovementResponse(movement))
	}
}

// MovementSearch handles GET /api/v1/movements.
func MovementSearch(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		filter := movements.SearchFilter{
			AccountNumber: r.URL.Query().Get("account_number"),
		}

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter.CustomerID = customerID

		if filter.From, err = validators.ParseQueryDate(r, "from"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filter.To, err = validators.ParseQueryEndDate(r, "to"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if filter.IncludeVoided, err = validators.ParseQueryBool(r, "include_voided", false); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.Search(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMovementResponses(rows))
	}
}

// MovementVoid handles DELETE /api/v1/movements/{movementId}.
func MovementVoid(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		movementID, err := validators.ParsePathUUID(chi.URLParam(r, "movementId"), "movementId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req voidMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Void(ctx, movementID, req.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithMovementID(ctx, result.OriginalMovementID.String())
		logg.Info(ctx, "movement voided")
		responses.WriteSuccess(w, voidMovementResponse{
			OriginalMovementID: result.OriginalMovementID.String(),
			ReversalMovementID: result.ReversalMovementID.String(),
			AccountNumber:      result.AccountNumber,
			CurrentBalance:     result.CurrentBalance,
		})
	}
}

// MovementRectify handles PUT /api/v1/movements/{movementId}.
func MovementRectify(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		movementID, err := validators.ParsePathUUID(chi.URLParam(r, "movementId"), "movementId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req rectifyMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(req.MovementType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type"))
			return
		}

		input := movements.RectifyInput{
			MovementType: movementType,
			Amount:       req.Amount,
			MovementDate: req.MovementDate,
		}

		result, err := svc.Rectify(ctx, movementID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithMovementID(ctx, result.OriginalMovementID.String())
		logg.Info(ctx, "movement rectified")
		responses.WriteSuccess(w, rectifyMovementResponse{
			OriginalMovementID:    result.OriginalMovementID.String(),
			ReversalMovementID:    result.ReversalMovementID.String(),
			ReplacementMovementID: result.ReplacementMovementID.String(),
			AccountNumber:         result.AccountNumber,
			CurrentBalance:        result.CurrentBalance,
		})
	}
}
