package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancore/backend/api/responses"
	"github.com/bancore/backend/api/validators"
	"github.com/bancore/backend/internal/accounts"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
)

type createAccountRequest struct {
	AccountNumber  string          `json:"account_number" validate:"required,max=32"`
	AccountType    string          `json:"account_type" validate:"required,max=32"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CustomerID     string          `json:"customer_id" validate:"required,uuid"`
}

type updateAccountRequest struct {
	AccountType string `json:"account_type" validate:"required,max=32"`
}

// AccountCreate handles POST /api/v1/accounts.
func AccountCreate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer id must be a uuid"))
			return
		}

		account, err := svc.Create(ctx, accounts.CreateAccountInput{
			AccountNumber:  req.AccountNumber,
			AccountType:    req.AccountType,
			InitialBalance: req.InitialBalance,
			CustomerID:     customerID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithAccountNumber(ctx, account.AccountNumber)
		logg.Info(ctx, "account created")
		responses.WriteSuccessStatus(w, http.StatusCreated, newAccountResponse(account))
	}
}

// AccountGet handles GET /api/v1/accounts/{accountNumber}.
func AccountGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		account, err := svc.GetByNumber(ctx, chi.URLParam(r, "accountNumber"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(account))
	}
}

// AccountList handles GET /api/v1/accounts.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, customerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]AccountResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newAccountResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AccountUpdate handles PATCH /api/v1/accounts/{accountNumber}.
func AccountUpdate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req updateAccountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := svc.UpdateType(ctx, chi.URLParam(r, "accountNumber"), req.AccountType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccountResponse(account))
	}
}

// AccountDeactivate handles DELETE /api/v1/accounts/{accountNumber}.
func AccountDeactivate(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accountNumber := chi.URLParam(r, "accountNumber")
		if err := svc.Deactivate(ctx, accountNumber); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithAccountNumber(ctx, accountNumber)
		logg.Info(ctx, "account deactivated")
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
