package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bancore/backend/api/responses"
	"github.com/bancore/backend/api/validators"
	"github.com/bancore/backend/internal/reports"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
)

type reportCustomerResponse struct {
	CustomerID     string `json:"customer_id"`
	Identification string `json:"identification"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
}

type reportAccountResponse struct {
	AccountNumber  string             `json:"account_number"`
	AccountType    string             `json:"account_type"`
	Active         bool               `json:"active"`
	InitialBalance decimal.Decimal    `json:"initial_balance"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	Movements      []MovementResponse `json:"movements"`
}

type reportResponse struct {
	Customer reportCustomerResponse  `json:"customer"`
	From     time.Time               `json:"from"`
	To       time.Time               `json:"to"`
	Accounts []reportAccountResponse `json:"accounts"`
}

// ReportGet handles GET /api/v1/reports.
func ReportGet(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		to, err := validators.ParseQueryEndDate(r, "to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if from == nil || to == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to dates are required"))
			return
		}

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		report, err := svc.AccountStatement(ctx, reports.Query{
			CustomerID:     customerID,
			Identification: r.URL.Query().Get("identification"),
			From:           *from,
			To:             *to,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := reportResponse{
			Customer: reportCustomerResponse{
				CustomerID:     report.Customer.CustomerID.String(),
				Identification: report.Customer.Identification,
				Name:           report.Customer.Name,
				Active:         report.Customer.Active,
			},
			From:     report.From,
			To:       report.To,
			Accounts: make([]reportAccountResponse, 0, len(report.Accounts)),
		}
		for _, account := range report.Accounts {
			out.Accounts = append(out.Accounts, reportAccountResponse{
				AccountNumber:  account.AccountNumber,
				AccountType:    account.AccountType,
				Active:         account.Active,
				InitialBalance: account.InitialBalance,
				CurrentBalance: account.CurrentBalance,
				Movements:      newMovementResponses(account.Movements),
			})
		}
		responses.WriteSuccess(w, out)
	}
}
