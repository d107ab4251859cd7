package movements

import (
	"context"

	"github.com/bancore/backend/internal/accounts"
	"github.com/bancore/backend/pkg/db/models"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// reconcile replays the account's full movement history in canonical order
// from the initial balance, rewriting every balance_after and the account's
// current balance. A voided or superseded movement still flows through the
// replay; its reversal cancels it out, so the pair nets to zero. Voiding or
// rectifying anything but the newest movement shifts every later balance,
// which makes a full deterministic replay safer than incremental patching;
// replaying an unchanged history is a no-op.
//
// A negative running balance aborts the caller's transaction with an
// unprocessable error.
func (s *service) reconcile(
	ctx context.Context,
	accRepo accounts.Repository,
	movRepo Repository,
	account *models.Account,
) (decimal.Decimal, error) {
	history, err := movRepo.ListByAccount(ctx, account.AccountNumber)
	if err != nil {
		return decimal.Zero, err
	}

	balance := account.InitialBalance
	for i := range history {
		balance = applyAmount(balance, history[i].MovementType, history[i].Amount)
		if balance.IsNegative() {
			return decimal.Zero, pkgerrors.New(
				pkgerrors.CodeUnprocessable,
				"reconciliation would produce a negative balance",
			)
		}
		history[i].BalanceAfter = balance
	}

	if err := movRepo.SaveBalances(ctx, history); err != nil {
		return decimal.Zero, err
	}
	if err := accRepo.UpdateBalance(ctx, account.AccountNumber, balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
