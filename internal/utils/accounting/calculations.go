// Package accounting holds pure balance arithmetic shared by the balance and
// reporting services.
package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

// SignedBalance applies the natural-side sign convention to raw debit and
// credit sums: debit-natural accounts report debits - credits, credit-natural
// accounts report credits - debits.
func SignedBalance(accountType domain.AccountType, debits, credits decimal.Decimal) decimal.Decimal {
	if accountType.NaturalSide() == domain.DebitSide {
		return debits.Sub(credits)
	}
	return credits.Sub(debits)
}

// TrialBalanceColumns converts a signed natural balance into trial-balance
// debit/credit columns. A negative natural balance lands as a positive
// amount in the opposite column, which keeps the column totals equal to the
// raw debit/credit sums.
func TrialBalanceColumns(accountType domain.AccountType, signed decimal.Decimal) (debit, credit decimal.Decimal) {
	natural := accountType.NaturalSide()
	amount := signed
	if signed.IsNegative() {
		amount = signed.Neg()
		if natural == domain.DebitSide {
			natural = domain.CreditSide
		} else {
			natural = domain.DebitSide
		}
	}
	if natural == domain.DebitSide {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}
