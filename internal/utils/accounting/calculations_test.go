package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fintrellis/ledgercore/internal/core/domain"
)

func TestSignedBalance(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		debits      string
		credits     string
		want        string
	}{
		{"asset debits minus credits", domain.Asset, "1000", "250", "750"},
		{"expense debits minus credits", domain.Expense, "300", "0", "300"},
		{"liability credits minus debits", domain.Liability, "100", "600", "500"},
		{"equity credits minus debits", domain.Equity, "0", "1000", "1000"},
		{"revenue credits minus debits", domain.Revenue, "50", "1050", "1000"},
		{"asset overdrawn goes negative", domain.Asset, "100", "150", "-50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignedBalance(tt.accountType,
				decimal.RequireFromString(tt.debits),
				decimal.RequireFromString(tt.credits))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTrialBalanceColumns(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		signed      string
		wantDebit   string
		wantCredit  string
	}{
		{"positive asset lands in debit column", domain.Asset, "750", "750", "0"},
		{"positive revenue lands in credit column", domain.Revenue, "1000", "0", "1000"},
		{"negative asset flips to credit column", domain.Asset, "-50", "0", "50"},
		{"negative liability flips to debit column", domain.Liability, "-20", "20", "0"},
		{"zero stays in natural column", domain.Expense, "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debit, credit := TrialBalanceColumns(tt.accountType, decimal.RequireFromString(tt.signed))
			assert.Equal(t, tt.wantDebit, debit.String())
			assert.Equal(t, tt.wantCredit, credit.String())
		})
	}
}
