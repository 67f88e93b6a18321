package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
)

// --- Mock ReportingReader ---
type MockReportingReader struct {
	mock.Mock
}

var _ portsrepo.ReportingReader = (*MockReportingReader)(nil)

func (m *MockReportingReader) SumPostedLinesByAccount(ctx context.Context, accountCode string, asOf *time.Time) (portsrepo.BalanceSums, error) {
	args := m.Called(ctx, accountCode, asOf)
	return args.Get(0).(portsrepo.BalanceSums), args.Error(1)
}

func (m *MockReportingReader) SumPostedLinesByAccounts(ctx context.Context, accountCodes []string, asOf *time.Time) (map[string]portsrepo.BalanceSums, error) {
	args := m.Called(ctx, accountCodes, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]portsrepo.BalanceSums), args.Error(1)
}

func (m *MockReportingReader) SumPostedLinesByCurrency(ctx context.Context, currencyCode string, asOf time.Time) ([]portsrepo.BalanceSums, error) {
	args := m.Called(ctx, currencyCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.BalanceSums), args.Error(1)
}

type BalanceServiceTestSuite struct {
	suite.Suite
	mockAccountRepo   *MockAccountRepository
	mockReportingRepo *MockReportingReader
	guard             *services.PostingGuard
	balanceSvc        portssvc.BalanceSvcFacade
	reportingSvc      portssvc.ReportingService
}

func (suite *BalanceServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockReportingRepo = new(MockReportingReader)
	suite.guard = services.NewPostingGuard()
	suite.balanceSvc = services.NewBalanceService(suite.mockAccountRepo, suite.mockReportingRepo)
	suite.reportingSvc = services.NewReportingService(suite.mockAccountRepo, suite.mockReportingRepo, "USD", suite.guard)
}

func (suite *BalanceServiceTestSuite) TestGetAccountBalance_AssetNaturalDebit() {
	cash := domain.Account{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, CurrencyCode: "USD", IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&cash, nil).Once()
	suite.mockReportingRepo.On("SumPostedLinesByAccount", mock.Anything, "1000", (*time.Time)(nil)).
		Return(portsrepo.BalanceSums{AccountCode: "1000", Debits: decimal.RequireFromString("1250.00"), Credits: decimal.RequireFromString("250.00")}, nil).Once()

	balance, err := suite.balanceSvc.GetAccountBalance(context.Background(), "1000", nil)

	suite.Require().NoError(err)
	suite.Equal("1000.00", balance.Balance.StringFixed())
	suite.Equal(domain.Asset, balance.AccountType)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestGetAccountBalance_LiabilityNaturalCredit() {
	payable := domain.Account{AccountCode: "2000", Name: "Accounts Payable", AccountType: domain.Liability, CurrencyCode: "USD", IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "2000").Return(&payable, nil).Once()
	suite.mockReportingRepo.On("SumPostedLinesByAccount", mock.Anything, "2000", (*time.Time)(nil)).
		Return(portsrepo.BalanceSums{AccountCode: "2000", Debits: decimal.RequireFromString("100.00"), Credits: decimal.RequireFromString("600.00")}, nil).Once()

	balance, err := suite.balanceSvc.GetAccountBalance(context.Background(), "2000", nil)

	suite.Require().NoError(err)
	suite.Equal("500.00", balance.Balance.StringFixed())
}

func (suite *BalanceServiceTestSuite) TestGetRollupBalance_MixedSubtree() {
	root := domain.Account{AccountCode: "1000", Name: "Current Assets", AccountType: domain.Asset, CurrencyCode: "USD", IsActive: true}
	cash := domain.Account{AccountCode: "1100", Name: "Cash", AccountType: domain.Asset, ParentAccountCode: "1000", CurrencyCode: "USD", IsActive: true}
	receivables := domain.Account{AccountCode: "1200", Name: "Receivables", AccountType: domain.Asset, ParentAccountCode: "1000", CurrencyCode: "USD", IsActive: true}

	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&root, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", mock.Anything, "1000").Return([]domain.Account{cash, receivables}, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", mock.Anything, "1100").Return([]domain.Account{}, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", mock.Anything, "1200").Return([]domain.Account{}, nil).Once()

	suite.mockReportingRepo.On("SumPostedLinesByAccounts", mock.Anything, []string{"1000", "1100", "1200"}, (*time.Time)(nil)).
		Return(map[string]portsrepo.BalanceSums{
			"1100": {AccountCode: "1100", Debits: decimal.RequireFromString("900.00"), Credits: decimal.RequireFromString("100.00")},
			"1200": {AccountCode: "1200", Debits: decimal.RequireFromString("300.00"), Credits: decimal.RequireFromString("50.00")},
		}, nil).Once()

	balance, err := suite.balanceSvc.GetRollupBalance(context.Background(), "1000", nil)

	suite.Require().NoError(err)
	suite.Equal("1050.00", balance.Balance.StringFixed())
	suite.Equal("1200", balance.Debits.String())
	suite.Equal("150", balance.Credits.String())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_Balanced() {
	asOf := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "USD", asOf).
		Return([]portsrepo.BalanceSums{
			{AccountCode: "1000", Debits: decimal.RequireFromString("1000.00"), Credits: decimal.Zero},
			{AccountCode: "4000", Debits: decimal.Zero, Credits: decimal.RequireFromString("1000.00")},
		}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1000", "4000"}).
		Return(map[string]domain.Account{
			"1000": {AccountCode: "1000", Name: "Cash", AccountType: domain.Asset},
			"4000": {AccountCode: "4000", Name: "Sales Revenue", AccountType: domain.Revenue},
		}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "USD")

	suite.Require().NoError(err)
	suite.True(report.IsBalanced)
	suite.Equal(domain.Currency("USD"), report.Currency)
	suite.Equal("1000", report.TotalDebits.String())
	suite.Equal("1000", report.TotalCredits.String())
	suite.Require().Len(report.Rows, 2)
	suite.Equal("1000", report.Rows[0].AccountCode)
	suite.Equal("1000", report.Rows[0].Debit.String())
	suite.Equal("4000", report.Rows[1].AccountCode)
	suite.Equal("1000", report.Rows[1].Credit.String())
	suite.False(suite.guard.Halted())
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_OverdrawnAssetFlipsColumn() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "USD", asOf).
		Return([]portsrepo.BalanceSums{
			{AccountCode: "1000", Debits: decimal.RequireFromString("100.00"), Credits: decimal.RequireFromString("150.00")},
			{AccountCode: "2000", Debits: decimal.RequireFromString("50.00"), Credits: decimal.Zero},
		}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1000", "2000"}).
		Return(map[string]domain.Account{
			"1000": {AccountCode: "1000", Name: "Cash", AccountType: domain.Asset},
			"2000": {AccountCode: "2000", Name: "Accounts Payable", AccountType: domain.Liability},
		}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "USD")

	suite.Require().NoError(err)
	// Overdrawn asset shows 50 in the credit column; the liability's negative
	// natural balance shows 50 in the debit column.
	suite.True(report.IsBalanced)
	suite.Equal("50", report.Rows[0].Credit.String())
	suite.Equal("50", report.Rows[1].Debit.String())
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_UnbalancedTripsGuard() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "USD", asOf).
		Return([]portsrepo.BalanceSums{
			{AccountCode: "1000", Debits: decimal.RequireFromString("100.00"), Credits: decimal.Zero},
			{AccountCode: "4000", Debits: decimal.Zero, Credits: decimal.RequireFromString("99.99")},
		}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1000", "4000"}).
		Return(map[string]domain.Account{
			"1000": {AccountCode: "1000", Name: "Cash", AccountType: domain.Asset},
			"4000": {AccountCode: "4000", Name: "Sales Revenue", AccountType: domain.Revenue},
		}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "USD")

	suite.Require().NoError(err)
	suite.False(report.IsBalanced)
	suite.True(suite.guard.Halted(), "an unbalanced trial balance must halt postings")
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_ScopedToRequestedCurrency() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	// USD and JPY accounts both carry posted activity; a JPY report must only
	// aggregate the JPY accounts, never mix minor units across currencies.
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "JPY", asOf).
		Return([]portsrepo.BalanceSums{
			{AccountCode: "1010", Debits: decimal.RequireFromString("5000"), Credits: decimal.Zero},
			{AccountCode: "4010", Debits: decimal.Zero, Credits: decimal.RequireFromString("5000")},
		}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1010", "4010"}).
		Return(map[string]domain.Account{
			"1010": {AccountCode: "1010", Name: "Cash JPY", AccountType: domain.Asset, CurrencyCode: "JPY"},
			"4010": {AccountCode: "4010", Name: "Sales JPY", AccountType: domain.Revenue, CurrencyCode: "JPY"},
		}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "JPY")

	suite.Require().NoError(err)
	suite.Equal(domain.Currency("JPY"), report.Currency)
	suite.Require().Len(report.Rows, 2)
	suite.Equal("5000", report.TotalDebits.String())
	suite.Equal("5000", report.TotalCredits.String())
	suite.True(report.IsBalanced)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "SumPostedLinesByCurrency", mock.Anything, "USD", asOf)
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_EmptyCurrencyFallsBackToBase() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "USD", asOf).
		Return([]portsrepo.BalanceSums{}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{}).
		Return(map[string]domain.Account{}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "")

	suite.Require().NoError(err)
	suite.Equal(domain.Currency("USD"), report.Currency)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *BalanceServiceTestSuite) TestTrialBalance_ZeroBalanceAccountGetsRow() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	// An active account with no posted activity still appears, with zeros in
	// both columns.
	suite.mockReportingRepo.On("SumPostedLinesByCurrency", mock.Anything, "USD", asOf).
		Return([]portsrepo.BalanceSums{
			{AccountCode: "1000", Debits: decimal.RequireFromString("100.00"), Credits: decimal.Zero},
			{AccountCode: "1500", Debits: decimal.Zero, Credits: decimal.Zero},
			{AccountCode: "4000", Debits: decimal.Zero, Credits: decimal.RequireFromString("100.00")},
		}, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1000", "1500", "4000"}).
		Return(map[string]domain.Account{
			"1000": {AccountCode: "1000", Name: "Cash", AccountType: domain.Asset},
			"1500": {AccountCode: "1500", Name: "Prepaid Expenses", AccountType: domain.Asset},
			"4000": {AccountCode: "4000", Name: "Sales Revenue", AccountType: domain.Revenue},
		}, nil).Once()

	report, err := suite.reportingSvc.TrialBalance(context.Background(), asOf, "USD")

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 3)
	suite.Equal("1500", report.Rows[1].AccountCode)
	suite.True(report.Rows[1].Debit.IsZero())
	suite.True(report.Rows[1].Credit.IsZero())
	suite.True(report.IsBalanced)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
