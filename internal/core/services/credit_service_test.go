package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrellis/ledgercore/internal/core/domain"
	portsrepo "github.com/fintrellis/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
)

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerRepositoryFacade = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateCreditLimit(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// --- Mock BalanceSvc ---
type MockBalanceSvc struct {
	mock.Mock
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceSvc)(nil)

func (m *MockBalanceSvc) GetAccountBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockBalanceSvc) GetRollupBalance(ctx context.Context, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

type CreditServiceTestSuite struct {
	suite.Suite
	mockCustomerRepo *MockCustomerRepository
	mockBalanceSvc   *MockBalanceSvc
	service          portssvc.CreditSvcFacade
	userID           string
	customerID       string
	customer         domain.Customer
}

func usd(s *CreditServiceTestSuite, amount string) domain.Money {
	m, err := domain.ParseMoney(amount, "USD")
	s.Require().NoError(err)
	return m
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockBalanceSvc = new(MockBalanceSvc)
	suite.service = services.NewCreditService(suite.mockCustomerRepo, suite.mockBalanceSvc, stubRecorder{})

	suite.userID = uuid.NewString()
	suite.customerID = uuid.NewString()
	suite.customer = domain.Customer{
		CustomerID:  suite.customerID,
		Name:        "Acme Corp",
		AccountCode: "1200",
		CreditLimit: usd(suite, "10000.00"),
		IsActive:    true,
	}
}

func (suite *CreditServiceTestSuite) expectUsedCredit(amount string) {
	suite.mockBalanceSvc.On("GetAccountBalance", mock.Anything, "1200", (*time.Time)(nil)).
		Return(&domain.AccountBalance{
			AccountCode: "1200",
			AccountType: domain.Asset,
			Currency:    "USD",
			Balance:     usd(suite, amount),
		}, nil)
}

func (suite *CreditServiceTestSuite) TestGetCreditStatus() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")

	status, err := suite.service.GetCreditStatus(context.Background(), suite.customerID)

	suite.Require().NoError(err)
	suite.Equal("8000.00", status.UsedCredit.StringFixed())
	suite.Equal("2000.00", status.AvailableCredit.StringFixed())
	suite.False(status.OverLimit())
}

func (suite *CreditServiceTestSuite) TestGetCreditStatus_OverLimit() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("10500.00")

	status, err := suite.service.GetCreditStatus(context.Background(), suite.customerID)

	suite.Require().NoError(err)
	suite.Equal("-500.00", status.AvailableCredit.StringFixed())
	suite.True(status.OverLimit())
}

func (suite *CreditServiceTestSuite) TestCheckCredit_ExactlyAvailablePasses() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")

	ok, status, err := suite.service.CheckCredit(context.Background(), suite.customerID, usd(suite, "2000.00"))

	suite.Require().NoError(err)
	suite.True(ok, "an amount equal to available credit fits")
	suite.Equal("2000.00", status.AvailableCredit.StringFixed())
}

func (suite *CreditServiceTestSuite) TestCheckCredit_OneCentOverFails() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")

	ok, _, err := suite.service.CheckCredit(context.Background(), suite.customerID, usd(suite, "2000.01"))

	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *CreditServiceTestSuite) TestUpdateCreditLimit_Success() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")
	suite.mockCustomerRepo.On("UpdateCreditLimit", mock.Anything, mock.MatchedBy(func(c domain.Customer) bool {
		return c.CustomerID == suite.customerID && c.CreditLimit.StringFixed() == "15000.00"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateCreditLimit(context.Background(), suite.customerID,
		dto.UpdateCreditLimitRequest{CreditLimit: decimal.RequireFromString("15000.00")}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("15000.00", updated.CreditLimit.StringFixed())
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CreditServiceTestSuite) TestUpdateCreditLimit_BelowUsedCredit() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")

	_, err := suite.service.UpdateCreditLimit(context.Background(), suite.customerID,
		dto.UpdateCreditLimitRequest{CreditLimit: decimal.RequireFromString("7999.99")}, suite.userID)

	suite.ErrorIs(err, services.ErrBelowUsedCredit)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "UpdateCreditLimit", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestUpdateCreditLimit_EqualToUsedCreditAllowed() {
	suite.mockCustomerRepo.On("FindCustomerByID", mock.Anything, suite.customerID).Return(&suite.customer, nil).Once()
	suite.expectUsedCredit("8000.00")
	suite.mockCustomerRepo.On("UpdateCreditLimit", mock.Anything, mock.AnythingOfType("domain.Customer")).Return(nil).Once()

	updated, err := suite.service.UpdateCreditLimit(context.Background(), suite.customerID,
		dto.UpdateCreditLimitRequest{CreditLimit: decimal.RequireFromString("8000.00")}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("8000.00", updated.CreditLimit.StringFixed())
}

func (suite *CreditServiceTestSuite) TestUpdateCreditLimit_NegativeRejected() {
	_, err := suite.service.UpdateCreditLimit(context.Background(), suite.customerID,
		dto.UpdateCreditLimitRequest{CreditLimit: decimal.RequireFromString("-1")}, suite.userID)

	suite.ErrorIs(err, services.ErrNegativeLimit)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "FindCustomerByID", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestCreateCustomer_NegativeLimitRejected() {
	_, err := suite.service.CreateCustomer(context.Background(), dto.CreateCustomerRequest{
		Name:         "Acme Corp",
		AccountCode:  "1200",
		CreditLimit:  decimal.RequireFromString("-100"),
		CurrencyCode: "USD",
	}, suite.userID)

	suite.ErrorIs(err, services.ErrNegativeLimit)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "SaveCustomer", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestCreateCustomer_Success() {
	suite.expectUsedCredit("0.00")
	suite.mockCustomerRepo.On("SaveCustomer", mock.Anything, mock.AnythingOfType("domain.Customer")).Return(nil).Once()

	customer, err := suite.service.CreateCustomer(context.Background(), dto.CreateCustomerRequest{
		Name:         "Acme Corp",
		AccountCode:  "1200",
		CreditLimit:  decimal.RequireFromString("10000.00"),
		CurrencyCode: "USD",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("10000.00", customer.CreditLimit.StringFixed())
	suite.True(customer.IsActive)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}
