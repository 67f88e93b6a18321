package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockCurrencySvc *MockCurrencyReader
	service         portssvc.AccountSvcFacade
	userID          string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencySvc = new(MockCurrencyReader)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCurrencySvc, stubRecorder{})
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) expectUSD() {
	suite.mockCurrencySvc.On("GetCurrencyByCode", mock.Anything, "USD").
		Return(&domain.CurrencyInfo{CurrencyCode: "USD", Precision: 2}, nil)
}

func createAccountRequest(code string) dto.CreateAccountRequest {
	return dto.CreateAccountRequest{
		AccountCode:  code,
		Name:         "Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
	}
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	suite.expectUSD()
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(context.Background(), createAccountRequest("1000"), suite.userID)

	suite.Require().NoError(err)
	suite.Equal("1000", account.AccountCode)
	suite.Equal(domain.Asset, account.AccountType)
	suite.True(account.IsActive)
	suite.Equal(suite.userID, account.CreatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	suite.expectUSD()
	existing := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&existing, nil).Once()

	_, err := suite.service.CreateAccount(context.Background(), createAccountRequest("1000"), suite.userID)

	suite.ErrorIs(err, services.ErrDuplicateCode)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateRaceOnSave() {
	suite.expectUSD()
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(context.Background(), createAccountRequest("1000"), suite.userID)

	suite.ErrorIs(err, services.ErrDuplicateCode)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidCode() {
	_, err := suite.service.CreateAccount(context.Background(), createAccountRequest("bad code"), suite.userID)
	suite.ErrorIs(err, domain.ErrInvalidAccountCode)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	req := createAccountRequest("1000")
	req.AccountType = "SUSPENSE"

	_, err := suite.service.CreateAccount(context.Background(), req, suite.userID)

	suite.ErrorIs(err, services.ErrInvalidAccountType)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownParent() {
	suite.expectUSD()
	parent := "9999"
	req := createAccountRequest("1000")
	req.ParentAccountCode = &parent

	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "9999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(context.Background(), req, suite.userID)

	suite.ErrorIs(err, services.ErrParentNotFound)
}

func (suite *AccountServiceTestSuite) TestSetParentAccount_SelfParentRejected() {
	account := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&account, nil).Once()
	self := "1000"

	_, err := suite.service.SetParentAccount(context.Background(), "1000", &self, suite.userID)

	suite.ErrorIs(err, services.ErrCycleDetected)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetParentAccount_AncestorCycleRejected() {
	// 1100's parent is 1000. Re-parenting 1000 under 1100 would loop.
	account := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	child := domain.Account{AccountCode: "1100", AccountType: domain.Asset, ParentAccountCode: "1000", IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&account, nil)
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1100").Return(&child, nil)
	parent := "1100"

	_, err := suite.service.SetParentAccount(context.Background(), "1000", &parent, suite.userID)

	suite.ErrorIs(err, services.ErrCycleDetected)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetParentAccount_DetachToRoot() {
	account := domain.Account{AccountCode: "1100", AccountType: domain.Asset, ParentAccountCode: "1000", IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1100").Return(&account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountCode == "1100" && a.ParentAccountCode == ""
	})).Return(nil).Once()

	updated, err := suite.service.SetParentAccount(context.Background(), "1100", nil, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(updated.ParentAccountCode)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_PostedActivityBlocks() {
	account := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&account, nil).Once()
	suite.mockAccountRepo.On("HasPostedLines", mock.Anything, "1000").Return(true, nil).Once()

	err := suite.service.DeleteAccount(context.Background(), "1000", suite.userID)

	suite.ErrorIs(err, services.ErrAccountInUse)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_ChildrenBlock() {
	account := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&account, nil).Once()
	suite.mockAccountRepo.On("HasPostedLines", mock.Anything, "1000").Return(false, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", mock.Anything, "1000").
		Return([]domain.Account{{AccountCode: "1100"}}, nil).Once()

	err := suite.service.DeleteAccount(context.Background(), "1000", suite.userID)

	suite.ErrorIs(err, services.ErrAccountHasChildren)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_Success() {
	account := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&account, nil).Once()
	suite.mockAccountRepo.On("HasPostedLines", mock.Anything, "1000").Return(false, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", mock.Anything, "1000").Return([]domain.Account{}, nil).Once()
	suite.mockAccountRepo.On("DeleteAccount", mock.Anything, "1000").Return(nil).Once()

	err := suite.service.DeleteAccount(context.Background(), "1000", suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Idempotent() {
	inactive := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: false}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&inactive, nil).Once()

	err := suite.service.DeactivateAccount(context.Background(), "1000", suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	active := domain.Account{AccountCode: "1000", AccountType: domain.Asset, IsActive: true}
	suite.mockAccountRepo.On("FindAccountByCode", mock.Anything, "1000").Return(&active, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountCode == "1000" && !a.IsActive
	})).Return(nil).Once()

	err := suite.service.DeactivateAccount(context.Background(), "1000", suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
