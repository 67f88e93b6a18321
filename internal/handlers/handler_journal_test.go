package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrellis/ledgercore/internal/apperrors"
	"github.com/fintrellis/ledgercore/internal/core/domain"
	portssvc "github.com/fintrellis/ledgercore/internal/core/ports/services"
	"github.com/fintrellis/ledgercore/internal/core/services"
	"github.com/fintrellis/ledgercore/internal/dto"
	"github.com/fintrellis/ledgercore/internal/handlers"
	"github.com/fintrellis/ledgercore/internal/platform/config"
)

const testJWTSecret = "test-secret-key-for-handler-tests"

// MockJournalSvc mocks the journal service facade for handler tests.
type MockJournalSvc struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalSvc)(nil)

func (m *MockJournalSvc) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) GetEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockJournalSvc) CreateEntry(ctx context.Context, req dto.CreateJournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) VoidEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalSvc) ListActivityByAccount(ctx context.Context, accountCode string, params dto.ListActivityParams) (*dto.ListActivityResponse, error) {
	args := m.Called(ctx, accountCode, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListActivityResponse), args.Error(1)
}

type JournalHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockJournalSvc *MockJournalSvc
	userID         string
	token          string
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.mockJournalSvc = new(MockJournalSvc)
	suite.userID = uuid.NewString()
	suite.token = generateTestToken(suite.T(), suite.userID)

	// The other facades stay nil: the routes under test only touch the
	// journal service.
	container := &portssvc.ServiceContainer{Journal: suite.mockJournalSvc}
	cfg := &config.Config{JWTSecret: testJWTSecret, IsProduction: true}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func generateTestToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    "ledgercore-test",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func (suite *JournalHandlerTestSuite) doRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec
}

func createEntryBody() dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Description:  "Cash sale",
		CurrencyCode: "USD",
		Lines: []dto.CreateJournalLineRequest{
			{AccountCode: "1000", Debit: decimal.RequireFromString("100.00")},
			{AccountCode: "4000", Credit: decimal.RequireFromString("100.00")},
		},
	}
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_Success() {
	entry := &domain.JournalEntry{
		EntryID:      uuid.NewString(),
		EntryNumber:  "JE-000001",
		Description:  "Cash sale",
		CurrencyCode: "USD",
		Status:       domain.Draft,
	}
	suite.mockJournalSvc.On("CreateEntry", mock.Anything, mock.AnythingOfType("dto.CreateJournalEntryRequest"), suite.userID).
		Return(entry, nil).Once()

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries", createEntryBody(), suite.token)

	suite.Equal(http.StatusCreated, rec.Code)
	var res dto.JournalEntryResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	suite.Equal("JE-000001", res.EntryNumber)
	suite.Equal(string(domain.Draft), string(res.Status))
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_UnbalancedRejected() {
	suite.mockJournalSvc.On("CreateEntry", mock.Anything, mock.AnythingOfType("dto.CreateJournalEntryRequest"), suite.userID).
		Return(nil, fmt.Errorf("%w: off by 0.01", services.ErrEntryUnbalanced)).Once()

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries", createEntryBody(), suite.token)

	suite.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_MissingToken() {
	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries", createEntryBody(), "")

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalHandlerTestSuite) TestCreateEntry_BadTokenSignature() {
	forged := generateTestTokenWithSecret(suite.T(), suite.userID, "wrong-secret")

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries", createEntryBody(), forged)

	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func generateTestTokenWithSecret(t *testing.T, userID, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func (suite *JournalHandlerTestSuite) TestGetEntry_NotFound() {
	entryID := uuid.NewString()
	suite.mockJournalSvc.On("GetEntryByID", mock.Anything, entryID).Return(nil, apperrors.ErrNotFound).Once()

	rec := suite.doRequest(http.MethodGet, "/api/v1/journal-entries/"+entryID, nil, suite.token)

	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *JournalHandlerTestSuite) TestPostEntry_AlreadyPostedConflict() {
	entryID := uuid.NewString()
	suite.mockJournalSvc.On("PostEntry", mock.Anything, entryID, suite.userID).
		Return(nil, fmt.Errorf("%w: %s", services.ErrAlreadyPosted, entryID)).Once()

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries/"+entryID+"/post", nil, suite.token)

	suite.Equal(http.StatusConflict, rec.Code)
}

func (suite *JournalHandlerTestSuite) TestPostEntry_IntegrityHaltConflict() {
	entryID := uuid.NewString()
	suite.mockJournalSvc.On("PostEntry", mock.Anything, entryID, suite.userID).
		Return(nil, fmt.Errorf("%w: postings halted", apperrors.ErrIntegrity)).Once()

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries/"+entryID+"/post", nil, suite.token)

	suite.Equal(http.StatusConflict, rec.Code)
}

func (suite *JournalHandlerTestSuite) TestReverseEntry_Created() {
	entryID := uuid.NewString()
	reversal := &domain.JournalEntry{
		EntryID:         uuid.NewString(),
		EntryNumber:     "JE-000012",
		Status:          domain.Posted,
		OriginalEntryID: &entryID,
	}
	suite.mockJournalSvc.On("ReverseEntry", mock.Anything, entryID, suite.userID).Return(reversal, nil).Once()

	rec := suite.doRequest(http.MethodPost, "/api/v1/journal-entries/"+entryID+"/reverse", nil, suite.token)

	suite.Equal(http.StatusCreated, rec.Code)
	var res dto.JournalEntryResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	suite.Equal("JE-000012", res.EntryNumber)
}

func (suite *JournalHandlerTestSuite) TestListEntries_ByReference() {
	entry := &domain.JournalEntry{EntryID: uuid.NewString(), EntryNumber: "JE-000005", Reference: "INV-2026-0042"}
	suite.mockJournalSvc.On("GetEntryByReference", mock.Anything, "INV-2026-0042").Return(entry, nil).Once()

	rec := suite.doRequest(http.MethodGet, "/api/v1/journal-entries?reference=INV-2026-0042", nil, suite.token)

	suite.Equal(http.StatusOK, rec.Code)
	var res dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	suite.Require().Len(res.Entries, 1)
	suite.Equal("JE-000005", res.Entries[0].EntryNumber)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything)
}

func TestJournalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
