package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/dto"
	"github.com/carbonex/carbon_settlement_app/internal/handlers"
)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateTopup(ctx context.Context, req portssvc.TopupRequest) (*portssvc.TopupRedirect, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.TopupRedirect), args.Error(1)
}

func (m *MockPaymentService) VerifyCallback(params map[string]string) bool {
	args := m.Called(params)
	return args.Bool(0)
}

func (m *MockPaymentService) ProcessCallback(ctx context.Context, params map[string]string) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockPaymentService) GetTopup(ctx context.Context, txnRef string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, txnRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Test Suite ---
type GatewayCallbackTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockPaymentService *MockPaymentService
}

func (suite *GatewayCallbackTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockPaymentService = new(MockPaymentService)
	handlers.RegisterGatewayCallbackRoutes(suite.router, suite.mockPaymentService)
}

func (suite *GatewayCallbackTestSuite) notify(query url.Values) dto.GatewayAckResponse {
	req, _ := http.NewRequest(http.MethodGet, "/payments/gateway/ipn?"+query.Encode(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(http.StatusOK, w.Code)
	var ack dto.GatewayAckResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ack))
	return ack
}

func notifyQuery(txnRef string) url.Values {
	q := url.Values{}
	q.Set("txnRef", txnRef)
	q.Set("amount", "5000000")
	q.Set("responseCode", "00")
	q.Set("transactionStatus", "00")
	q.Set("secureHash", "deadbeef")
	return q
}

func pendingTopup(txnRef string) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		WalletID:    uuid.NewString(),
		Type:        domain.EntryTopup,
		Status:      domain.EntryPending,
		Amount:      decimal.NewFromInt(50000),
		ExternalRef: &txnRef,
	}
}

// --- Test Cases ---

func (suite *GatewayCallbackTestSuite) TestNotify_Success() {
	txnRef := "TXN1756700000000"

	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(true).Once()
	suite.mockPaymentService.On("GetTopup", mock.Anything, txnRef).Return(pendingTopup(txnRef), nil).Once()
	suite.mockPaymentService.On("ProcessCallback", mock.Anything, mock.Anything).Return(nil).Once()

	ack := suite.notify(notifyQuery(txnRef))

	suite.Equal("00", ack.RspCode)
	suite.Equal("Confirm success", ack.Message)
	suite.mockPaymentService.AssertExpectations(suite.T())
}

func (suite *GatewayCallbackTestSuite) TestNotify_InvalidSignature() {
	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(false).Once()

	ack := suite.notify(notifyQuery("TXN1756700000001"))

	suite.Equal("97", ack.RspCode)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "ProcessCallback")
}

func (suite *GatewayCallbackTestSuite) TestNotify_AlreadyConfirmed() {
	txnRef := "TXN1756700000002"
	settled := pendingTopup(txnRef)
	settled.Status = domain.EntrySuccess

	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(true).Once()
	suite.mockPaymentService.On("GetTopup", mock.Anything, txnRef).Return(settled, nil).Once()

	ack := suite.notify(notifyQuery(txnRef))

	suite.Equal("02", ack.RspCode)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "ProcessCallback")
}

func (suite *GatewayCallbackTestSuite) TestNotify_UnknownReference() {
	txnRef := "TXNunknown"

	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(true).Once()
	suite.mockPaymentService.On("GetTopup", mock.Anything, txnRef).Return(nil, apperrors.ErrTransactionNotFound).Once()
	suite.mockPaymentService.On("ProcessCallback", mock.Anything, mock.Anything).Return(apperrors.ErrTransactionNotFound).Once()

	ack := suite.notify(notifyQuery(txnRef))

	suite.Equal("01", ack.RspCode)
}

func (suite *GatewayCallbackTestSuite) TestNotify_AmountMismatch() {
	txnRef := "TXN1756700000003"

	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(true).Once()
	suite.mockPaymentService.On("GetTopup", mock.Anything, txnRef).Return(pendingTopup(txnRef), nil).Once()
	suite.mockPaymentService.On("ProcessCallback", mock.Anything, mock.Anything).Return(apperrors.ErrAmountMismatch).Once()

	ack := suite.notify(notifyQuery(txnRef))

	suite.Equal("04", ack.RspCode)
}

func (suite *GatewayCallbackTestSuite) TestReturn_InvalidSignature() {
	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(false).Once()

	req, _ := http.NewRequest(http.MethodGet, "/payments/gateway/return?txnRef=TXN1&secureHash=bad", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPaymentService.AssertNotCalled(suite.T(), "ProcessCallback")
}

func (suite *GatewayCallbackTestSuite) TestReturn_Success() {
	txnRef := "TXN1756700000004"
	settled := pendingTopup(txnRef)
	settled.Status = domain.EntrySuccess

	suite.mockPaymentService.On("VerifyCallback", mock.Anything).Return(true).Once()
	suite.mockPaymentService.On("ProcessCallback", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockPaymentService.On("GetTopup", mock.Anything, txnRef).Return(settled, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/payments/gateway/return?"+notifyQuery(txnRef).Encode(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(http.StatusOK, w.Code)
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("SUCCESS", body["status"])
	suite.Equal(txnRef, body["txnRef"])
}

func TestGatewayCallbackTestSuite(t *testing.T) {
	suite.Run(t, new(GatewayCallbackTestSuite))
}
