package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/core/services"
)

// MockCarbonRepository is a mock type for the CarbonRepositoryFacade interface
type MockCarbonRepository struct {
	mock.Mock
}

func (m *MockCarbonRepository) FindCarbonWalletByOwnerID(ctx context.Context, ownerID string) (*domain.CarbonWallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarbonWallet), args.Error(1)
}

func (m *MockCarbonRepository) ListHoldingsByOwner(ctx context.Context, ownerID string) ([]domain.CarbonHolding, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CarbonHolding), args.Error(1)
}

func (m *MockCarbonRepository) AddHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	args := m.Called(ctx, ownerID, creditLotID, qty)
	return args.Error(0)
}

func (m *MockCarbonRepository) RemoveHolding(ctx context.Context, ownerID string, creditLotID string, qty decimal.Decimal) error {
	args := m.Called(ctx, ownerID, creditLotID, qty)
	return args.Error(0)
}

func (m *MockCarbonRepository) TransferHolding(ctx context.Context, fromOwnerID string, toOwnerID string, creditLotID string, qty decimal.Decimal) error {
	args := m.Called(ctx, fromOwnerID, toOwnerID, creditLotID, qty)
	return args.Error(0)
}

// --- Test Suite Setup ---

type CarbonServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCarbonRepository
	service  portssvc.CarbonSvcFacade
}

func (suite *CarbonServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCarbonRepository)
	suite.service = services.NewCarbonService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *CarbonServiceTestSuite) TestGetCarbonBalance_Success() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	expected := decimal.RequireFromString("120.5")

	suite.mockRepo.On("FindCarbonWalletByOwnerID", ctx, ownerID).Return(&domain.CarbonWallet{
		CarbonWalletID: uuid.NewString(),
		OwnerID:        ownerID,
		Balance:        expected,
	}, nil).Once()

	balance, err := suite.service.GetCarbonBalance(ctx, ownerID)

	suite.Require().NoError(err)
	suite.True(expected.Equal(balance))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CarbonServiceTestSuite) TestAddHolding_Success() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	lotID := "LOT-2026-BR-001"
	qty := decimal.NewFromInt(50)

	suite.mockRepo.On("AddHolding", ctx, ownerID, lotID, qty).Return(nil).Once()

	err := suite.service.AddHolding(ctx, ownerID, lotID, qty)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CarbonServiceTestSuite) TestAddHolding_NonPositiveQty() {
	ctx := context.Background()

	err := suite.service.AddHolding(ctx, uuid.NewString(), "LOT-1", decimal.Zero)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.mockRepo.AssertNotCalled(suite.T(), "AddHolding")
}

func (suite *CarbonServiceTestSuite) TestRemoveHolding_Insufficient() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	lotID := "LOT-2026-BR-001"
	qty := decimal.NewFromInt(500)

	suite.mockRepo.On("RemoveHolding", ctx, ownerID, lotID, qty).Return(apperrors.ErrInsufficientHoldings).Once()

	err := suite.service.RemoveHolding(ctx, ownerID, lotID, qty)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientHoldings)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CarbonServiceTestSuite) TestTransferHolding_Success() {
	ctx := context.Background()
	fromID := uuid.NewString()
	toID := uuid.NewString()
	lotID := "LOT-2026-VN-007"
	qty := decimal.RequireFromString("12.25")

	suite.mockRepo.On("TransferHolding", ctx, fromID, toID, lotID, qty).Return(nil).Once()

	err := suite.service.TransferHolding(ctx, fromID, toID, lotID, qty)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CarbonServiceTestSuite) TestTransferHolding_SameOwner() {
	ctx := context.Background()
	ownerID := uuid.NewString()

	err := suite.service.TransferHolding(ctx, ownerID, ownerID, "LOT-1", decimal.NewFromInt(1))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "TransferHolding")
}

func (suite *CarbonServiceTestSuite) TestListHoldings_Success() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	holdings := []domain.CarbonHolding{
		{HoldingID: uuid.NewString(), CreditLotID: "LOT-A", Quantity: decimal.NewFromInt(10)},
		{HoldingID: uuid.NewString(), CreditLotID: "LOT-B", Quantity: decimal.NewFromInt(3)},
	}

	suite.mockRepo.On("ListHoldingsByOwner", ctx, ownerID).Return(holdings, nil).Once()

	got, err := suite.service.ListHoldings(ctx, ownerID)

	suite.Require().NoError(err)
	suite.Len(got, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestCarbonServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CarbonServiceTestSuite))
}
