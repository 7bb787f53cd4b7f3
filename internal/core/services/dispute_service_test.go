package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/core/services"
)

// MockDisputeRepository is a mock type for the DisputeRepositoryFacade interface
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) SaveDispute(ctx context.Context, dispute domain.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *MockDisputeRepository) FindDisputeByID(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) HasActiveDispute(ctx context.Context, tradeID string) (bool, error) {
	args := m.Called(ctx, tradeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDisputeRepository) CloseDispute(ctx context.Context, disputeID string, status domain.DisputeStatus, resolution domain.DisputeResolution, note string, resolvedAt time.Time) error {
	args := m.Called(ctx, disputeID, status, resolution, note, resolvedAt)
	return args.Error(0)
}

func (m *MockDisputeRepository) ListDisputesByOpener(ctx context.Context, openedByUserID string) ([]domain.Dispute, error) {
	args := m.Called(ctx, openedByUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dispute), args.Error(1)
}

// --- Test Suite Setup ---

type DisputeServiceTestSuite struct {
	suite.Suite
	mockDisputeRepo *MockDisputeRepository
	mockTradeRepo   *MockTradeRepository
	service         portssvc.DisputeSvcFacade

	buyerID   string
	sellerID  string
	completed *domain.Trade
}

func (suite *DisputeServiceTestSuite) SetupTest() {
	suite.mockDisputeRepo = new(MockDisputeRepository)
	suite.mockTradeRepo = new(MockTradeRepository)
	suite.service = services.NewDisputeService(suite.mockDisputeRepo, suite.mockTradeRepo)

	suite.buyerID = uuid.NewString()
	suite.sellerID = uuid.NewString()
	settled := time.Now().UTC()
	suite.completed = &domain.Trade{
		TradeID:   uuid.NewString(),
		BuyerID:   suite.buyerID,
		SellerID:  suite.sellerID,
		ListingID: uuid.NewString(),
		Amount:    decimal.NewFromInt(50000),
		Status:    domain.TradeCompleted,
		SettledAt: &settled,
	}
}

// --- Test Cases ---

func (suite *DisputeServiceTestSuite) TestOpenDispute_Success() {
	ctx := context.Background()

	suite.mockTradeRepo.On("FindTradeByID", ctx, suite.completed.TradeID).Return(suite.completed, nil).Once()
	suite.mockDisputeRepo.On("HasActiveDispute", ctx, suite.completed.TradeID).Return(false, nil).Once()
	suite.mockDisputeRepo.On("SaveDispute", ctx, mock.AnythingOfType("domain.Dispute")).Return(nil).Once()

	dispute, err := suite.service.OpenDispute(ctx, portssvc.OpenDisputeRequest{
		TradeID:        suite.completed.TradeID,
		Reason:         "credits were retired before transfer",
		EvidenceURL:    "https://registry.example.com/lot/LOT-1",
		OpenedByUserID: suite.buyerID,
	})

	suite.Require().NoError(err)
	suite.Require().NotNil(dispute)
	suite.Equal(domain.DisputeOpen, dispute.Status)
	suite.Equal(domain.ResolutionNone, dispute.Resolution)
	suite.Equal(suite.buyerID, dispute.OpenedByUserID)
	suite.Nil(dispute.ResolvedAt)
	suite.mockDisputeRepo.AssertExpectations(suite.T())
}

func (suite *DisputeServiceTestSuite) TestOpenDispute_EmptyReason() {
	ctx := context.Background()

	dispute, err := suite.service.OpenDispute(ctx, portssvc.OpenDisputeRequest{
		TradeID:        suite.completed.TradeID,
		Reason:         "   ",
		OpenedByUserID: suite.buyerID,
	})

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTradeRepo.AssertNotCalled(suite.T(), "FindTradeByID")
}

func (suite *DisputeServiceTestSuite) TestOpenDispute_TradeNotCompleted() {
	ctx := context.Background()
	suite.completed.Status = domain.TradePending

	suite.mockTradeRepo.On("FindTradeByID", ctx, suite.completed.TradeID).Return(suite.completed, nil).Once()

	dispute, err := suite.service.OpenDispute(ctx, portssvc.OpenDisputeRequest{
		TradeID:        suite.completed.TradeID,
		Reason:         "not delivered",
		OpenedByUserID: suite.buyerID,
	})

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *DisputeServiceTestSuite) TestOpenDispute_NotAParty() {
	ctx := context.Background()

	suite.mockTradeRepo.On("FindTradeByID", ctx, suite.completed.TradeID).Return(suite.completed, nil).Once()

	dispute, err := suite.service.OpenDispute(ctx, portssvc.OpenDisputeRequest{
		TradeID:        suite.completed.TradeID,
		Reason:         "bystander complaint",
		OpenedByUserID: uuid.NewString(),
	})

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockDisputeRepo.AssertNotCalled(suite.T(), "SaveDispute")
}

func (suite *DisputeServiceTestSuite) TestOpenDispute_AlreadyActive() {
	ctx := context.Background()

	suite.mockTradeRepo.On("FindTradeByID", ctx, suite.completed.TradeID).Return(suite.completed, nil).Once()
	suite.mockDisputeRepo.On("HasActiveDispute", ctx, suite.completed.TradeID).Return(true, nil).Once()

	dispute, err := suite.service.OpenDispute(ctx, portssvc.OpenDisputeRequest{
		TradeID:        suite.completed.TradeID,
		Reason:         "second complaint",
		OpenedByUserID: suite.sellerID,
	})

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrDuplicateDispute)
	suite.mockDisputeRepo.AssertNotCalled(suite.T(), "SaveDispute")
}

func (suite *DisputeServiceTestSuite) TestResolveDispute_Success() {
	ctx := context.Background()
	open := &domain.Dispute{
		DisputeID:      uuid.NewString(),
		TradeID:        suite.completed.TradeID,
		Status:         domain.DisputeOpen,
		Resolution:     domain.ResolutionNone,
		Reason:         "credits were retired before transfer",
		OpenedByUserID: suite.buyerID,
		OpenedAt:       time.Now().UTC(),
	}

	suite.mockDisputeRepo.On("FindDisputeByID", ctx, open.DisputeID).Return(open, nil).Once()
	suite.mockDisputeRepo.On("CloseDispute", ctx, open.DisputeID, domain.DisputeResolved, domain.ResolutionRefundBuyer, "registry confirmed retirement", mock.AnythingOfType("time.Time")).Return(nil).Once()

	dispute, err := suite.service.ResolveDispute(ctx, open.DisputeID, domain.ResolutionRefundBuyer, "registry confirmed retirement")

	suite.Require().NoError(err)
	suite.Require().NotNil(dispute)
	suite.Equal(domain.DisputeResolved, dispute.Status)
	suite.Equal(domain.ResolutionRefundBuyer, dispute.Resolution)
	suite.Require().NotNil(dispute.ResolvedAt)
	suite.mockDisputeRepo.AssertExpectations(suite.T())
}

func (suite *DisputeServiceTestSuite) TestResolveDispute_UnknownResolution() {
	ctx := context.Background()

	dispute, err := suite.service.ResolveDispute(ctx, uuid.NewString(), domain.DisputeResolution("SPLIT_EVENLY"), "")

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDisputeRepo.AssertNotCalled(suite.T(), "FindDisputeByID")
}

func (suite *DisputeServiceTestSuite) TestRejectDispute_Success() {
	ctx := context.Background()
	open := &domain.Dispute{
		DisputeID:      uuid.NewString(),
		TradeID:        suite.completed.TradeID,
		Status:         domain.DisputeOpen,
		Resolution:     domain.ResolutionNone,
		OpenedByUserID: suite.sellerID,
	}

	suite.mockDisputeRepo.On("FindDisputeByID", ctx, open.DisputeID).Return(open, nil).Once()
	suite.mockDisputeRepo.On("CloseDispute", ctx, open.DisputeID, domain.DisputeRejected, domain.ResolutionNone, "insufficient evidence", mock.AnythingOfType("time.Time")).Return(nil).Once()

	dispute, err := suite.service.RejectDispute(ctx, open.DisputeID, "insufficient evidence")

	suite.Require().NoError(err)
	suite.Equal(domain.DisputeRejected, dispute.Status)
	suite.Equal(domain.ResolutionNone, dispute.Resolution)
	suite.mockDisputeRepo.AssertExpectations(suite.T())
}

func (suite *DisputeServiceTestSuite) TestRejectDispute_AlreadyClosed() {
	ctx := context.Background()
	resolvedAt := time.Now().UTC()
	closed := &domain.Dispute{
		DisputeID:  uuid.NewString(),
		Status:     domain.DisputeResolved,
		Resolution: domain.ResolutionRefundBuyer,
		ResolvedAt: &resolvedAt,
	}

	suite.mockDisputeRepo.On("FindDisputeByID", ctx, closed.DisputeID).Return(closed, nil).Once()

	dispute, err := suite.service.RejectDispute(ctx, closed.DisputeID, "late rejection")

	suite.Require().Error(err)
	suite.Nil(dispute)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockDisputeRepo.AssertNotCalled(suite.T(), "CloseDispute")
}

func TestDisputeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DisputeServiceTestSuite))
}
