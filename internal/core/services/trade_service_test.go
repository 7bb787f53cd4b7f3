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

// MockTradeRepository is a mock type for the TradeRepositoryFacade interface
type MockTradeRepository struct {
	mock.Mock
}

func (m *MockTradeRepository) SaveTradeReservingListing(ctx context.Context, trade domain.Trade) error {
	args := m.Called(ctx, trade)
	return args.Error(0)
}

func (m *MockTradeRepository) FindTradeByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	args := m.Called(ctx, tradeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListTradesByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Trade, error) {
	args := m.Called(ctx, buyerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) ListTradesBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Trade, error) {
	args := m.Called(ctx, sellerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trade), args.Error(1)
}

func (m *MockTradeRepository) SettleTrade(ctx context.Context, trade domain.Trade, listing domain.Listing, debitEntry domain.LedgerEntry, creditEntry domain.LedgerEntry, settledAt time.Time) error {
	args := m.Called(ctx, trade, listing, debitEntry, creditEntry, settledAt)
	return args.Error(0)
}

func (m *MockTradeRepository) CancelTrade(ctx context.Context, tradeID string, listingID string) error {
	args := m.Called(ctx, tradeID, listingID)
	return args.Error(0)
}

// MockListingRepository is a mock type for the ListingRepositoryFacade interface
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindListingByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) ListListingsBySeller(ctx context.Context, sellerID string, limit int) ([]domain.Listing, error) {
	args := m.Called(ctx, sellerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

// MockWalletService is a mock type for the WalletSvcFacade interface
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateWallets(ctx context.Context, ownerID string, creatorUserID string) (*domain.Wallet, error) {
	args := m.Called(ctx, ownerID, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, ownerID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, ownerID string, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, ownerID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockWalletService) Transfer(ctx context.Context, fromOwnerID string, toOwnerID string, amount decimal.Decimal, description string) error {
	args := m.Called(ctx, fromOwnerID, toOwnerID, amount, description)
	return args.Error(0)
}

func (m *MockWalletService) ListEntries(ctx context.Context, ownerID string, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// --- Test Suite Setup ---

type TradeServiceTestSuite struct {
	suite.Suite
	mockTradeRepo   *MockTradeRepository
	mockListingRepo *MockListingRepository
	mockWalletSvc   *MockWalletService
	service         portssvc.TradeSvcFacade

	buyerID  string
	sellerID string
	listing  *domain.Listing
}

func (suite *TradeServiceTestSuite) SetupTest() {
	suite.mockTradeRepo = new(MockTradeRepository)
	suite.mockListingRepo = new(MockListingRepository)
	suite.mockWalletSvc = new(MockWalletService)
	suite.service = services.NewTradeService(suite.mockTradeRepo, suite.mockListingRepo, suite.mockWalletSvc)

	suite.buyerID = uuid.NewString()
	suite.sellerID = uuid.NewString()
	suite.listing = &domain.Listing{
		ListingID:    uuid.NewString(),
		SellerID:     suite.sellerID,
		Title:        "Reforestation credits 2026",
		CreditLotID:  "LOT-2026-BR-001",
		CarbonAmount: decimal.NewFromInt(100),
		Price:        decimal.NewFromInt(50000),
		Status:       domain.ListingOpen,
		CreatedAt:    time.Now().UTC(),
	}
}

// --- Test Cases ---

func (suite *TradeServiceTestSuite) TestCreateTrade_Success() {
	ctx := context.Background()

	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()
	suite.mockWalletSvc.On("GetBalance", ctx, suite.buyerID).Return(decimal.NewFromInt(100000), nil).Once()
	suite.mockTradeRepo.On("SaveTradeReservingListing", ctx, mock.AnythingOfType("domain.Trade")).Return(nil).Once()

	trade, err := suite.service.CreateTrade(ctx, suite.listing.ListingID, suite.buyerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(trade)
	suite.Equal(domain.TradePending, trade.Status)
	suite.Equal(suite.buyerID, trade.BuyerID)
	suite.Equal(suite.sellerID, trade.SellerID)
	suite.True(suite.listing.Price.Equal(trade.Amount))
	suite.Nil(trade.SettledAt)
	suite.mockTradeRepo.AssertExpectations(suite.T())
}

func (suite *TradeServiceTestSuite) TestCreateTrade_ListingNotOpen() {
	ctx := context.Background()
	suite.listing.Status = domain.ListingReserved

	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()

	trade, err := suite.service.CreateTrade(ctx, suite.listing.ListingID, suite.buyerID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrListingUnavailable)
	suite.mockTradeRepo.AssertNotCalled(suite.T(), "SaveTradeReservingListing")
}

func (suite *TradeServiceTestSuite) TestCreateTrade_SelfTrade() {
	ctx := context.Background()

	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()

	trade, err := suite.service.CreateTrade(ctx, suite.listing.ListingID, suite.sellerID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrSelfTradeForbidden)
	suite.mockWalletSvc.AssertNotCalled(suite.T(), "GetBalance")
}

func (suite *TradeServiceTestSuite) TestCreateTrade_InsufficientBalance() {
	ctx := context.Background()

	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()
	suite.mockWalletSvc.On("GetBalance", ctx, suite.buyerID).Return(decimal.NewFromInt(100), nil).Once()

	trade, err := suite.service.CreateTrade(ctx, suite.listing.ListingID, suite.buyerID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockTradeRepo.AssertNotCalled(suite.T(), "SaveTradeReservingListing")
}

func (suite *TradeServiceTestSuite) TestCreateTrade_ReservationLost() {
	ctx := context.Background()

	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()
	suite.mockWalletSvc.On("GetBalance", ctx, suite.buyerID).Return(decimal.NewFromInt(100000), nil).Once()
	suite.mockTradeRepo.On("SaveTradeReservingListing", ctx, mock.AnythingOfType("domain.Trade")).
		Return(apperrors.ErrListingUnavailable).Once()

	trade, err := suite.service.CreateTrade(ctx, suite.listing.ListingID, suite.buyerID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrListingUnavailable)
}

func (suite *TradeServiceTestSuite) TestConfirmTrade_Success() {
	ctx := context.Background()
	suite.listing.Status = domain.ListingReserved
	pending := &domain.Trade{
		TradeID:   uuid.NewString(),
		BuyerID:   suite.buyerID,
		SellerID:  suite.sellerID,
		ListingID: suite.listing.ListingID,
		Amount:    suite.listing.Price,
		Status:    domain.TradePending,
		CreatedAt: time.Now().UTC(),
	}

	suite.mockTradeRepo.On("FindTradeByID", ctx, pending.TradeID).Return(pending, nil).Once()
	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()

	var debit, credit domain.LedgerEntry
	suite.mockTradeRepo.On("SettleTrade", ctx, mock.AnythingOfType("domain.Trade"), mock.AnythingOfType("domain.Listing"),
		mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			debit = args.Get(3).(domain.LedgerEntry)
			credit = args.Get(4).(domain.LedgerEntry)
		}).
		Return(nil).Once()

	trade, err := suite.service.ConfirmTrade(ctx, pending.TradeID)

	suite.Require().NoError(err)
	suite.Require().NotNil(trade)
	suite.Equal(domain.TradeCompleted, trade.Status)
	suite.Require().NotNil(trade.SettledAt)
	suite.Equal(domain.EntryPurchase, debit.Type)
	suite.Equal(domain.EntrySaleProceeds, credit.Type)
	suite.True(pending.Amount.Equal(debit.Amount))
	suite.True(pending.Amount.Equal(credit.Amount))
	suite.mockTradeRepo.AssertExpectations(suite.T())
}

func (suite *TradeServiceTestSuite) TestConfirmTrade_AlreadyCompleted() {
	ctx := context.Background()
	settled := time.Now().UTC()
	done := &domain.Trade{
		TradeID:   uuid.NewString(),
		Status:    domain.TradeCompleted,
		SettledAt: &settled,
	}

	suite.mockTradeRepo.On("FindTradeByID", ctx, done.TradeID).Return(done, nil).Once()

	trade, err := suite.service.ConfirmTrade(ctx, done.TradeID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTradeRepo.AssertNotCalled(suite.T(), "SettleTrade")
}

func (suite *TradeServiceTestSuite) TestConfirmTrade_SettlementInsufficientBalance() {
	ctx := context.Background()
	suite.listing.Status = domain.ListingReserved
	pending := &domain.Trade{
		TradeID:   uuid.NewString(),
		BuyerID:   suite.buyerID,
		SellerID:  suite.sellerID,
		ListingID: suite.listing.ListingID,
		Amount:    suite.listing.Price,
		Status:    domain.TradePending,
	}

	suite.mockTradeRepo.On("FindTradeByID", ctx, pending.TradeID).Return(pending, nil).Once()
	suite.mockListingRepo.On("FindListingByID", ctx, suite.listing.ListingID).Return(suite.listing, nil).Once()
	suite.mockTradeRepo.On("SettleTrade", ctx, mock.AnythingOfType("domain.Trade"), mock.AnythingOfType("domain.Listing"),
		mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("domain.LedgerEntry"), mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrInsufficientBalance).Once()

	trade, err := suite.service.ConfirmTrade(ctx, pending.TradeID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockTradeRepo.AssertNumberOfCalls(suite.T(), "SettleTrade", 1)
}

func (suite *TradeServiceTestSuite) TestCancelTrade_Success() {
	ctx := context.Background()
	pending := &domain.Trade{
		TradeID:   uuid.NewString(),
		BuyerID:   suite.buyerID,
		SellerID:  suite.sellerID,
		ListingID: suite.listing.ListingID,
		Amount:    suite.listing.Price,
		Status:    domain.TradePending,
	}

	suite.mockTradeRepo.On("FindTradeByID", ctx, pending.TradeID).Return(pending, nil).Once()
	suite.mockTradeRepo.On("CancelTrade", ctx, pending.TradeID, pending.ListingID).Return(nil).Once()

	trade, err := suite.service.CancelTrade(ctx, pending.TradeID)

	suite.Require().NoError(err)
	suite.Require().NotNil(trade)
	suite.Equal(domain.TradeCancelled, trade.Status)
	suite.mockTradeRepo.AssertExpectations(suite.T())
}

func (suite *TradeServiceTestSuite) TestCancelTrade_AlreadyCancelled() {
	ctx := context.Background()
	cancelled := &domain.Trade{TradeID: uuid.NewString(), Status: domain.TradeCancelled}

	suite.mockTradeRepo.On("FindTradeByID", ctx, cancelled.TradeID).Return(cancelled, nil).Once()

	trade, err := suite.service.CancelTrade(ctx, cancelled.TradeID)

	suite.Require().Error(err)
	suite.Nil(trade)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockTradeRepo.AssertNotCalled(suite.T(), "CancelTrade")
}

func TestTradeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TradeServiceTestSuite))
}
