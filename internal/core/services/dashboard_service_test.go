package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/core/services"
)

// MockStatsRepository is a mock type for the StatsRepositoryFacade interface
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) MarketSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MarketSnapshot), args.Error(1)
}

// --- Test Suite Setup ---

type DashboardServiceTestSuite struct {
	suite.Suite
	mockRepo *MockStatsRepository
	service  portssvc.DashboardSvcFacade
}

func (suite *DashboardServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockStatsRepository)
	suite.service = services.NewDashboardService(suite.mockRepo, 10*time.Millisecond)
}

func testSnapshot() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		OpenListings:    4,
		PendingTrades:   2,
		CompletedTrades: 17,
		SettledVolume:   decimal.NewFromInt(850000),
		OpenDisputes:    1,
		GeneratedAt:     time.Now().UTC(),
	}
}

// --- Test Cases ---

func (suite *DashboardServiceTestSuite) TestSnapshot_OnDemand() {
	ctx := context.Background()
	expected := testSnapshot()

	suite.mockRepo.On("MarketSnapshot", ctx).Return(expected, nil).Once()

	snapshot, err := suite.service.Snapshot(ctx)

	suite.Require().NoError(err)
	suite.Require().NotNil(snapshot)
	suite.Equal(int64(4), snapshot.OpenListings)
	suite.True(expected.SettledVolume.Equal(snapshot.SettledVolume))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *DashboardServiceTestSuite) TestRun_BroadcastsToSubscriber() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suite.mockRepo.On("MarketSnapshot", mock.Anything).Return(testSnapshot(), nil)

	snapshots, unsubscribe := suite.service.Subscribe()
	defer unsubscribe()

	go suite.service.Run(ctx)

	select {
	case snapshot := <-snapshots:
		suite.Equal(int64(17), snapshot.CompletedTrades)
	case <-time.After(2 * time.Second):
		suite.FailNow("timed out waiting for a broadcast snapshot")
	}
}

func (suite *DashboardServiceTestSuite) TestRun_ClosesSubscribersOnShutdown() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.mockRepo.On("MarketSnapshot", mock.Anything).Return(testSnapshot(), nil)

	snapshots, unsubscribe := suite.service.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		suite.service.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		suite.FailNow("run loop did not stop on context cancellation")
	}

	// Drain until the channel reports closed.
	for {
		select {
		case _, ok := <-snapshots:
			if !ok {
				return
			}
		case <-time.After(2 * time.Second):
			suite.FailNow("subscriber channel was not closed on shutdown")
		}
	}
}

func (suite *DashboardServiceTestSuite) TestSubscribe_CancelIsIdempotent() {
	snapshots, unsubscribe := suite.service.Subscribe()

	unsubscribe()
	unsubscribe()

	_, ok := <-snapshots
	suite.False(ok)
}

func (suite *DashboardServiceTestSuite) TestRun_SurvivesSnapshotErrors() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failing := new(MockStatsRepository)
	failing.On("MarketSnapshot", mock.Anything).Return(nil, context.DeadlineExceeded).Once()
	failing.On("MarketSnapshot", mock.Anything).Return(testSnapshot(), nil)
	svc := services.NewDashboardService(failing, 10*time.Millisecond)

	snapshots, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	go svc.Run(ctx)

	select {
	case snapshot := <-snapshots:
		suite.Equal(int64(4), snapshot.OpenListings)
	case <-time.After(2 * time.Second):
		suite.FailNow("broadcast never recovered after a snapshot error")
	}
}

func TestDashboardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}
