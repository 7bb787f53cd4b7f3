package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
)

// snapshotBuffer bounds how many undelivered snapshots a slow
// subscriber may hold before newer ones are dropped for it.
const snapshotBuffer = 1

// dashboardService periodically recomputes the market snapshot and
// fans it out to all subscribers. Delivery is best effort; a subscriber
// that cannot keep up simply misses ticks.
type dashboardService struct {
	statsRepo portsrepo.StatsRepositoryFacade
	interval  time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]chan domain.MarketSnapshot
}

// NewDashboardService creates the snapshot broadcaster. interval is
// how often Run recomputes and pushes.
func NewDashboardService(statsRepo portsrepo.StatsRepositoryFacade, interval time.Duration) portssvc.DashboardSvcFacade {
	return &dashboardService{
		statsRepo: statsRepo,
		interval:  interval,
		subs:      make(map[int]chan domain.MarketSnapshot),
	}
}

var _ portssvc.DashboardSvcFacade = (*dashboardService)(nil)

// Run drives the broadcast loop until ctx is cancelled. All remaining
// subscriber channels are closed on exit.
func (s *dashboardService) Run(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			snapshot, err := s.statsRepo.MarketSnapshot(ctx)
			if err != nil {
				logger.Error("Failed to compute market snapshot", slog.String("error", err.Error()))
				continue
			}
			s.broadcast(*snapshot)
		}
	}
}

// Subscribe registers a listener and returns its channel alongside an
// idempotent cancel func.
func (s *dashboardService) Subscribe() (<-chan domain.MarketSnapshot, func()) {
	ch := make(chan domain.MarketSnapshot, snapshotBuffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Snapshot computes the current aggregate without waiting for a tick.
func (s *dashboardService) Snapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	return s.statsRepo.MarketSnapshot(ctx)
}

func (s *dashboardService) broadcast(snapshot domain.MarketSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (s *dashboardService) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
