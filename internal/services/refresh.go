package services

import (
	"context"
	"log"
	"time"

	"github.com/dpup/lanewatch/internal/config"
	"github.com/dpup/lanewatch/internal/lib/legs"
)

// PeriodicRefreshService re-runs the cached risk counters for the configured
// monitored routes slightly inside the cache TTL, so interactive callers hit
// warm entries.
type PeriodicRefreshService struct {
	risksService *RisksService
	monitor      config.MonitorConfig
	routes       []legs.ShippingRoute

	stopChan chan struct{}
	running  bool
}

// NewPeriodicRefreshService creates a refresh service from the monitor
// configuration.
func NewPeriodicRefreshService(risksService *RisksService, monitor config.MonitorConfig) *PeriodicRefreshService {
	routes := make([]legs.ShippingRoute, 0, len(monitor.Routes))
	for _, r := range monitor.Routes {
		routes = append(routes, r.ToRoute())
	}
	return &PeriodicRefreshService{
		risksService: risksService,
		monitor:      monitor,
		routes:       routes,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the refresh loop. A disabled or empty monitor config is a
// no-op.
func (p *PeriodicRefreshService) Start(ctx context.Context) {
	if p.running || !p.monitor.Enabled || len(p.routes) == 0 {
		return
	}
	p.running = true

	interval := p.monitor.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	log.Printf("Starting periodic risk refresh every %v for %d monitored routes", interval, len(p.routes))
	go p.refreshLoop(ctx, interval)
}

// Stop gracefully stops the refresh loop.
func (p *PeriodicRefreshService) Stop() {
	if !p.running {
		return
	}
	p.running = false
	close(p.stopChan)
}

func (p *PeriodicRefreshService) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.refreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.refreshOnce(ctx)
		}
	}
}

// refreshOnce exercises both cached counters; expiry makes the calls
// recompute and rewrite the cache entries.
func (p *PeriodicRefreshService) refreshOnce(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := p.risksService.CountNearbyRisks(refreshCtx, p.monitor.UserID, p.routes, p.monitor.ThresholdKm); err != nil {
		log.Printf("Periodic refresh of nearby risks failed: %v", err)
	}
	if _, err := p.risksService.CountRoutesAtRisk(refreshCtx, p.monitor.UserID, p.routes, p.monitor.ThresholdKm); err != nil {
		log.Printf("Periodic refresh of routes at risk failed: %v", err)
	}
}
