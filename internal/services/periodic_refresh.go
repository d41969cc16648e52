package services

import (
	"context"
	"log"
	"time"

	"github.com/walksafe/server/internal/config"
)

// PeriodicRefreshService keeps the feature cache warm for the configured
// monitored areas so interactive scoring requests rarely wait on upstream
// fetches.
type PeriodicRefreshService struct {
	safety *SafetyService
	config *config.Config

	stopChan chan struct{}
	running  bool
}

// NewPeriodicRefreshService creates a periodic refresh service
func NewPeriodicRefreshService(safety *SafetyService, cfg *config.Config) *PeriodicRefreshService {
	return &PeriodicRefreshService{
		safety:   safety,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background refresh loop. Calling Start on a running
// service is a no-op.
func (p *PeriodicRefreshService) Start(ctx context.Context) error {
	if p.running {
		return nil
	}
	p.running = true

	interval := p.config.Overpass.RefreshInterval
	log.Printf("Starting periodic refresh every %v for %d monitored areas", interval, len(p.config.Areas))

	go p.refreshLoop(ctx, interval)
	return nil
}

// Stop halts the refresh loop
func (p *PeriodicRefreshService) Stop() {
	if !p.running {
		return
	}
	p.running = false
	close(p.stopChan)
	log.Printf("Stopped periodic refresh service")
}

// IsRunning reports whether the refresh loop is active
func (p *PeriodicRefreshService) IsRunning() bool {
	return p.running
}

func (p *PeriodicRefreshService) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Warm the cache immediately on startup
	p.refreshAreas(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Periodic refresh stopping due to context cancellation")
			return
		case <-p.stopChan:
			log.Printf("Periodic refresh stopping due to stop signal")
			return
		case <-ticker.C:
			p.refreshAreas(ctx)
		}
	}
}

func (p *PeriodicRefreshService) refreshAreas(ctx context.Context) {
	for _, area := range p.config.Areas {
		refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		err := p.safety.WarmArea(refreshCtx, area)
		cancel()

		if err != nil {
			log.Printf("Periodic refresh failed for area %s: %v", area.ID, err)
			continue
		}
		log.Printf("Periodic refresh warmed area %s", area.ID)
	}
}
