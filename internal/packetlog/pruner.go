package packetlog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dn9apw/meshtrack/internal/database"
)

const (
	// DefaultPruneInterval is how often the retention check runs
	DefaultPruneInterval = 1 * time.Hour

	// DefaultRetention is how long packet records are kept
	DefaultRetention = 7 * 24 * time.Hour
)

// Pruner removes packet records older than the retention window from
// the database on a fixed schedule
type Pruner struct {
	repository *database.PacketRepository
	logger     *log.Logger
	interval   time.Duration
	retention  time.Duration
}

// PrunerConfig holds configuration for the pruner
type PrunerConfig struct {
	Interval  time.Duration // How often to check (default: 1 hour)
	Retention time.Duration // How long to keep records (default: 7 days)
}

// NewPruner creates a new retention pruner
func NewPruner(repository *database.PacketRepository, logger *log.Logger) *Pruner {
	return NewPrunerWithConfig(repository, logger, PrunerConfig{
		Interval:  DefaultPruneInterval,
		Retention: DefaultRetention,
	})
}

// NewPrunerWithConfig creates a new retention pruner with custom configuration
func NewPrunerWithConfig(repository *database.PacketRepository, logger *log.Logger, config PrunerConfig) *Pruner {
	if config.Interval <= 0 {
		config.Interval = DefaultPruneInterval
	}
	if config.Retention <= 0 {
		config.Retention = DefaultRetention
	}

	return &Pruner{
		repository: repository,
		logger:     logger,
		interval:   config.Interval,
		retention:  config.Retention,
	}
}

// Start begins the periodic retention check
func (p *Pruner) Start(ctx context.Context) {
	if p.logger != nil {
		p.logger.Printf("Packet log pruner starting (interval: %v, retention: %v)", p.interval, p.retention)
	}

	// Run initial prune
	if err := p.PruneNow(); err != nil {
		if p.logger != nil {
			p.logger.Printf("Initial packet log prune failed: %v", err)
		}
	}

	// Set up periodic prune
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if p.logger != nil {
				p.logger.Printf("Packet log pruner stopping")
			}
			return

		case <-ticker.C:
			if err := p.PruneNow(); err != nil {
				if p.logger != nil {
					p.logger.Printf("Packet log prune failed: %v", err)
				}
			}
		}
	}
}

// PruneNow performs an immediate retention check
func (p *Pruner) PruneNow() error {
	startTime := time.Now()
	cutoff := startTime.Add(-p.retention)

	removed, err := p.repository.PruneOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune packet log: %w", err)
	}

	if p.logger != nil && removed > 0 {
		p.logger.Printf("Packet log pruned: %d records older than %s removed in %v",
			removed, cutoff.Format(time.RFC3339), time.Since(startTime))
	}

	return nil
}
