package services

import (
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/database"
	"github.com/Fatumayattani/lumi-hub/pkg/logging"
)

// ReconcileService sweeps abandoned purchase attempts: pending
// transactions older than the configured TTL are marked expired.
// Terminal rows are never touched.
type ReconcileService struct {
	interval time.Duration
	ttl      time.Duration
	stop     chan struct{}
}

// NewReconcileService creates a reconcile service from the app configuration
func NewReconcileService() *ReconcileService {
	return &ReconcileService{
		interval: time.Duration(config.AppConfig.ReconcileSweepMinutes) * time.Minute,
		ttl:      time.Duration(config.AppConfig.PendingTxTTLMinutes) * time.Minute,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop in a background goroutine
func (s *ReconcileService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.Sweep(); err != nil {
					logging.Errorf("Failed to expire stale pending transactions: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (s *ReconcileService) Stop() {
	close(s.stop)
}

// Sweep expires pending transactions older than the TTL and returns the
// number of rows swept
func (s *ReconcileService) Sweep() (int64, error) {
	cutoff := time.Now().Add(-s.ttl)
	swept, err := database.ExpireStalePendingTransactions(cutoff)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		logging.Infof("Expired %d stale pending transactions", swept)
	}
	return swept, nil
}
