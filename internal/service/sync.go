package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cegyard/dock-scheduler/internal/model"
	"github.com/cegyard/dock-scheduler/internal/slot"
)

// CargaLister is the slice of the repository the background workers
// need.
type CargaLister interface {
	List(ctx context.Context) ([]model.Carga, error)
}

// Syncer periodically re-fetches the load collection and keeps an
// in-memory snapshot. The snapshot is whatever the last successful
// fetch returned; concurrent edits resolve to the last writer.
type Syncer struct {
	repo     CargaLister
	log      *logrus.Logger
	interval time.Duration

	mu       sync.RWMutex
	snapshot []model.Carga
	lastSync time.Time
}

func NewSyncer(repo CargaLister, log *logrus.Logger, interval time.Duration) *Syncer {
	return &Syncer{repo: repo, log: log, interval: interval}
}

// Snapshot returns the most recent successfully fetched collection and
// when it was taken.
func (s *Syncer) Snapshot() ([]model.Carga, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.lastSync
}

// Run fetches immediately, then on every tick until ctx is cancelled.
// Fetch failures are logged and retried on the next tick.
func (s *Syncer) Run(ctx context.Context) {
	s.refresh(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("syncer: stopped")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Syncer) refresh(ctx context.Context) {
	cargas, err := s.repo.List(ctx)
	if err != nil {
		s.log.WithError(err).Warn("syncer: refresh failed")
		return
	}
	s.mu.Lock()
	s.snapshot = cargas
	s.lastSync = time.Now().UTC()
	s.mu.Unlock()
	s.log.WithField("cargas", len(cargas)).Debug("syncer: snapshot refreshed")
}

// OccupationScanner walks the synced snapshot on a timer and logs a
// warning for every trip that has been holding a dock past the limit.
// The scan is advisory, nothing is mutated.
type OccupationScanner struct {
	syncer   *Syncer
	log      *logrus.Logger
	interval time.Duration
	limit    time.Duration
}

func NewOccupationScanner(syncer *Syncer, log *logrus.Logger, interval, limit time.Duration) *OccupationScanner {
	return &OccupationScanner{syncer: syncer, log: log, interval: interval, limit: limit}
}

func (o *OccupationScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			o.log.Info("occupation-scanner: stopped")
			return
		case <-ticker.C:
			o.scan()
		}
	}
}

func (o *OccupationScanner) scan() {
	cargas, at := o.syncer.Snapshot()
	if at.IsZero() {
		return
	}
	for _, over := range slot.FindOverstays(cargas, time.Now(), o.limit) {
		o.log.WithFields(logrus.Fields{
			"viagem": over.Viagem,
			"box_d":  over.BoxD,
			"horas":  over.Horas,
		}).Warn("occupation-scanner: dock held past limit")
	}
}
