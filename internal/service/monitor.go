package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beliefdrift/beliefdrift/internal/decision"
	"github.com/beliefdrift/beliefdrift/internal/divergence"
	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/metricslog"
	"github.com/beliefdrift/beliefdrift/internal/worldmodel"
)

const defaultMonitorInterval = 30 * time.Second

// MonitorService periodically compares the robot and human belief graphs,
// runs the action selector over the resulting metrics, and records the
// outcome in the record store and the JSONL metrics log. It does not
// execute the chosen action; the planner polls records (or calls Evaluate
// directly) and acts on them.
type MonitorService struct {
	container   *worldmodel.Container
	recordStore domain.RecordStore
	metricsLog  *metricslog.Writer
	logger      *zap.Logger

	decisionConf map[string]any
	metricName   string

	mu   sync.Mutex
	step int

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewMonitorService wires a monitor over a belief container. recordStore
// and metricsLog may be nil; evaluation then still works but nothing is
// persisted on that path.
func NewMonitorService(
	container *worldmodel.Container,
	recordStore domain.RecordStore,
	metricsLog *metricslog.Writer,
	decisionConf map[string]any,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		container:    container,
		recordStore:  recordStore,
		metricsLog:   metricsLog,
		logger:       logger,
		decisionConf: decisionConf,
		metricName:   domain.MetricConceptJSDivergence,
		interval:     defaultMonitorInterval,
		stopCh:       make(chan struct{}),
	}
}

func (s *MonitorService) SetInterval(d time.Duration) {
	s.interval = d
}

// SetDivergenceMetric selects which metric the decision gate reads.
func (s *MonitorService) SetDivergenceMetric(name string) {
	if name != "" {
		s.metricName = name
	}
}

// Evaluate runs one comparison step: snapshot both graphs, compute the
// divergence metrics, choose an action, and persist the record.
func (s *MonitorService) Evaluate(ctx context.Context) (*domain.DivergenceRecord, error) {
	robot, err := s.container.Snapshot(domain.RoleRobot)
	if err != nil {
		return nil, err
	}
	human, err := s.container.Snapshot(domain.RoleHuman)
	if err != nil {
		return nil, err
	}

	metrics := divergence.Compute(robot, human)

	gate, ok := metrics.Get(s.metricName)
	if !ok {
		return nil, fmt.Errorf("unknown divergence metric %q", s.metricName)
	}

	bundle := domain.BeliefMetricsBundle{
		AvgConceptConfidence: robot.AvgConfidence(),
		BeliefDivergence:     gate,
		DivergenceMetric:     s.metricName,
		DivergenceMetrics:    &metrics,
	}

	action, reason := decision.Choose(s.decisionConf, bundle)

	s.mu.Lock()
	s.step++
	step := s.step
	s.mu.Unlock()

	record := &domain.DivergenceRecord{
		Step:                 step,
		AvgConceptConfidence: bundle.AvgConceptConfidence,
		Metrics:              metrics,
		Action:               action,
		Reason:               reason,
		CreatedAt:            time.Now().UTC(),
	}

	if s.recordStore != nil {
		if err := s.recordStore.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("persist divergence record: %w", err)
		}
	}
	if s.metricsLog != nil {
		if err := s.metricsLog.Append(*record); err != nil {
			s.logger.Warn("failed to append metrics log", zap.Error(err))
		}
	}

	if action != "" {
		s.logger.Info("belief action selected",
			zap.Int("step", step),
			zap.String("action", action),
			zap.String("reason", reason),
			zap.Float64(s.metricName, gate),
			zap.Float64("avg_concept_confidence", bundle.AvgConceptConfidence))
	} else {
		s.logger.Debug("beliefs within thresholds",
			zap.Int("step", step),
			zap.Float64(s.metricName, gate),
			zap.Float64("avg_concept_confidence", bundle.AvgConceptConfidence))
	}

	return record, nil
}

// Start runs the monitor on a periodic schedule in a background goroutine.
func (s *MonitorService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("belief monitor started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := s.Evaluate(ctx); err != nil {
					s.logger.Error("belief evaluation failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("belief monitor stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the monitor.
func (s *MonitorService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
