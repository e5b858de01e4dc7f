package report

import (
	"context"
	"fmt"

	"github.com/garyjia/process-reports/internal/domain/entity"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregate is the joined process/incident data a report is composed from.
type Aggregate struct {
	Processes []*entity.Process
	// Incidents are ordered newest first.
	Incidents []*entity.Incident
}

// IncidentsByProcess groups incidents by parent process id in a single pass,
// keeping the newest-first order within each group.
func (a *Aggregate) IncidentsByProcess() map[string][]*entity.Incident {
	grouped := make(map[string][]*entity.Incident, len(a.Processes))
	for _, incident := range a.Incidents {
		grouped[incident.ProcessID] = append(grouped[incident.ProcessID], incident)
	}
	return grouped
}

// Aggregator fetches the processes and incidents a report covers
type Aggregator struct {
	processes ProcessReader
	incidents IncidentReader
	logger    *zap.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(processes ProcessReader, incidents IncidentReader, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		processes: processes,
		incidents: incidents,
		logger:    logger,
	}
}

// Aggregate loads the processes matching processIDs and all their incidents.
// Both reads run concurrently; it fails with ErrNoMatchingProcesses when no
// process matches.
func (a *Aggregator) Aggregate(ctx context.Context, processIDs []string) (*Aggregate, error) {
	a.logger.Debug("Aggregating report data", zap.Int("requested_processes", len(processIDs)))

	var (
		processes []*entity.Process
		incidents []*entity.Incident
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		processes, err = a.processes.FindByIDs(gctx, processIDs)
		if err != nil {
			return fmt.Errorf("failed to load processes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		incidents, err = a.incidents.FindByProcessIDs(gctx, processIDs)
		if err != nil {
			return fmt.Errorf("failed to load incidents: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("Report data aggregation failed", zap.Error(err))
		return nil, err
	}

	if len(processes) == 0 {
		return nil, ErrNoMatchingProcesses
	}

	a.logger.Debug("Report data aggregation complete",
		zap.Int("process_count", len(processes)),
		zap.Int("incident_count", len(incidents)))

	return &Aggregate{
		Processes: processes,
		Incidents: incidents,
	}, nil
}
