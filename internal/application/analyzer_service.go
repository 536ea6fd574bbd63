package application

import (
	"context"
	"fmt"
	"time"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

// Utilization thresholds, in percent. At or below the first a stage is
// available, at or below the second it is busy, above it is overloaded.
const (
	utilizationAvailableMax = 70.0
	utilizationBusyMax      = 85.0
)

// Workload status values
const (
	WorkloadStatusAvailable  = "available"
	WorkloadStatusBusy       = "busy"
	WorkloadStatusOverloaded = "overloaded"
)

// AnalyzerApplicationService reports per-stage workload, flags bottlenecks,
// and produces rebalancing suggestions.
type AnalyzerApplicationService struct {
	ledger *domain.CapacityLedger
	logger *logging.Logger
}

// NewAnalyzerApplicationService creates a new AnalyzerApplicationService
func NewAnalyzerApplicationService(ledger *domain.CapacityLedger, logger *logging.Logger) *AnalyzerApplicationService {
	return &AnalyzerApplicationService{
		ledger: ledger,
		logger: logger,
	}
}

// GetWorkloadReport returns the workload of every stage in pipeline order,
// plus the list of bottleneck stages.
func (s *AnalyzerApplicationService) GetWorkloadReport(ctx context.Context) (*WorkloadReportDTO, error) {
	snapshot := s.ledger.Snapshot()

	stages := make([]StageWorkloadDTO, 0, len(snapshot))
	bottlenecks := make([]string, 0)
	for _, usage := range snapshot {
		status := classifyUtilization(usage.Utilization())
		stages = append(stages, ToStageWorkloadDTO(usage, status))
		if status == WorkloadStatusOverloaded {
			bottlenecks = append(bottlenecks, string(usage.Stage))
		}
	}

	return &WorkloadReportDTO{
		Stages:      stages,
		Bottlenecks: bottlenecks,
		GeneratedAt: time.Now(),
	}, nil
}

// GetSuggestions returns rebalancing suggestions: high priority for every
// overloaded stage, medium priority for every busy stage. Returns an empty
// slice, never nil, when every stage is available.
func (s *AnalyzerApplicationService) GetSuggestions(ctx context.Context) ([]SuggestionDTO, error) {
	snapshot := s.ledger.Snapshot()

	suggestions := make([]SuggestionDTO, 0)
	for _, usage := range snapshot {
		util := usage.Utilization()
		status := classifyUtilization(util)
		if status == WorkloadStatusAvailable {
			continue
		}

		target := leastLoadedStage(snapshot, usage.Stage)

		var priority, action string
		switch status {
		case WorkloadStatusOverloaded:
			priority = "high"
			action = fmt.Sprintf("Hold new admissions until %s clears", usage.Stage)
			if target != "" {
				action = fmt.Sprintf("Shift workers from %s to %s", target, usage.Stage)
			}
		default:
			priority = "medium"
			action = fmt.Sprintf("Route new work away from %s where possible", usage.Stage)
			if target != "" {
				action = fmt.Sprintf("Prepare to shift workers from %s to %s", target, usage.Stage)
			}
		}

		suggestions = append(suggestions, SuggestionDTO{
			Type:     "redistribute_workload",
			Priority: priority,
			Message: fmt.Sprintf("Stage %s is at %.1f%% utilization (%d of %d units reserved)",
				usage.Stage, util, usage.Reserved, usage.Capacity),
			Action: action,
		})
	}

	return suggestions, nil
}

// GetCapacityReport returns current utilization across all stages plus totals
func (s *AnalyzerApplicationService) GetCapacityReport(ctx context.Context) (*CapacityReportDTO, error) {
	snapshot := s.ledger.Snapshot()

	stages := make([]StageWorkloadDTO, 0, len(snapshot))
	totalCapacity := 0
	totalReserved := 0
	for _, usage := range snapshot {
		stages = append(stages, ToStageWorkloadDTO(usage, classifyUtilization(usage.Utilization())))
		totalCapacity += usage.Capacity
		totalReserved += usage.Reserved
	}

	overall := 0.0
	if totalCapacity > 0 {
		overall = float64(totalReserved) / float64(totalCapacity) * 100
	}

	return &CapacityReportDTO{
		Stages:             stages,
		TotalCapacity:      totalCapacity,
		TotalReserved:      totalReserved,
		OverallUtilization: overall,
		GeneratedAt:        time.Now(),
	}, nil
}

// classifyUtilization maps a utilization percentage to a workload status
func classifyUtilization(utilization float64) string {
	switch {
	case utilization <= utilizationAvailableMax:
		return WorkloadStatusAvailable
	case utilization <= utilizationBusyMax:
		return WorkloadStatusBusy
	default:
		return WorkloadStatusOverloaded
	}
}

// leastLoadedStage returns the least-utilized available stage, excluding the
// given one. Busy and overloaded stages have no workers to spare, so they
// never donate; returns "" when no other stage is available.
func leastLoadedStage(snapshot []domain.StageUsage, exclude domain.Stage) string {
	best := ""
	bestUtil := 0.0
	for _, usage := range snapshot {
		if usage.Stage == exclude {
			continue
		}
		util := usage.Utilization()
		if util > utilizationAvailableMax {
			continue
		}
		if best == "" || util < bestUtil {
			best = string(usage.Stage)
			bestUtil = util
		}
	}
	return best
}
