package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furniture-mes/scheduling-service/pkg/logging"

	"github.com/furniture-mes/scheduling-service/internal/domain"
)

func newAnalyzer(t *testing.T, capacities map[domain.Stage]int) (*AnalyzerApplicationService, *domain.CapacityLedger) {
	t.Helper()
	ledger, err := domain.NewCapacityLedger(capacities)
	require.NoError(t, err)
	logger := logging.New(logging.DefaultConfig("test"))
	return NewAnalyzerApplicationService(ledger, logger), ledger
}

func uniformCapacities(capacity int) map[domain.Stage]int {
	capacities := make(map[domain.Stage]int, len(domain.StageOrder))
	for _, stage := range domain.StageOrder {
		capacities[stage] = capacity
	}
	return capacities
}

// =============================================================================
// Workload Classification Tests
// =============================================================================

func TestAnalyzerApplicationService_GetWorkloadReport(t *testing.T) {
	t.Run("classifies stages at the thresholds", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))

		// 70% is still available, 85% is still busy, 86% is overloaded
		require.NoError(t, ledger.Reserve(domain.StageMaterialPreparation, 70))
		require.NoError(t, ledger.Reserve(domain.StageCuttingShaping, 85))
		require.NoError(t, ledger.Reserve(domain.StageAssembly, 86))

		report, err := service.GetWorkloadReport(context.Background())

		require.NoError(t, err)
		require.Len(t, report.Stages, len(domain.StageOrder))
		assert.Equal(t, WorkloadStatusAvailable, report.Stages[0].Status)
		assert.Equal(t, WorkloadStatusBusy, report.Stages[1].Status)
		assert.Equal(t, WorkloadStatusOverloaded, report.Stages[2].Status)
		assert.Equal(t, WorkloadStatusAvailable, report.Stages[3].Status)
	})

	t.Run("reports stages in pipeline order", func(t *testing.T) {
		service, _ := newAnalyzer(t, domain.DefaultStageCapacities())

		report, err := service.GetWorkloadReport(context.Background())

		require.NoError(t, err)
		for i, stage := range report.Stages {
			assert.Equal(t, string(domain.StageOrder[i]), stage.Stage)
		}
	})

	t.Run("overloaded stages are listed as bottlenecks", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))
		require.NoError(t, ledger.Reserve(domain.StageSanding, 90))
		require.NoError(t, ledger.Reserve(domain.StageFinishing, 95))

		report, err := service.GetWorkloadReport(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{
			string(domain.StageSanding),
			string(domain.StageFinishing),
		}, report.Bottlenecks)
	})

	t.Run("balanced pipeline has an empty bottleneck list", func(t *testing.T) {
		service, _ := newAnalyzer(t, domain.DefaultStageCapacities())

		report, err := service.GetWorkloadReport(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, report.Bottlenecks)
		assert.Empty(t, report.Bottlenecks)
	})
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestAnalyzerApplicationService_GetSuggestions(t *testing.T) {
	t.Run("suggests shifting workers toward the overloaded stage", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))
		require.NoError(t, ledger.Reserve(domain.StageAssembly, 90))
		require.NoError(t, ledger.Reserve(domain.StageSanding, 20))

		suggestions, err := service.GetSuggestions(context.Background())

		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "redistribute_workload", suggestions[0].Type)
		assert.Equal(t, "high", suggestions[0].Priority)
		assert.Contains(t, suggestions[0].Message, string(domain.StageAssembly))
		assert.Contains(t, suggestions[0].Action, "Shift workers from")
	})

	t.Run("busy stages get a medium-priority suggestion", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))
		require.NoError(t, ledger.Reserve(domain.StageAssembly, 85))

		suggestions, err := service.GetSuggestions(context.Background())

		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "medium", suggestions[0].Priority)
		assert.Contains(t, suggestions[0].Message, string(domain.StageAssembly))
		assert.Contains(t, suggestions[0].Action, "Prepare to shift workers from")
	})

	t.Run("busy stages never donate workers", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))
		require.NoError(t, ledger.Reserve(domain.StageAssembly, 90))
		for _, stage := range domain.StageOrder {
			if stage == domain.StageAssembly {
				continue
			}
			require.NoError(t, ledger.Reserve(stage, 75))
		}

		suggestions, err := service.GetSuggestions(context.Background())

		require.NoError(t, err)
		require.Len(t, suggestions, len(domain.StageOrder))
		for _, suggestion := range suggestions {
			if suggestion.Priority == "high" {
				assert.Contains(t, suggestion.Action, "Hold new admissions")
			} else {
				assert.Contains(t, suggestion.Action, "Route new work away from")
			}
		}
	})

	t.Run("holds admissions when every other stage is loaded too", func(t *testing.T) {
		service, ledger := newAnalyzer(t, uniformCapacities(100))
		for _, stage := range domain.StageOrder {
			require.NoError(t, ledger.Reserve(stage, 90))
		}

		suggestions, err := service.GetSuggestions(context.Background())

		require.NoError(t, err)
		require.Len(t, suggestions, len(domain.StageOrder))
		for _, suggestion := range suggestions {
			assert.Contains(t, suggestion.Action, "Hold new admissions")
		}
	})

	t.Run("returns an empty slice, never nil", func(t *testing.T) {
		service, _ := newAnalyzer(t, domain.DefaultStageCapacities())

		suggestions, err := service.GetSuggestions(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, suggestions)
		assert.Empty(t, suggestions)
	})
}

// =============================================================================
// Capacity Report Tests
// =============================================================================

func TestAnalyzerApplicationService_GetCapacityReport(t *testing.T) {
	service, ledger := newAnalyzer(t, domain.DefaultStageCapacities())
	require.NoError(t, ledger.Reserve(domain.StageAssembly, 50))
	require.NoError(t, ledger.Reserve(domain.StageFinishing, 30))
	require.NoError(t, ledger.Reserve(domain.StageQualityCheck, 20))

	report, err := service.GetCapacityReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 200, report.TotalCapacity)
	assert.Equal(t, 100, report.TotalReserved)
	assert.InDelta(t, 50.0, report.OverallUtilization, 0.001)
	assert.Len(t, report.Stages, len(domain.StageOrder))
}
