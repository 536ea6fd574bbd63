package application

import "github.com/furniture-mes/scheduling-service/internal/domain"

// ToProductionDTO converts a domain Production to ProductionDTO
func ToProductionDTO(p *domain.Production) *ProductionDTO {
	if p == nil {
		return nil
	}

	items := make([]BatchItemDTO, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, BatchItemDTO{
			OrderID:  item.OrderID,
			Quantity: item.Quantity,
		})
	}

	stageLog := make([]StageEntryDTO, 0, len(p.StageLog))
	for _, entry := range p.StageLog {
		stageLog = append(stageLog, StageEntryDTO{
			Stage:     string(entry.Stage),
			EnteredAt: entry.EnteredAt,
		})
	}

	return &ProductionDTO{
		ProductionID:        p.ProductionID,
		BatchNumber:         p.BatchNumber,
		ProductID:           p.ProductID,
		ProductName:         p.ProductName,
		Items:               items,
		Quantity:            p.Quantity,
		Stage:               string(p.Stage),
		UnitsReserved:       p.UnitsReserved,
		Priority:            string(p.Priority),
		Status:              string(p.Status),
		Progress:            p.Progress(),
		Notes:               p.Notes,
		StageLog:            stageLog,
		StageStartedAt:      p.StageStartedAt,
		EstimatedCompletion: p.EstimatedCompletion,
		ActualCompletion:    p.ActualCompletion,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// ToProductionListDTO converts a domain Production to ProductionListDTO (simplified)
func ToProductionListDTO(p *domain.Production) *ProductionListDTO {
	if p == nil {
		return nil
	}

	return &ProductionListDTO{
		ProductionID:        p.ProductionID,
		BatchNumber:         p.BatchNumber,
		ProductID:           p.ProductID,
		ProductName:         p.ProductName,
		Quantity:            p.Quantity,
		Stage:               string(p.Stage),
		Priority:            string(p.Priority),
		Status:              string(p.Status),
		Progress:            p.Progress(),
		OrderCount:          len(p.Items),
		EstimatedCompletion: p.EstimatedCompletion,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// ToProductionListDTOs converts a slice of domain Productions to ProductionListDTOs
func ToProductionListDTOs(productions []*domain.Production) []ProductionListDTO {
	dtos := make([]ProductionListDTO, 0, len(productions))
	for _, p := range productions {
		if dto := ToProductionListDTO(p); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToProductionDTOs converts a slice of domain Productions to ProductionDTOs
func ToProductionDTOs(productions []*domain.Production) []ProductionDTO {
	dtos := make([]ProductionDTO, 0, len(productions))
	for _, p := range productions {
		if dto := ToProductionDTO(p); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToStageWorkloadDTO converts a domain StageUsage to StageWorkloadDTO
func ToStageWorkloadDTO(usage domain.StageUsage, status string) StageWorkloadDTO {
	return StageWorkloadDTO{
		Stage:       string(usage.Stage),
		Capacity:    usage.Capacity,
		Reserved:    usage.Reserved,
		Available:   usage.Available,
		Utilization: usage.Utilization(),
		Status:      status,
	}
}
