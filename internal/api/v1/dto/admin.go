package dto

import "classroom/internal/service"

// BulkDeleteDTO lists the classes an admin wants removed
type BulkDeleteDTO struct {
	ClassIDs []string `json:"class_ids" validate:"required,min=1,max=100,dive,uuid"`
}

type BulkDeleteResponseDTO struct {
	Results []service.BulkDeleteResult `json:"results"`
}
