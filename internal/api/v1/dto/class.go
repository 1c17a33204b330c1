package dto

import "classroom/internal/model"

// ClassCreateDTO is used for incoming class creation requests
type ClassCreateDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Section     string `json:"section" validate:"max=60"`
}

// ClassUpdateDTO replaces the editable class fields
type ClassUpdateDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Section     string `json:"section" validate:"max=60"`
}

type JoinClassDTO struct {
	JoinCode string `json:"join_code" validate:"required,max=32"`
}

type JoinCodeResponseDTO struct {
	JoinCode string `json:"join_code"`
}

type ChangeRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=teacher ta student"`
}

// DeletionResponseDTO carries the step report of a class delete that did not complete
type DeletionResponseDTO struct {
	Report *model.DeletionReport `json:"report"`
	Error  string                `json:"error"`
}
