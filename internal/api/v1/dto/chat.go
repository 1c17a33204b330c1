package dto

// ChatRequestDTO is a single message for the assistant
type ChatRequestDTO struct {
	Message string `json:"message" validate:"required,max=4000"`
}
