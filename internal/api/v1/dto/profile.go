package dto

// ProfileUpdateDTO is used for incoming profile edits
type ProfileUpdateDTO struct {
	FullName  string `json:"full_name" validate:"required,max=120"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=2048"`
}

// SetRoleDTO changes the platform role of a profile
type SetRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=admin teacher student"`
}
