package dto

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ResetPasswordInput struct {
	NewPassword string `json:"new_password"`
}
