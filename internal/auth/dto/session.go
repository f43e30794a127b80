package dto

type BindSessionKeyInput struct {
	SessionKey string `json:"session_key"`
	UserID     int    `json:"user_id"`
}
