package dto

import "time"

type MeResponse struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	HasGuardian bool      `json:"has_guardian"`
	CreatedAt   time.Time `json:"created_at"`
}
