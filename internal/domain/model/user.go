package model

import (
	"time"

	"github.com/classpass/backend/internal/domain/enums"
)

type User struct {
	ID             int64      `json:"id"`
	Login          string     `json:"login"`
	DisplayName    string     `json:"display_name"`
	Role           enums.Role `json:"role"`
	GuardianChatID *int64     `json:"guardian_chat_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
