package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/classpass/backend/internal/domain/model"
	authsvc "github.com/classpass/backend/internal/services/auth"
	"github.com/classpass/backend/internal/transport/http/dto"
	httperrors "github.com/classpass/backend/internal/transport/http/errors"
)

// UserDirectory resolves the authenticated caller's stored profile.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
}

type MeHandler struct {
	users UserDirectory
}

func NewMeHandler(users UserDirectory) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_DIRECTORY_UNAVAILABLE", "user directory is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
				Code:    "USER_NOT_FOUND",
				Message: "user not found",
			})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:          user.ID,
		Login:       user.Login,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		HasGuardian: user.GuardianChatID != nil,
		CreatedAt:   user.CreatedAt,
	})
}
