package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/classpass/backend/internal/pkg/validate"
	rostersvc "github.com/classpass/backend/internal/services/roster"
	"github.com/classpass/backend/internal/transport/http/dto"
	httperrors "github.com/classpass/backend/internal/transport/http/errors"
)

type RosterHandler struct {
	roster *rostersvc.Service
}

func NewRosterHandler(roster *rostersvc.Service) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// List returns every enrolled member of a class so instructors can spot
// absentees next to the day's attendance entries.
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.roster == nil {
		writeInternal(w, "ROSTER_SERVICE_UNAVAILABLE", "roster service is unavailable")
		return
	}

	classID := strings.TrimSpace(r.URL.Query().Get("class_id"))
	if !validate.Required(classID) {
		writeBadRequest(w, "VALIDATION_ERROR", "class_id is required")
		return
	}

	members, err := h.roster.Roll(r.Context(), classID)
	if err != nil {
		if errors.Is(err, rostersvc.ErrClassNotFound) {
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
				Code:    "CLASS_NOT_FOUND",
				Message: "class not found",
			})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	if members == nil {
		members = []int64{}
	}
	httperrors.Write(w, http.StatusOK, dto.RosterResponse{
		ClassID:   classID,
		MemberIDs: members,
	})
}
