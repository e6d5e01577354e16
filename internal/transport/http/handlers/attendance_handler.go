package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/classpass/backend/internal/pkg/validate"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
	"github.com/classpass/backend/internal/transport/http/dto"
	httperrors "github.com/classpass/backend/internal/transport/http/errors"
)

type AttendanceHandler struct {
	service *checkinsvc.Service
}

func NewAttendanceHandler(service *checkinsvc.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKIN_SERVICE_UNAVAILABLE", "checkin service is unavailable")
		return
	}

	classID := strings.TrimSpace(r.URL.Query().Get("class_id"))
	if !validate.Required(classID) {
		writeBadRequest(w, "VALIDATION_ERROR", "class_id is required")
		return
	}

	dayKey := strings.TrimSpace(r.URL.Query().Get("date"))
	if !validate.Required(dayKey) {
		writeBadRequest(w, "VALIDATION_ERROR", "date is required")
		return
	}
	if _, err := time.Parse("2006-01-02", dayKey); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "date must be formatted as YYYY-MM-DD")
		return
	}

	entries, err := h.service.AttendanceForDay(r.Context(), classID, dayKey)
	if err != nil {
		handleCheckinError(w, err)
		return
	}

	res := dto.AttendanceListResponse{
		ClassID: classID,
		DayKey:  dayKey,
		Entries: make([]dto.AttendanceEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		res.Entries = append(res.Entries, dto.AttendanceEntryResponse{
			EntryID:    entry.ID,
			MemberID:   entry.MemberID,
			Status:     string(entry.Status),
			RedeemedAt: entry.RedeemedAt,
			SessionID:  entry.SessionID,
		})
	}

	httperrors.Write(w, http.StatusOK, res)
}
