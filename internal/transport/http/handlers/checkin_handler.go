package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/classpass/backend/internal/pkg/validate"
	authsvc "github.com/classpass/backend/internal/services/auth"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
	ratesvc "github.com/classpass/backend/internal/services/rate"
	"github.com/classpass/backend/internal/transport/http/dto"
	httperrors "github.com/classpass/backend/internal/transport/http/errors"
)

type CheckinHandler struct {
	service *checkinsvc.Service
	limiter *ratesvc.Limiter
}

func NewCheckinHandler(service *checkinsvc.Service, limiter *ratesvc.Limiter) *CheckinHandler {
	return &CheckinHandler{service: service, limiter: limiter}
}

func (h *CheckinHandler) Issue(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKIN_SERVICE_UNAVAILABLE", "checkin service is unavailable")
		return
	}

	var req dto.IssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if !validate.ClassID(req.ClassID) {
		writeBadRequest(w, "VALIDATION_ERROR", "class_id must be a short slug")
		return
	}
	if req.DurationMin < 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "duration_min must not be negative")
		return
	}

	duration := time.Duration(req.DurationMin) * time.Minute
	res, err := h.service.Issue(r.Context(), req.ClassID, duration)
	if err != nil {
		handleCheckinError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.IssueResponse{
		Token:     res.Token,
		SessionID: res.SessionID,
		ClassID:   res.ClassID,
		IssuedAt:  res.IssuedAt,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *CheckinHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKIN_SERVICE_UNAVAILABLE", "checkin service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.RedeemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if !validate.Required(req.Token) {
		writeBadRequest(w, "VALIDATION_ERROR", "token is required")
		return
	}

	if h.limiter != nil {
		retryAfter, allowed, err := h.limiter.AllowRedeem(r.Context(), identity.UserID)
		if err != nil {
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
			return
		}
		if !allowed {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "too many check-in attempts",
				RetryAfterSec: retryAfter,
			})
			return
		}
	}

	entry, err := h.service.CheckIn(r.Context(), req.Token, identity.UserID)
	if err != nil {
		handleCheckinError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RedeemResponse{
		EntryID:    entry.ID,
		ClassID:    entry.ClassID,
		Status:     string(entry.Status),
		RedeemedAt: entry.RedeemedAt,
	})
}

func (h *CheckinHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKIN_SERVICE_UNAVAILABLE", "checkin service is unavailable")
		return
	}

	var req dto.RevokeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if !validate.Required(req.SessionID) {
		writeBadRequest(w, "VALIDATION_ERROR", "session_id is required")
		return
	}

	if err := h.service.Deactivate(r.Context(), req.SessionID); err != nil {
		handleCheckinError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.RevokeResponse{OK: true})
}

func (h *CheckinHandler) Active(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHECKIN_SERVICE_UNAVAILABLE", "checkin service is unavailable")
		return
	}

	classID := strings.TrimSpace(r.URL.Query().Get("class_id"))
	if !validate.Required(classID) {
		writeBadRequest(w, "VALIDATION_ERROR", "class_id is required")
		return
	}

	session, ok, err := h.service.ActiveSession(r.Context(), classID)
	if err != nil {
		handleCheckinError(w, err)
		return
	}
	if !ok {
		httperrors.Write(w, http.StatusOK, dto.ActiveSessionResponse{Active: false})
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ActiveSessionResponse{
		Active:        true,
		SessionID:     session.ID,
		ClassID:       session.ClassID,
		IssuedAt:      session.IssuedAt,
		ExpiresAt:     session.ExpiresAt,
		RedeemedCount: session.RedeemedCount,
	})
}

func handleCheckinError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkinsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, checkinsvc.ErrMalformedToken):
		writeBadRequest(w, "MALFORMED_TOKEN", "check-in token is malformed")
	case errors.Is(err, checkinsvc.ErrTokenExpired):
		httperrors.Write(w, http.StatusGone, httperrors.APIError{Code: "TOKEN_EXPIRED", Message: "check-in token has expired"})
	case errors.Is(err, checkinsvc.ErrSessionNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "SESSION_NOT_FOUND", Message: "check-in session does not exist"})
	case errors.Is(err, checkinsvc.ErrSessionExpired):
		httperrors.Write(w, http.StatusGone, httperrors.APIError{Code: "SESSION_EXPIRED", Message: "check-in session is no longer usable"})
	case errors.Is(err, checkinsvc.ErrAlreadyRedeemed):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "ALREADY_REDEEMED", Message: "token already redeemed in this session"})
	case errors.Is(err, checkinsvc.ErrClassNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "CLASS_NOT_FOUND", Message: "class does not exist"})
	case errors.Is(err, checkinsvc.ErrNotEnrolled):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: "NOT_ENROLLED", Message: "member is not enrolled in this class"})
	case errors.Is(err, checkinsvc.ErrAlreadyMarkedToday):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "ALREADY_MARKED_TODAY", Message: "attendance already marked for today"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
