package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
	redrepo "github.com/classpass/backend/internal/repo/redis"
	authsvc "github.com/classpass/backend/internal/services/auth"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
	ratesvc "github.com/classpass/backend/internal/services/rate"
)

func TestRedeemHappyPath(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	token := issueToken(t, h, "cs101", 30)

	resp := performRedeem(t, h, token, 1001)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		EntryID string `json:"entry_id"`
		ClassID string `json:"class_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ClassID != "cs101" || payload.EntryID == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Status != "on_time" {
		t.Fatalf("unexpected status: %q", payload.Status)
	}
}

func TestRedeemTwiceConflicts(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	token := issueToken(t, h, "cs101", 30)

	if resp := performRedeem(t, h, token, 1001); resp.Code != http.StatusOK {
		t.Fatalf("first redeem failed: %d %s", resp.Code, resp.Body.String())
	}

	resp := performRedeem(t, h, token, 1001)
	if resp.Code != http.StatusConflict {
		t.Fatalf("second redeem: got %d want %d", resp.Code, http.StatusConflict)
	}
	if code := errorCode(t, resp); code != "ALREADY_MARKED_TODAY" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestRedeemRejectsNonEnrolledMember(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	token := issueToken(t, h, "cs101", 30)

	resp := performRedeem(t, h, token, 9999)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("got %d want %d", resp.Code, http.StatusForbidden)
	}
	if code := errorCode(t, resp); code != "NOT_ENROLLED" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestRedeemRejectsMalformedToken(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	resp := performRedeem(t, h, "not-a-token", 1001)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("got %d want %d", resp.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, resp); code != "MALFORMED_TOKEN" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestRedeemRequiresAuth(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	body, _ := json.Marshal(map[string]string{"token": "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/redeem", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Redeem(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRedeemReturnsTooFastOnBurst(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 20, 2)
	h := newCheckinHandlerForTest(t, limiter)

	token := issueToken(t, h, "cs101", 30)

	_ = performRedeem(t, h, "junk-1", 1001)
	_ = performRedeem(t, h, "junk-2", 1001)

	resp := performRedeem(t, h, token, 1001)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: got %d want %d", resp.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
	if payload.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry_after_sec, got %d", payload.RetryAfterSec)
	}
}

func TestIssueRejectsUnknownClass(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	body, _ := json.Marshal(map[string]any{"class_id": "ghost"})
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/issue", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Issue(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != "CLASS_NOT_FOUND" {
		t.Fatalf("unexpected error code: %q", code)
	}
}

func TestActiveReflectsRevoke(t *testing.T) {
	h := newCheckinHandlerForTest(t, nil)

	_ = issueToken(t, h, "cs101", 30)

	rec := httptest.NewRecorder()
	h.Active(rec, httptest.NewRequest(http.MethodGet, "/v1/checkin/active?class_id=cs101", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("active: got %d", rec.Code)
	}
	var active struct {
		Active    bool   `json:"active"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !active.Active || active.SessionID == "" {
		t.Fatalf("expected an active session, got %+v", active)
	}

	body, _ := json.Marshal(map[string]string{"session_id": active.SessionID})
	revokeRec := httptest.NewRecorder()
	h.Revoke(revokeRec, httptest.NewRequest(http.MethodPost, "/v1/checkin/revoke", bytes.NewReader(body)))
	if revokeRec.Code != http.StatusOK {
		t.Fatalf("revoke: got %d body %s", revokeRec.Code, revokeRec.Body.String())
	}

	afterRec := httptest.NewRecorder()
	h.Active(afterRec, httptest.NewRequest(http.MethodGet, "/v1/checkin/active?class_id=cs101", nil))
	var after struct {
		Active bool `json:"active"`
	}
	if err := json.Unmarshal(afterRec.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if after.Active {
		t.Fatalf("expected no active session after revoke")
	}
}

func newCheckinHandlerForTest(t *testing.T, limiter *ratesvc.Limiter) *CheckinHandler {
	t.Helper()

	svc := checkinsvc.NewService(checkinsvc.Dependencies{
		Registry: checkinsvc.NewRegistry(),
		Roster:   &handlerFakeRoster{classes: map[string][]int64{"cs101": {1001, 1002}}},
		Ledger:   newHandlerFakeLedger(),
	}, checkinsvc.Config{
		DefaultDuration: 30 * time.Minute,
		MaxDuration:     4 * time.Hour,
		GracePeriod:     15 * time.Minute,
		Timezone:        "UTC",
	})

	return NewCheckinHandler(svc, limiter)
}

func issueToken(t *testing.T, h *CheckinHandler, classID string, durationMin int) string {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"class_id":     classID,
		"duration_min": durationMin,
	})
	if err != nil {
		t.Fatalf("marshal issue request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/issue", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Issue(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("issue: got %d body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode issue response: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("empty token in issue response")
	}
	return payload.Token
}

func performRedeem(t *testing.T, h *CheckinHandler, token string, memberID int64) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		t.Fatalf("marshal redeem request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/checkin/redeem", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: memberID,
		SID:    fmt.Sprintf("sid-%d", memberID),
		Role:   enums.RoleMember,
	}))
	rec := httptest.NewRecorder()
	h.Redeem(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return payload.Code
}

type handlerFakeRoster struct {
	classes map[string][]int64
}

func (f *handlerFakeRoster) ClassExists(_ context.Context, classID string) (bool, error) {
	_, ok := f.classes[classID]
	return ok, nil
}

func (f *handlerFakeRoster) IsEnrolled(_ context.Context, classID string, memberID int64) (bool, error) {
	for _, id := range f.classes[classID] {
		if id == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (f *handlerFakeRoster) ScheduleFor(_ context.Context, _ string) ([]model.ScheduleSlot, error) {
	return nil, nil
}

type handlerFakeLedger struct {
	mu      sync.Mutex
	entries map[string]model.AttendanceEntry
}

func newHandlerFakeLedger() *handlerFakeLedger {
	return &handlerFakeLedger{entries: map[string]model.AttendanceEntry{}}
}

func (f *handlerFakeLedger) key(classID string, memberID int64, dayKey string) string {
	return fmt.Sprintf("%s|%d|%s", classID, memberID, dayKey)
}

func (f *handlerFakeLedger) Append(_ context.Context, entry model.AttendanceEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(entry.ClassID, entry.MemberID, entry.DayKey)
	if _, ok := f.entries[k]; ok {
		return checkinsvc.ErrDuplicateEntry
	}
	f.entries[k] = entry
	return nil
}

func (f *handlerFakeLedger) ExistsFor(_ context.Context, classID string, memberID int64, dayKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[f.key(classID, memberID, dayKey)]
	return ok, nil
}

func (f *handlerFakeLedger) ListForClassDay(_ context.Context, classID, dayKey string) ([]model.AttendanceEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AttendanceEntry
	for _, entry := range f.entries {
		if entry.ClassID == classID && entry.DayKey == dayKey {
			out = append(out, entry)
		}
	}
	return out, nil
}
