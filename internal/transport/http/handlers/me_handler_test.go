package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
	authsvc "github.com/classpass/backend/internal/services/auth"
)

func TestMeReturnsStoredProfile(t *testing.T) {
	chatID := int64(555)
	h := NewMeHandler(&fakeUserDirectory{users: map[int64]model.User{
		1: {
			ID:             1,
			Login:          "instructor1",
			DisplayName:    "Ms. Reyes",
			Role:           enums.RoleInstructor,
			GuardianChatID: &chatID,
			CreatedAt:      time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC),
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   enums.RoleInstructor,
	}))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		ID          int64  `json:"id"`
		Login       string `json:"login"`
		Role        string `json:"role"`
		HasGuardian bool   `json:"has_guardian"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != 1 || payload.Login != "instructor1" || payload.Role != "INSTRUCTOR" || !payload.HasGuardian {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestMeUnknownUser(t *testing.T) {
	h := NewMeHandler(&fakeUserDirectory{users: map[int64]model.User{}})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 9,
		SID:    "sid-9",
		Role:   enums.RoleMember,
	}))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d body %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "USER_NOT_FOUND" {
		t.Fatalf("unexpected error code: %s", code)
	}
}

func TestMeRequiresIdentity(t *testing.T) {
	h := NewMeHandler(&fakeUserDirectory{users: map[int64]model.User{}})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d body %s", rec.Code, rec.Body.String())
	}
}

type fakeUserDirectory struct {
	users map[int64]model.User
}

func (f *fakeUserDirectory) GetByID(_ context.Context, id int64) (model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return model.User{}, authsvc.ErrUserNotFound
	}
	return user, nil
}
