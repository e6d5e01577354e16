package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/classpass/backend/internal/domain/enums"
	redrepo "github.com/classpass/backend/internal/repo/redis"
	authsvc "github.com/classpass/backend/internal/services/auth"
)

func TestLoginAndValidate(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	res, err := svc.Login(ctx, "instructor1", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Me.Role != enums.RoleInstructor {
		t.Fatalf("unexpected role: %s", res.Me.Role)
	}

	claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != 1 || claims.Role != enums.RoleInstructor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Login(ctx, "instructor1", "wrong"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "whatever"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("unknown login: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("blank input: expected ErrInvalidInput, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Login(ctx, "instructor1", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Login(ctx, "instructor1", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	first, err := svc.Login(ctx, "instructor1", "correct horse")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(ctx, "instructor1", "correct horse")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for i, res := range []authsvc.AuthResult{first, second} {
		if _, err := svc.ValidateAccessToken(ctx, res.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("session %d should be unauthorized after logout-all, got err=%v", i, err)
		}
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)

	hash, err := authsvc.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &fakeUserStore{
		byLogin: map[string]authsvc.UserRecord{
			"instructor1": {
				ID:           1,
				Login:        "instructor1",
				DisplayName:  "Ms. Ivanova",
				PasswordHash: hash,
				Role:         enums.RoleInstructor,
			},
		},
	}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, users, 45*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}

type fakeUserStore struct {
	byLogin map[string]authsvc.UserRecord
}

func (f *fakeUserStore) GetByLogin(_ context.Context, login string) (authsvc.UserRecord, error) {
	user, ok := f.byLogin[login]
	if !ok {
		return authsvc.UserRecord{}, authsvc.ErrUserNotFound
	}
	return user, nil
}
