package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
	authsvc "github.com/classpass/backend/internal/services/auth"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (authsvc.UserRecord, error) {
	if login == "" {
		return authsvc.UserRecord{}, authsvc.ErrUserNotFound
	}

	var (
		record authsvc.UserRecord
		role   string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, login, display_name, password_hash, role
FROM users
WHERE login = $1
`, login).Scan(
		&record.ID,
		&record.Login,
		&record.DisplayName,
		&record.PasswordHash,
		&role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.UserRecord{}, authsvc.ErrUserNotFound
		}
		return authsvc.UserRecord{}, fmt.Errorf("lookup user by login: %w", err)
	}

	record.Role = enums.ParseRole(role)
	return record, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	if id <= 0 {
		return model.User{}, authsvc.ErrUserNotFound
	}

	var (
		user model.User
		role string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, login, display_name, role, guardian_chat_id, created_at
FROM users
WHERE id = $1
`, id).Scan(
		&user.ID,
		&user.Login,
		&user.DisplayName,
		&role,
		&user.GuardianChatID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, authsvc.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup user by id: %w", err)
	}

	user.Role = enums.ParseRole(role)
	return user, nil
}

func (r *UserRepo) GuardianChatID(ctx context.Context, memberID int64) (int64, bool, error) {
	if memberID <= 0 {
		return 0, false, nil
	}

	var chatID *int64
	err := r.pool.QueryRow(ctx, `
SELECT guardian_chat_id
FROM users
WHERE id = $1
`, memberID).Scan(&chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("lookup guardian chat: %w", err)
	}

	if chatID == nil {
		return 0, false, nil
	}
	return *chatID, true, nil
}
