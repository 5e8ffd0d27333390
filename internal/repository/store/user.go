package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// UserStore implements repository.UserRepository.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user and fills in the generated user_num.
//
// The existence check before the INSERT gives a clean conflict error for
// the common case. A racing duplicate still trips the UNIQUE constraint
// and surfaces as a generic store error, which is acceptable — the window
// is tiny and the row is never corrupted.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	var exists int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE id = $1`, user.ID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("store: checking user id %s: %w", user.ID, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", user.ID)
	}

	if user.Role == "" {
		user.Role = model.RoleGeneral
	}
	if user.Provider == "" {
		user.Provider = model.ProviderGeneral
	}
	user.CreatedAt = time.Now()

	err = s.conn.QueryRowContext(ctx,
		`INSERT INTO users (id, password_hash, nickname, name, phone, role, social_login_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING user_num`,
		user.ID,
		user.PasswordHash,
		user.Nickname,
		user.Name,
		user.Phone,
		user.Role,
		user.Provider,
		user.CreatedAt,
	).Scan(&user.UserNum)
	if err != nil {
		return fmt.Errorf("store: inserting user %s: %w", user.ID, err)
	}

	return nil
}

// GetByID retrieves a user by their login identifier.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

// GetByUserNum retrieves a user by their numeric surrogate key.
func (s *UserStore) GetByUserNum(ctx context.Context, userNum int64) (*model.User, error) {
	return s.getUser(ctx, `WHERE user_num = $1`, userNum)
}

func (s *UserStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT user_num, id, password_hash, nickname, name, phone, role, social_login_type, created_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.UserNum,
		&u.ID,
		&u.PasswordHash,
		&u.Nickname,
		&u.Name,
		&u.Phone,
		&u.Role,
		&u.Provider,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundID("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("store: getting user %v: %w", arg, err)
	}

	return &u, nil
}
