package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
)

const userColumns = `
	id, email, password_hash, role, name, building, floor, door,
	is_verified, is_suspended, login_count, last_login,
	COALESCE(favorites, '{}'), theme_preference, created_at
`

// userRepository PostgreSQL 用户仓储实现
type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.Building,
		&u.Floor,
		&u.Door,
		&u.IsVerified,
		&u.IsSuspended,
		&u.LoginCount,
		&u.LastLogin,
		&u.Favorites,
		&u.ThemePreference,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FetchAll 获取全部用户
func (r *userRepository) FetchAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("fetch users", err, nil)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr("scan user", err, nil)
		}
		users = append(users, *u)
	}
	return users, wrapErr("fetch users", rows.Err(), nil)
}

// Get 根据ID获取用户
func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("get user", err, domain.ErrUserNotFound)
	}
	return u, nil
}

// GetByEmail 根据邮箱获取用户。历史数据可能有重复邮箱，取最近登录的一条
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
		ORDER BY (role = 'ADMIN') DESC, last_login DESC NULLS LAST, created_at DESC
		LIMIT 1
	`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, wrapErr("get user by email", err, domain.ErrUserNotFound)
	}
	return u, nil
}

// Save 新增或整条覆盖
func (r *userRepository) Save(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, role, name, building, floor, door,
			is_verified, is_suspended, login_count, last_login,
			favorites, theme_preference, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			name = EXCLUDED.name,
			building = EXCLUDED.building,
			floor = EXCLUDED.floor,
			door = EXCLUDED.door,
			is_verified = EXCLUDED.is_verified,
			is_suspended = EXCLUDED.is_suspended,
			login_count = EXCLUDED.login_count,
			last_login = EXCLUDED.last_login,
			favorites = EXCLUDED.favorites,
			theme_preference = EXCLUDED.theme_preference
	`
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Name,
		u.Building,
		u.Floor,
		u.Door,
		u.IsVerified,
		u.IsSuspended,
		u.LoginCount,
		u.LastLogin,
		favorites,
		u.ThemePreference,
		u.CreatedAt,
	)
	return wrapErr("save user", err, nil)
}

// Delete 删除用户
func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete user", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ToggleFavorite 单条语句完成读改写，并发切换不会丢失更新
func (r *userRepository) ToggleFavorite(ctx context.Context, userID, songID string) ([]string, error) {
	query := `
		UPDATE users SET favorites = CASE
			WHEN $2::text = ANY(favorites) THEN array_remove(favorites, $2::text)
			ELSE array_append(COALESCE(favorites, '{}'), $2::text)
		END
		WHERE id = $1
		RETURNING favorites
	`
	var favorites []string
	if err := r.db.QueryRow(ctx, query, userID, songID).Scan(&favorites); err != nil {
		return nil, wrapErr("toggle favorite", err, domain.ErrUserNotFound)
	}
	return favorites, nil
}

// RecordLogin 登录次数加一并记录时间
func (r *userRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET login_count = login_count + 1, last_login = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return wrapErr("record login", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
