package domain

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// DefaultUserName 注册时未填写名称的默认值
const DefaultUserName = "住戶"

// User 住户账号
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Role            Role       `json:"role"`
	Name            string     `json:"name"`
	Building        string     `json:"building"` // A 或 B 栋
	Floor           string     `json:"floor"`
	Door            string     `json:"door"`
	IsVerified      bool       `json:"is_verified"`
	IsSuspended     bool       `json:"is_suspended"`
	LoginCount      int        `json:"login_count"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	Favorites       []string   `json:"favorites"`
	ThemePreference string     `json:"theme_preference,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Residence 住户门牌，例如 A76-19F
func (u *User) Residence() string {
	if u.Building == "" && u.Door == "" && u.Floor == "" {
		return ""
	}
	return fmt.Sprintf("%s%s-%sF", u.Building, u.Door, u.Floor)
}

// DisplayName 点歌列表上显示的名称
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return DefaultUserName
}

// HasFavorite 是否已收藏
func (u *User) HasFavorite(songID string) bool {
	return slices.Contains(u.Favorites, songID)
}

// ToggleFavorite 收藏/取消收藏，返回切换后是否为收藏状态
func (u *User) ToggleFavorite(songID string) bool {
	if i := slices.Index(u.Favorites, songID); i >= 0 {
		u.Favorites = slices.Delete(slices.Clone(u.Favorites), i, i+1)
		return false
	}
	u.Favorites = append(slices.Clone(u.Favorites), songID)
	return true
}

// MatchesResidence 身份验证：栋别、楼层、门牌都要相符
func (u *User) MatchesResidence(building, floor, door string) bool {
	return strings.EqualFold(strings.TrimSpace(building), u.Building) &&
		strings.TrimSpace(floor) == u.Floor &&
		strings.TrimSpace(door) == u.Door
}

// RecordLogin 登录成功后更新统计
func (u *User) RecordLogin(at time.Time) {
	u.LoginCount++
	u.LastLogin = &at
}

// ValidateEmail 校验邮箱格式
func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail 邮箱统一小写去空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidBuilding 只有 A、B 两栋
func ValidBuilding(b string) bool {
	return b == "A" || b == "B"
}

// UserIndex 按 ID 索引用户
func UserIndex(users []User) map[string]*User {
	idx := make(map[string]*User, len(users))
	for i := range users {
		idx[users[i].ID] = &users[i]
	}
	return idx
}

// Prefer 重复邮箱合并时 a 是否优先于 b：管理员优先，其次最近登录，再次最近创建
func Prefer(a, b *User) bool {
	if a.IsAdmin() != b.IsAdmin() {
		return a.IsAdmin()
	}
	switch {
	case a.LastLogin != nil && b.LastLogin == nil:
		return true
	case a.LastLogin == nil && b.LastLogin != nil:
		return false
	case a.LastLogin != nil && !a.LastLogin.Equal(*b.LastLogin):
		return a.LastLogin.After(*b.LastLogin)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
