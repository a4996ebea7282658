package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/internal/repository"
	"github.com/John-Sie/YangBeiKTV/pkg/crypto"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/jwt"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

const (
	// MinPasswordLength 密码最短长度
	MinPasswordLength = 6
	// ResetTokenRole 重设密码令牌的角色标记，不能用于登录态
	ResetTokenRole = "PASSWORD_RESET"
	// ResetTokenTTL 重设密码令牌有效期
	ResetTokenTTL = 15 * time.Minute
	// DefaultTheme 新用户主题
	DefaultTheme = "dark"
)

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Building string
	Floor    string
	Door     string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// UserInput 管理员新增/编辑用户。ID 为空表示新增，Password 为空表示不修改
type UserInput struct {
	ID          string
	Email       string
	Password    string
	Role        domain.Role
	Name        string
	Building    string
	Floor       string
	Door        string
	IsSuspended bool
}

// AccountService 账号与身份
type AccountService struct {
	users     repository.UserRepository
	requests  repository.RequestRepository
	hasher    *crypto.PasswordHasher
	tokens    *jwt.Manager
	publisher notify.Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewAccountService 创建账号服务
func NewAccountService(
	users repository.UserRepository,
	requests repository.RequestRepository,
	hasher *crypto.PasswordHasher,
	tokens *jwt.Manager,
	publisher notify.Publisher,
	log logger.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		requests:  requests,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		log:       log.WithFields(logger.String("component", "account_service")),
		now:       time.Now,
	}
}

func validatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}

// emailTaken 邮箱是否已被 excludeID 以外的账号使用
func (s *AccountService) emailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID != excludeID, nil
}

// Register 住户注册
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	building := strings.ToUpper(strings.TrimSpace(in.Building))
	if !domain.ValidBuilding(building) {
		return nil, domain.ErrInvalidBuilding
	}

	taken, err := s.emailTaken(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.DefaultUserName
	}
	user := &domain.User{
		ID:              uuid.New().String(),
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleUser,
		Name:            name,
		Building:        building,
		Floor:           strings.TrimSpace(in.Floor),
		Door:            strings.TrimSpace(in.Door),
		IsVerified:      true,
		Favorites:       []string{},
		ThemePreference: DefaultTheme,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("user registered", logger.String("user_id", user.ID))
	s.changed(ctx)
	return user, nil
}

// Login 邮箱密码登录。登录统计更新失败不影响登录
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsSuspended {
		return nil, domain.ErrUserSuspended
	}

	now := s.now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.WithContext(ctx).Warn("record login failed", logger.String("user_id", user.ID), logger.Error(err))
	} else {
		user.RecordLogin(now)
	}
	s.upgradeHash(ctx, user, password)

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      user,
	}, nil
}

// upgradeHash 旧参数生成的哈希在登录成功时以当前参数重算，失败不影响登录
func (s *AccountService) upgradeHash(ctx context.Context, user *domain.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err == nil {
		user.PasswordHash = hash
		err = s.users.Save(ctx, user)
	}
	if err != nil {
		s.log.WithContext(ctx).Warn("password rehash failed", logger.String("user_id", user.ID), logger.Error(err))
	}
}

// Current 根据令牌中的用户 ID 读取最新的用户记录
func (s *AccountService) Current(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	return user, err
}

// VerifyIdentity 忘记密码第一步：邮箱与住户资料相符时发放短期重设令牌
func (s *AccountService) VerifyIdentity(ctx context.Context, email, building, floor, door string) (string, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if !user.MatchesResidence(building, floor, door) {
		return "", domain.ErrIdentityMismatch
	}
	token, err := s.tokens.IssueWithTTL(user.ID, ResetTokenRole, ResetTokenTTL)
	return token.Value, err
}

// ResetPassword 忘记密码第二步
func (s *AccountService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.tokens.Parse(resetToken)
	if err != nil {
		return err
	}
	if claims.Role != ResetTokenRole {
		return apperrors.ErrTokenInvalid
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("password reset", logger.String("user_id", user.ID))
	return nil
}

// UpdateProfile 修改自己的名称与主题
func (s *AccountService) UpdateProfile(ctx context.Context, userID, name, theme string) (*domain.User, error) {
	user, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if theme = strings.TrimSpace(theme); theme != "" {
		user.ThemePreference = theme
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.changed(ctx)
	return user, nil
}

// ListUsers 管理员查看全部用户
func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.FetchAll(ctx)
}

// SaveUser 管理员新增或编辑用户，整条覆盖
func (s *AccountService) SaveUser(ctx context.Context, operator *domain.User, in UserInput) (*domain.User, error) {
	if err := requireAdmin(operator); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	building := strings.ToUpper(strings.TrimSpace(in.Building))
	if building != "" && !domain.ValidBuilding(building) {
		return nil, domain.ErrInvalidBuilding
	}
	role := in.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}

	var user *domain.User
	if in.ID == "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		user = &domain.User{
			ID:              uuid.New().String(),
			IsVerified:      true,
			Favorites:       []string{},
			ThemePreference: DefaultTheme,
			CreatedAt:       s.now().UTC(),
		}
	} else {
		existing, err := s.users.Get(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		user = existing
	}

	taken, err := s.emailTaken(ctx, email, user.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailAlreadyExists
	}

	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.Email = email
	user.Role = role
	user.Name = strings.TrimSpace(in.Name)
	if user.Name == "" {
		user.Name = domain.DefaultUserName
	}
	user.Building = building
	user.Floor = strings.TrimSpace(in.Floor)
	user.Door = strings.TrimSpace(in.Door)
	user.IsSuspended = in.IsSuspended

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.changed(ctx)
	return user, nil
}

// SetSuspended 停权或恢复
func (s *AccountService) SetSuspended(ctx context.Context, operator *domain.User, userID string, suspended bool) error {
	if err := requireAdmin(operator); err != nil {
		return err
	}
	if userID == operator.ID && suspended {
		return domain.ErrInvalidState
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.IsSuspended = suspended
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("user suspension changed",
		logger.String("user_id", userID),
		logger.Bool("suspended", suspended),
	)
	s.changed(ctx)
	return nil
}

// DeleteUser 删除用户，先删除其点歌记录
func (s *AccountService) DeleteUser(ctx context.Context, operator *domain.User, userID string) error {
	if err := requireAdmin(operator); err != nil {
		return err
	}
	if userID == operator.ID {
		return domain.ErrInvalidState
	}
	if err := s.deleteUser(ctx, userID); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

func (s *AccountService) deleteUser(ctx context.Context, userID string) error {
	n, err := s.requests.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("user deleted",
		logger.String("user_id", userID),
		logger.Int64("requests_deleted", n),
	)
	if n > 0 {
		if err := s.publisher.Publish(ctx, notify.TableRequests); err != nil {
			s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
		}
	}
	return nil
}

// SeedAdmin 启动时确保管理员存在：邮箱已存在则提升为管理员，否则新建
func (s *AccountService) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		existing.Role = domain.RoleAdmin
		if err := s.users.Save(ctx, existing); err != nil {
			return err
		}
		s.log.WithContext(ctx).Info("existing user promoted to admin", logger.String("user_id", existing.ID))
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = domain.DefaultUserName
	}
	admin := &domain.User{
		ID:              uuid.New().String(),
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleAdmin,
		Name:            name,
		IsVerified:      true,
		Favorites:       []string{},
		ThemePreference: DefaultTheme,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.users.Save(ctx, admin); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("admin seeded", logger.String("user_id", admin.ID))
	return nil
}

// DedupeByEmail 合并重复邮箱的账号：保留管理员，否则保留最近登录的，其余删除。
// 返回删除的账号数
func (s *AccountService) DedupeByEmail(ctx context.Context) (int, error) {
	users, err := s.users.FetchAll(ctx)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]domain.User)
	for _, u := range users {
		email := domain.NormalizeEmail(u.Email)
		if email == "" {
			continue
		}
		groups[email] = append(groups[email], u)
	}

	removed := 0
	for email, list := range groups {
		if len(list) < 2 {
			continue
		}
		winner := 0
		for i := 1; i < len(list); i++ {
			if domain.Prefer(&list[i], &list[winner]) {
				winner = i
			}
		}
		for i, u := range list {
			if i == winner {
				continue
			}
			if err := s.deleteUser(ctx, u.ID); err != nil {
				return removed, err
			}
			s.log.WithContext(ctx).Warn("duplicate account removed",
				logger.String("email", email),
				logger.String("kept", list[winner].ID),
				logger.String("removed", u.ID),
			)
			removed++
		}
	}

	if removed > 0 {
		s.changed(ctx)
	}
	return removed, nil
}

func (s *AccountService) changed(ctx context.Context) {
	if err := s.publisher.Publish(ctx, notify.TableUsers); err != nil {
		s.log.WithContext(ctx).Warn("publish change failed", logger.Error(err))
	}
}

func requireAdmin(u *domain.User) error {
	if u == nil {
		return domain.ErrUnauthenticated
	}
	if !u.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
