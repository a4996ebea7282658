package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/pkg/crypto"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
)

func register(t *testing.T, e *env, email, password string) *domain.User {
	t.Helper()
	u, err := e.accountSvc.Register(context.Background(), RegisterInput{
		Email: email, Password: password, Name: "住戶甲", Building: "a", Floor: "12", Door: "5",
	})
	require.NoError(t, err)
	return u
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u := register(t, e, " New@Example.com ", "secret1")
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "A", u.Building)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.IsVerified)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	tests := []struct {
		name string
		in   RegisterInput
		err  error
	}{
		{"duplicate email", RegisterInput{Email: "NEW@example.com", Password: "secret1", Building: "A"}, domain.ErrEmailAlreadyExists},
		{"bad email", RegisterInput{Email: "nope", Password: "secret1", Building: "A"}, domain.ErrInvalidEmail},
		{"short password", RegisterInput{Email: "x@example.com", Password: "12345", Building: "A"}, domain.ErrPasswordTooShort},
		{"unknown building", RegisterInput{Email: "x@example.com", Password: "secret1", Building: "C"}, domain.ErrInvalidBuilding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.accountSvc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("blank name falls back to default", func(t *testing.T) {
		u, err := e.accountSvc.Register(ctx, RegisterInput{Email: "anon@example.com", Password: "secret1", Building: "B"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultUserName, u.Name)
	})
}

func TestAccountService_Login(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := register(t, e, "login@example.com", "secret1")

	res, err := e.accountSvc.Login(ctx, "LOGIN@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 1, res.User.LoginCount)

	claims, err := e.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleUser), claims.Role)

	stored := e.user(t, u.ID)
	assert.Equal(t, 1, stored.LoginCount)
	assert.NotNil(t, stored.LastLogin)

	_, err = e.accountSvc.Login(ctx, "login@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = e.accountSvc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, e.accountSvc.SetSuspended(ctx, e.user(t, "admin"), u.ID, true))
	_, err = e.accountSvc.Login(ctx, "login@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAccountService_LoginUpgradesWeakHash(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	weak := crypto.NewPasswordHasherWithParams(&crypto.Argon2Params{Memory: 512, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	hash, err := weak.Hash("secret1")
	require.NoError(t, err)
	u := e.user(t, "u2")
	u.PasswordHash = hash
	require.NoError(t, e.users.Save(ctx, u))

	_, err = e.accountSvc.Login(ctx, "hua@example.com", "secret1")
	require.NoError(t, err)

	stored := e.user(t, "u2")
	assert.Contains(t, stored.PasswordHash, "m=1024,")
	assert.Equal(t, 1, stored.LoginCount)
	_, err = e.accountSvc.Login(ctx, "hua@example.com", "secret1")
	assert.NoError(t, err)
}

func TestAccountService_Current(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.accountSvc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "王小明", u.Name)

	_, err = e.accountSvc.Current(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = e.accountSvc.Current(ctx, "deleted")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAccountService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := register(t, e, "reset@example.com", "secret1")

	_, err := e.accountSvc.VerifyIdentity(ctx, "reset@example.com", "A", "12", "6")
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
	_, err = e.accountSvc.VerifyIdentity(ctx, "nobody@example.com", "A", "12", "5")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	token, err := e.accountSvc.VerifyIdentity(ctx, "reset@example.com", "a", "12", "5")
	require.NoError(t, err)

	assert.ErrorIs(t, e.accountSvc.ResetPassword(ctx, token, "123"), domain.ErrPasswordTooShort)
	require.NoError(t, e.accountSvc.ResetPassword(ctx, token, "newpass"))

	_, err = e.accountSvc.Login(ctx, "reset@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = e.accountSvc.Login(ctx, "reset@example.com", "newpass")
	assert.NoError(t, err)

	t.Run("session token cannot reset", func(t *testing.T) {
		session, err := e.tokens.Issue(u.ID, string(domain.RoleUser))
		require.NoError(t, err)
		assert.ErrorIs(t, e.accountSvc.ResetPassword(ctx, session.Value, "another"), apperrors.ErrTokenInvalid)
	})

	t.Run("expired reset token", func(t *testing.T) {
		expired, err := e.tokens.IssueWithTTL(u.ID, ResetTokenRole, -time.Minute)
		require.NoError(t, err)
		assert.ErrorIs(t, e.accountSvc.ResetPassword(ctx, expired.Value, "another"), apperrors.ErrTokenExpired)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	u, err := e.accountSvc.UpdateProfile(ctx, "u1", "  小明 ", "light")
	require.NoError(t, err)
	assert.Equal(t, "小明", u.Name)
	assert.Equal(t, "light", u.ThemePreference)

	u, err = e.accountSvc.UpdateProfile(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "小明", u.Name, "blank fields keep current values")

	q := e.board.Snapshot()
	assert.Equal(t, "小明", domain.UserIndex(q.Users)["u1"].Name)
}

func TestAccountService_AdminUserManagement(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	admin, u1 := e.user(t, "admin"), e.user(t, "u1")

	t.Run("non admin is rejected", func(t *testing.T) {
		_, err := e.accountSvc.SaveUser(ctx, u1, UserInput{Email: "x@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.ErrorIs(t, e.accountSvc.DeleteUser(ctx, nil, "u2"), domain.ErrUnauthenticated)
		assert.ErrorIs(t, e.accountSvc.SetSuspended(ctx, u1, "u2", true), domain.ErrForbidden)
	})

	t.Run("create then edit", func(t *testing.T) {
		created, err := e.accountSvc.SaveUser(ctx, admin, UserInput{Email: "Staff@example.com", Password: "secret1", Role: domain.RoleAdmin, Building: "b"})
		require.NoError(t, err)
		assert.Equal(t, "staff@example.com", created.Email)
		assert.Equal(t, domain.RoleAdmin, created.Role)
		hash := created.PasswordHash

		edited, err := e.accountSvc.SaveUser(ctx, admin, UserInput{ID: created.ID, Email: "staff@example.com", Name: "櫃台", Role: "weird"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, edited.Role, "unknown roles downgrade to USER")
		assert.Equal(t, hash, edited.PasswordHash, "blank password keeps the hash")

		_, err = e.accountSvc.SaveUser(ctx, admin, UserInput{ID: created.ID, Email: "ming@example.com"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		_, err = e.accountSvc.SaveUser(ctx, admin, UserInput{Email: "nopw@example.com"})
		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
	})

	t.Run("delete removes requests first", func(t *testing.T) {
		_, err := e.requestSvc.SubmitByID(ctx, "s1", e.user(t, "u2"))
		require.NoError(t, err)
		_, err = e.requestSvc.SubmitByID(ctx, "s2", u1)
		require.NoError(t, err)

		require.NoError(t, e.accountSvc.DeleteUser(ctx, admin, "u2"))
		_, err = e.users.Get(ctx, "u2")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		all, err := e.memReqs.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "u1", all[0].UserID)
		assert.Len(t, e.requestSvc.Queue(), 1)
	})

	t.Run("admin cannot delete or suspend self", func(t *testing.T) {
		assert.ErrorIs(t, e.accountSvc.DeleteUser(ctx, admin, admin.ID), domain.ErrInvalidState)
		assert.ErrorIs(t, e.accountSvc.SetSuspended(ctx, admin, admin.ID, true), domain.ErrInvalidState)
	})
}

func TestAccountService_SeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin when missing", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.accountSvc.SeedAdmin(ctx, "Boss@example.com", "secret1", ""))
		u, err := e.users.GetByEmail(ctx, "boss@example.com")
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())

		res, err := e.accountSvc.Login(ctx, "boss@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, string(domain.RoleAdmin), string(res.User.Role))
	})

	t.Run("promotes existing user", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.accountSvc.SeedAdmin(ctx, "ming@example.com", "ignored", ""))
		assert.True(t, e.user(t, "u1").IsAdmin())
	})

	t.Run("empty email is a noop", func(t *testing.T) {
		e := newEnv(t)
		before, _ := e.users.FetchAll(ctx)
		require.NoError(t, e.accountSvc.SeedAdmin(ctx, "", "", ""))
		after, _ := e.users.FetchAll(ctx)
		assert.Len(t, after, len(before))
	})
}

func TestAccountService_DedupeByEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	recent := t0.Add(48 * time.Hour)
	older := t0.Add(24 * time.Hour)

	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "dup-old", Email: "Ming@Example.com", Role: domain.RoleUser, LastLogin: &older, CreatedAt: t0}))
	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "dup-new", Email: "ming@example.com", Role: domain.RoleUser, LastLogin: &recent, CreatedAt: t0}))
	require.NoError(t, e.users.Save(ctx, &domain.User{ID: "admin-2", Email: "admin@example.com", Role: domain.RoleUser, LastLogin: &recent, CreatedAt: t0}))
	require.NoError(t, e.memReqs.Insert(ctx, &domain.SongRequest{ID: "r-old", SongID: "s1", UserID: "dup-old", RequestedAt: t0, Status: domain.StatusPlayed}))

	removed, err := e.accountSvc.DedupeByEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	users, err := e.users.FetchAll(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{"dup-new", "u2", "admin"}, ids)

	_, err = e.memReqs.Get(ctx, "r-old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	removed, err = e.accountSvc.DedupeByEmail(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
