package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local-yield/internal/core/auth"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
)

func testJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "local-yield-test", TTL: time.Hour}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewUserService(repo.NewUserRepo(db), testJWTer(), newAuditor(db))

	t.Run("register issues a token", func(t *testing.T) {
		u, tok, err := svc.Register(ctx, RegisterInput{
			Email: "Farmer@Example.com", Name: "Jo", Password: "longenough",
			Role: domain.RoleProducer, ZipCode: "94110",
		})
		require.NoError(t, err)
		assert.Equal(t, "farmer@example.com", u.Email)
		assert.NotEmpty(t, tok)

		claims, err := testJWTer().Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UID)
		assert.Equal(t, string(domain.RoleProducer), claims.Role)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, _, err := svc.Register(ctx, RegisterInput{
			Email: "farmer@example.com", Password: "longenough", Role: domain.RoleBuyer,
		})
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("admin cannot self-register", func(t *testing.T) {
		_, _, err := svc.Register(ctx, RegisterInput{
			Email: "boss@example.com", Password: "longenough", Role: domain.RoleAdmin,
		})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, _, err := svc.Register(ctx, RegisterInput{Email: "x@example.com", Password: "short"})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("login verifies the credential", func(t *testing.T) {
		u, _, err := svc.Login(ctx, "farmer@example.com", "longenough")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleProducer, u.Role)

		_, _, err = svc.Login(ctx, "farmer@example.com", "wrongpass")
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
		// 账号不存在与密码错误同一错误，不暴露存在性
		_, _, err = svc.Login(ctx, "ghost@example.com", "whatever")
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestBanUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	auditor := newAuditor(db)
	svc := NewUserService(repo.NewUserRepo(db), testJWTer(), auditor)
	admin := seedUser(t, db, domain.RoleAdmin)
	victim := seedUser(t, db, domain.RoleBuyer)

	t.Run("only admin may ban", func(t *testing.T) {
		err := svc.Ban(ctx, ident(victim), admin.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin accounts are off limits", func(t *testing.T) {
		other := seedUser(t, db, domain.RoleAdmin)
		err := svc.Ban(ctx, ident(admin), other.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("ban soft deletes and audits", func(t *testing.T) {
		require.NoError(t, svc.Ban(ctx, ident(admin), victim.ID))

		gone, err := repo.NewUserRepo(db).FindByID(ctx, victim.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		logs, err := auditor.ByTarget(ctx, victim.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, domain.AuditUserBan, logs[0].Action)

		// 已删用户再封禁报 not found
		err = svc.Ban(ctx, ident(admin), victim.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
