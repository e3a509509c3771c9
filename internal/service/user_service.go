package service

import (
	"context"
	"strings"

	"local-yield/internal/core/auth"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/pkg/utils"
)

type UserService struct {
	users   *repo.UserRepo
	jwt     *auth.JWTer
	auditor *Auditor
}

func NewUserService(users *repo.UserRepo, jwt *auth.JWTer, auditor *Auditor) *UserService {
	return &UserService{users: users, jwt: jwt, auditor: auditor}
}

type RegisterInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	ZipCode  string      `json:"zipCode"`
}

// Register 自助注册只开放 buyer/producer，admin 由后台发放
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, "", domain.Invalid("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, "", domain.Invalid("password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	if in.Role == domain.RoleAdmin || !domain.ValidRole(in.Role) {
		return nil, "", domain.Invalid("role must be buyer or producer")
	}
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", domain.ErrConflict
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: utils.HashPassword(in.Password),
		Role:         in.Role,
		ZipCode:      strings.TrimSpace(in.ZipCode),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := s.jwt.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 凭证错误统一返回未认证，不区分账号不存在
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrUnauthenticated
	}
	token, err := s.jwt.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) Me(ctx context.Context, actor *domain.Identity) (*domain.User, error) {
	actor, err := domain.RequireAuth(actor)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *UserService) ListForAdmin(ctx context.Context, actor *domain.Identity, offset, limit int) ([]domain.User, int64, error) {
	if _, err := domain.RequireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, offset, limit)
}

// Ban 软删封禁，写审计；admin 账号不可封
func (s *UserService) Ban(ctx context.Context, actor *domain.Identity, userID string) error {
	actor, err := domain.RequireAdmin(actor)
	if err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrNotFound
	}
	if u.Role == domain.RoleAdmin {
		return domain.Forbid("cannot ban an admin account")
	}
	n, err := s.users.SoftDelete(ctx, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return s.auditor.Record(ctx, actor.ID, domain.AuditUserBan, userID, userBanMeta{Email: u.Email})
}
