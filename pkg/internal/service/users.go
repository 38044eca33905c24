package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/auth"
	"github.com/yeisme/sociojustice/pkg/internal/model"
	"github.com/yeisme/sociojustice/pkg/internal/repository"
	"github.com/yeisme/sociojustice/pkg/internal/types"
)

// UserService 注册、登录与审批.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.Manager
	bcryptCost int
}

// NewUserService 从 context 获取依赖实例.
func NewUserService(ctx context.Context) *UserService {
	cfg := configs.GetConfig().Auth

	return NewUserServiceWith(managerFrom(ctx).Repositories().Users, auth.NewManager(cfg), cfg.BcryptCost)
}

// NewUserServiceWith 直接注入依赖.
func NewUserServiceWith(users repository.UserRepository, tokens *auth.Manager, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 创建未审批的普通用户，邮箱重复返回 Conflict.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < 8 {
		return nil, apperr.BadRequest("email and a password of at least 8 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.BadRequest("password cannot be hashed")
	}

	u := &model.User{Email: email, PasswordHash: string(hash), Role: model.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}

		return nil, apperr.Internal("failed to create user", err)
	}

	view := toUser(u)

	return &view, nil
}

// Login 校验密码并签发令牌；未审批用户返回 Forbidden.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}

		return nil, apperr.Internal("failed to load user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if !u.Approved {
		return nil, apperr.Forbidden("account pending approval")
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	return &types.LoginResponse{Token: token, ExpiresAt: exp, User: toUser(u)}, nil
}

// Approve 审批用户.
func (s *UserService) Approve(ctx context.Context, email string) (*types.User, error) {
	u, err := s.users.SetApproved(ctx, normalizeEmail(email), true)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to approve user")
	}

	u.Approved = true
	view := toUser(u)

	return &view, nil
}

// Me 返回当前用户.
func (s *UserService) Me(ctx context.Context, id string) (*types.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}

	view := toUser(u)

	return &view, nil
}

// EnsureAdmin 创建或提升管理员账户，命令行初始化使用.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*types.User, error) {
	email = normalizeEmail(email)

	if _, err := s.Register(ctx, &types.RegisterRequest{Email: email, Password: password}); err != nil && apperr.KindOf(err) != apperr.KindConflict {
		return nil, err
	}

	u, err := s.users.Promote(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to promote user")
	}

	view := toUser(u)

	return &view, nil
}
