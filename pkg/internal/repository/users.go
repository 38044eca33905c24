package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeisme/sociojustice/pkg/internal/model"
)

// UserRepository 用户仓储.
type UserRepository interface {
	// Create 邮箱重复时返回 ErrDuplicate.
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	SetApproved(ctx context.Context, email string, approved bool) (*model.User, error)
	// Promote 设为已审批的管理员.
	Promote(ctx context.Context, email string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建基于 GORM 的用户仓储.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	if _, err := r.FindByEmail(ctx, u.Email); err == nil {
		return ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	// 并发注册仍由唯一索引兜底
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (r *userRepo) SetApproved(ctx context.Context, email string, approved bool) (*model.User, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(u).Update("approved", approved).Error; err != nil {
		return nil, err
	}

	return u, nil
}

func (r *userRepo) Promote(ctx context.Context, email string) (*model.User, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"role":     model.RoleAdmin,
		"approved": true,
	}).Error; err != nil {
		return nil, err
	}

	u.Role = model.RoleAdmin
	u.Approved = true

	return u, nil
}
