package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 用户角色.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User 平台用户，注册后需管理员审批才能登录.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"   json:"id"`
	Email        string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null"             json:"-"`
	Role         Role      `gorm:"size:16;not null"              json:"role"`
	Approved     bool      `gorm:"not null;index"                json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate 生成缺省的 UUID 主键.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return nil
}
