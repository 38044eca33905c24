package types

import "time"

// RegisterRequest 用户注册.
type RegisterRequest struct {
	Email    string `json:"email"    rule:"required,email,max=255"`
	Password string `json:"password" rule:"required,min=8,max=72"`
}

// LoginRequest 用户登录.
type LoginRequest struct {
	Email    string `json:"email"    rule:"required,email"`
	Password string `json:"password" rule:"required"`
}

// ApproveRequest 管理员审批用户.
type ApproveRequest struct {
	Email string `json:"email" rule:"required,email"`
}

// User 用户视图.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse 登录结果.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
