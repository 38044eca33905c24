// Package auth 签发与校验 HS256 JWT.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/internal/model"
)

// ErrInvalidToken 令牌缺失、过期或签名不符.
var ErrInvalidToken = errors.New("invalid token")

// Claims 令牌声明，sub 为用户 id.
type Claims struct {
	jwt.RegisteredClaims

	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Identity 当前请求的用户身份.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

// IsAdmin 是否管理员.
func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

// Manager 负责令牌的签发与校验.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 根据认证配置创建 Manager.
func NewManager(cfg configs.AuthConfig) *Manager {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Manager{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

// Issue 为用户签发令牌，返回令牌与过期时间.
func (m *Manager) Issue(u *model.User) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Email: u.Email,
		Role:  u.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}

// Parse 校验令牌并返回身份.
func (m *Manager) Parse(tokenStr string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
