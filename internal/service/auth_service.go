package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"safezone/internal/domain"
	"safezone/internal/rbac"
	"safezone/internal/repository"
	"safezone/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authCodePrefix  = "auth:code:"
	authTokenPrefix = "auth:token:"
	authCodeLength  = 4
)

var (
	ErrInvalidCode  = errors.New("invalid verification code")
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService 短信验证码登录（验证码只写日志，不实际发送）
type AuthService interface {
	SendCode(ctx context.Context, phone string) (*SendCodeResponse, error)
	VerifyCode(ctx context.Context, phone, code string) (*VerifyCodeResponse, error)
	// SessionUser token 为空时返回默认用户
	SessionUser(ctx context.Context, token string) (*domain.User, error)
	Permissions(ctx context.Context, token string) (*domain.Permissions, error)
}

type authService struct {
	usersRepo     repository.UsersRepository
	kv            store.KV
	codeTTL       time.Duration
	tokenTTL      time.Duration
	defaultUserID string
	logger        *zap.Logger
	newCode       func() (string, error)
}

func NewAuthService(usersRepo repository.UsersRepository, kv store.KV, codeTTL, tokenTTL time.Duration, defaultUserID string, logger *zap.Logger) AuthService {
	return &authService{
		usersRepo:     usersRepo,
		kv:            kv,
		codeTTL:       codeTTL,
		tokenTTL:      tokenTTL,
		defaultUserID: defaultUserID,
		logger:        logger,
		newCode:       randomCode,
	}
}

// SendCodeResponse 与客户端约定的字段
type SendCodeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"` // 秒
}

// VerifyCodeResponse 登录结果
type VerifyCodeResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func normalizePhone(p string) string {
	return strings.Join(strings.Fields(p), "")
}

func (s *authService) SendCode(ctx context.Context, phone string) (*SendCodeResponse, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, domain.NewValidationError("phoneNumber", "phone number is required")
	}
	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := s.kv.Set(ctx, authCodePrefix+phone, code, s.codeTTL); err != nil {
		s.logger.Error("Failed to store verification code", zap.Error(err))
		return nil, fmt.Errorf("failed to send code: %w", err)
	}

	s.logger.Info("Verification code issued",
		zap.String("phone", phone),
		zap.String("code", code),
	)
	return &SendCodeResponse{
		Success:   true,
		Message:   "Verification code sent",
		ExpiresIn: int(s.codeTTL / time.Second),
	}, nil
}

// VerifyCode 验证码一次有效；号码未注册时返回 ErrUserNotFound
func (s *authService) VerifyCode(ctx context.Context, phone, code string) (*VerifyCodeResponse, error) {
	phone = normalizePhone(phone)
	code = strings.TrimSpace(code)
	if len(code) != authCodeLength {
		return nil, ErrInvalidCode
	}

	want, err := s.kv.Get(ctx, authCodePrefix+phone)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if want != code {
		return nil, ErrInvalidCode
	}

	user, err := s.usersRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Delete(ctx, authCodePrefix+phone); err != nil {
		s.logger.Warn("Failed to delete used verification code", zap.Error(err))
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, authTokenPrefix+token, user.ID, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return &VerifyCodeResponse{Success: true, User: user, Token: token}, nil
}

func (s *authService) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return s.usersRepo.GetUser(ctx, s.defaultUserID)
	}
	userID, err := s.kv.Get(ctx, authTokenPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return s.usersRepo.GetUser(ctx, userID)
}

// Permissions 根据角色生成，不读取 User.Permissions
func (s *authService) Permissions(ctx context.Context, token string) (*domain.Permissions, error) {
	u, err := s.SessionUser(ctx, token)
	if err != nil {
		return nil, err
	}
	p := rbac.Permissions(u.Role)
	return &p, nil
}
