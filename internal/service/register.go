// 文件路径: internal/service/register.go
// 模块说明: 顾客注册，成功后直接签发登录令牌。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/support/hash"
)

const (
	minCustomerPasswordLength = 6
	maxPasswordLength         = 72
	registerLimit             = 5
	registerWindow            = time.Hour
)

// RegisterInput 描述注册表单。
type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Address         string
	Password        string
	PasswordConfirm string
	IP              string
	UserAgent       string
}

// RegisterService 负责顾客注册。
type RegisterService interface {
	Register(ctx context.Context, input RegisterInput) (*LoginResult, error)
}

type registerService struct {
	users  repository.UserRepository
	hasher hash.Hasher
	auth   AuthService
	rate   *security.RateLimiter
	audit  security.Recorder
	now    func() time.Time
}

func NewRegisterService(users repository.UserRepository, hasher hash.Hasher, auth AuthService, rate *security.RateLimiter, audit security.Recorder) RegisterService {
	return &registerService{users: users, hasher: hasher, auth: auth, rate: rate, audit: audit, now: time.Now}
}

func (s *registerService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if s == nil || s.users == nil || s.hasher == nil || s.auth == nil {
		return nil, fmt.Errorf("register service not configured / 注册服务未配置")
	}
	name, ok := cleanName(input.Name)
	if !ok {
		return nil, ErrInvalidName
	}
	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	var phone string
	if strings.TrimSpace(input.Phone) != "" {
		if phone, ok = normalizePhone(input.Phone); !ok {
			return nil, ErrInvalidPhone
		}
	}
	if n := utf8.RuneCountInString(input.Password); n < minCustomerPasswordLength || len(input.Password) > maxPasswordLength {
		return nil, ErrInvalidPassword
	}
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	if s.rate != nil && input.IP != "" {
		res, err := s.rate.Allow(ctx, "register:"+input.IP, registerLimit, registerWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return nil, ErrRateLimited
		}
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	user, err := s.users.Create(ctx, &repository.User{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   stripTags(input.Address),
		Password:  hashed,
		Status:    repository.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, security.Event{
			Kind:      security.EventRegister,
			ActorID:   email,
			IP:        input.IP,
			UserAgent: input.UserAgent,
			Metadata:  map[string]any{"user_id": user.ID},
		})
	}
	return s.auth.IssueForUser(ctx, user.ID)
}
