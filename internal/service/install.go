// 文件路径: internal/service/install.go
// 模块说明: 安装向导，第一次部署时用于创建管理员账号；命令行 admin create 也走这里。
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/support/hash"
)

const minAdminPasswordLength = 8

// InstallInput 描述创建管理员时需要收集的字段。
type InstallInput struct {
	Email    string
	Name     string
	Password string
	// Force allows creating another admin after the first one (CLI only).
	Force bool
}

// InstallService 用于判断系统是否需要初始化，并创建管理员。
type InstallService interface {
	NeedsBootstrap(ctx context.Context) (bool, error)
	CreateAdmin(ctx context.Context, input InstallInput) (*UserView, error)
}

type installService struct {
	users  repository.UserRepository
	hasher hash.Hasher
	audit  security.Recorder
	now    func() time.Time

	// createMu 串行化首个管理员的创建。
	createMu sync.Mutex

	cacheTTL time.Duration
	mu       sync.RWMutex
	cached   bool
	valid    bool
	expires  time.Time
}

// NewInstallService 构建安装向导服务。
func NewInstallService(users repository.UserRepository, hasher hash.Hasher, audit security.Recorder) InstallService {
	return &installService{
		users:    users,
		hasher:   hasher,
		audit:    audit,
		now:      time.Now,
		cacheTTL: 15 * time.Second,
	}
}

func (s *installService) NeedsBootstrap(ctx context.Context) (bool, error) {
	if s == nil || s.users == nil {
		return false, fmt.Errorf("install service not configured / 安装服务未配置")
	}
	if need, ok := s.cachedValue(); ok {
		return need, nil
	}
	hasAdmin, err := s.users.HasAdmin(ctx)
	if err != nil {
		return false, err
	}
	need := !hasAdmin
	s.storeCache(need)
	return need, nil
}

func (s *installService) CreateAdmin(ctx context.Context, input InstallInput) (*UserView, error) {
	if s == nil || s.users == nil || s.hasher == nil {
		return nil, fmt.Errorf("install service not configured / 安装服务未配置")
	}
	email := normalizeEmail(input.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	name, ok := cleanName(input.Name)
	if !ok {
		return nil, ErrInvalidName
	}
	if len(input.Password) < minAdminPasswordLength || len(input.Password) > maxPasswordLength || !hasLetterAndNumber(input.Password) {
		return nil, ErrInvalidPassword
	}
	if !input.Force {
		need, err := s.NeedsBootstrap(ctx)
		if err != nil {
			return nil, err
		}
		if !need {
			return nil, ErrAlreadyInitialized
		}
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashValue, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().Unix()
	user := &repository.User{
		Name:      name,
		Email:     email,
		Password:  hashValue,
		IsAdmin:   true,
		Status:    repository.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var created *repository.User
	if input.Force {
		created, err = s.users.Create(ctx, user)
	} else {
		s.createMu.Lock()
		created, err = s.users.CreateFirstAdmin(ctx, user)
		s.createMu.Unlock()
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAdminExists):
			s.invalidate()
			return nil, ErrAlreadyInitialized
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.invalidate()
	if s.audit != nil {
		s.audit.Record(ctx, security.Event{Kind: security.EventAdminCreated, ActorID: email, Metadata: map[string]any{"user_id": created.ID}})
	}
	view := toUserView(created)
	return &view, nil
}

func (s *installService) cachedValue() (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid || s.now().After(s.expires) {
		return false, false
	}
	return s.cached, true
}

func (s *installService) storeCache(need bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = need
	s.valid = true
	s.expires = s.now().Add(s.cacheTTL)
}

func (s *installService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = false
	s.valid = false
	s.expires = time.Time{}
}
