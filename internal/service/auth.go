// 文件路径: internal/service/auth.go
// 模块说明: 登录、令牌校验与签发。顾客与管理员共用同一套账号体系，管理员由 is_admin 区分。
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/auth/token"
	"github.com/brinaregal/brina/internal/cache"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/support/hash"
)

// AuthService coordinates login and session issuance.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Verify(ctx context.Context, rawToken string) (*Claims, error)
	IssueForUser(ctx context.Context, userID int64) (*LoginResult, error)
}

// LoginInput represents the payload required for user login.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// LoginResult returns issued token information and user snapshot.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
}

// Claims describe authenticated user payload extracted from tokens.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthDeps 注入认证服务依赖。
type AuthDeps struct {
	Users     repository.UserRepository
	Settings  repository.SettingRepository
	LoginLogs repository.LoginLogRepository
	Hasher    hash.Hasher
	Tokens    *token.Manager
	Rate      *security.RateLimiter
	Audit     security.Recorder
	Cache     cache.Store
}

type authService struct {
	users         repository.UserRepository
	settings      repository.SettingRepository
	loginLogs     repository.LoginLogRepository
	hasher        hash.Hasher
	tokenMgr      *token.Manager
	rate          *security.RateLimiter
	audit         security.Recorder
	loginFailures cache.Store
	now           func() time.Time
}

const (
	loginLimit  = 30
	loginWindow = time.Minute
)

// Settings keys controlling the password failure lock.
const (
	SettingPasswordLimitEnable = "password_limit_enable"
	SettingPasswordLimitCount  = "password_limit_count"
	SettingPasswordLimitExpire = "password_limit_expire"
)

// NewAuthService wires repository + infrastructure helpers.
func NewAuthService(deps AuthDeps) AuthService {
	var loginFailures cache.Store
	if deps.Cache != nil {
		loginFailures = deps.Cache.Namespace("auth").Namespace("password_fail")
	}
	return &authService{
		users:         deps.Users,
		settings:      deps.Settings,
		loginLogs:     deps.LoginLogs,
		hasher:        deps.Hasher,
		tokenMgr:      deps.Tokens,
		rate:          deps.Rate,
		audit:         deps.Audit,
		loginFailures: loginFailures,
		now:           time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if s == nil || s.users == nil || s.tokenMgr == nil || s.hasher == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	email := normalizeEmail(input.Email)
	password := input.Password
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.ensurePasswordLimit(ctx, email); err != nil {
		s.recordLoginLog(ctx, nil, email, false, "password_limit", input)
		s.recordAudit(ctx, security.EventLoginFailure, email, input, map[string]any{"reason": "password_limit"})
		return nil, err
	}

	if s.rate != nil {
		res, err := s.rate.Allow(ctx, "login:"+email, loginLimit, loginWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			s.recordLoginLog(ctx, nil, email, false, "rate_limited", input)
			s.recordAudit(ctx, security.EventLoginFailure, email, input, map[string]any{"reason": "rate_limited", "limit": loginLimit})
			return nil, ErrRateLimited
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.bumpLoginFailure(ctx, email)
			s.recordLoginLog(ctx, nil, email, false, "not_found", input)
			s.recordAudit(ctx, security.EventLoginFailure, email, input, map[string]any{"reason": "not_found"})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.bumpLoginFailure(ctx, email)
			s.recordLoginLog(ctx, user, email, false, "password_mismatch", input)
			s.recordAudit(ctx, security.EventLoginFailure, email, input, map[string]any{"reason": "password"})
			return nil, ErrInvalidCredentials
		}
		s.recordLoginLog(ctx, user, email, false, "password_error", input)
		return nil, err
	}

	if !user.Active() {
		s.recordLoginLog(ctx, user, email, false, "account_disabled", input)
		s.recordAudit(ctx, security.EventLoginFailure, email, input, map[string]any{"reason": "disabled", "status": user.Status})
		return nil, ErrAccountDisabled
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.touchLogin(ctx, user, password, input)
	s.clearLoginFailure(ctx, email)
	s.recordLoginLog(ctx, user, email, true, "success", input)
	s.recordAudit(ctx, security.EventLoginSuccess, email, input, map[string]any{"user_id": user.ID, "is_admin": user.IsAdmin})
	return result, nil
}

func (s *authService) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if s == nil || s.users == nil || s.tokenMgr == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	tokenStr := strings.TrimSpace(rawToken)
	if tokenStr == "" {
		return nil, ErrUnauthorized
	}
	parsed, err := s.tokenMgr.Parse(tokenStr)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return nil, ErrUnauthorized
	}
	// the account is reloaded so a revoked admin flag takes effect at once
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !user.Active() {
		return nil, ErrAccountDisabled
	}
	return &Claims{UserID: user.ID, Email: user.Email, Name: user.Name, IsAdmin: user.IsAdmin}, nil
}

func (s *authService) IssueForUser(ctx context.Context, userID int64) (*LoginResult, error) {
	if s == nil || s.users == nil || s.tokenMgr == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active() {
		return nil, ErrAccountDisabled
	}
	return s.issue(user)
}

func (s *authService) issue(user *repository.User) (*LoginResult, error) {
	role := token.RoleCustomer
	if user.IsAdmin {
		role = token.RoleAdmin
	}
	tokenStr, claims, err := s.tokenMgr.Issue(token.IssueInput{
		Subject: strconv.FormatInt(user.ID, 10),
		Role:    role,
		Attributes: map[string]any{
			"email": user.Email,
			"name":  user.Name,
		},
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     tokenStr,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsAdmin:   user.IsAdmin,
	}, nil
}

func (s *authService) ensurePasswordLimit(ctx context.Context, email string) error {
	if s.loginFailures == nil {
		return nil
	}
	if !s.boolSetting(ctx, SettingPasswordLimitEnable, true) {
		return nil
	}
	maxAttempts := s.intSetting(ctx, SettingPasswordLimitCount, 5)
	if maxAttempts <= 0 {
		return nil
	}
	failures, err := s.loginFailures.Count(ctx, email)
	if err != nil || failures < int64(maxAttempts) {
		return nil
	}
	expire := s.limitExpireMinutes(ctx)
	return fmt.Errorf("%w: retry after %d minutes / 请在 %d 分钟后重试", ErrRateLimited, expire, expire)
}

func (s *authService) bumpLoginFailure(ctx context.Context, email string) {
	if s.loginFailures == nil {
		return
	}
	ttl := time.Duration(s.limitExpireMinutes(ctx)) * time.Minute
	_, _ = s.loginFailures.Increment(ctx, email, 1, ttl)
}

func (s *authService) clearLoginFailure(ctx context.Context, email string) {
	if s.loginFailures == nil {
		return
	}
	s.loginFailures.Delete(ctx, email)
}

func (s *authService) limitExpireMinutes(ctx context.Context) int {
	expire := s.intSetting(ctx, SettingPasswordLimitExpire, 60)
	if expire <= 0 {
		expire = 60
	}
	return expire
}

func (s *authService) settingString(ctx context.Context, key, def string) string {
	if s.settings == nil {
		return def
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil || setting == nil {
		return def
	}
	value := strings.TrimSpace(setting.Value)
	if value == "" {
		return def
	}
	return value
}

func (s *authService) boolSetting(ctx context.Context, key string, def bool) bool {
	switch strings.ToLower(s.settingString(ctx, key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func (s *authService) intSetting(ctx context.Context, key string, def int) int {
	if n, err := strconv.Atoi(s.settingString(ctx, key, "")); err == nil {
		return n
	}
	return def
}

func (s *authService) recordLoginLog(ctx context.Context, user *repository.User, email string, success bool, reason string, input LoginInput) {
	if s.loginLogs == nil || email == "" {
		return
	}
	now := s.now().Unix()
	entry := &repository.LoginLog{
		Email:     email,
		IP:        strings.TrimSpace(input.IP),
		UserAgent: strings.TrimSpace(input.UserAgent),
		Success:   success,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user != nil && user.ID > 0 {
		entry.UserID = &user.ID
	}
	if err := s.loginLogs.Create(ctx, entry); err != nil {
		s.recordAudit(ctx, "auth.login.log_store_failed", email, input, map[string]any{"error": err.Error()})
	}
}

func (s *authService) recordAudit(ctx context.Context, kind string, email string, input LoginInput, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	payload := map[string]any{"email": email}
	for k, v := range metadata {
		payload[k] = v
	}
	s.audit.Record(ctx, security.Event{
		Kind:      kind,
		ActorID:   email,
		IP:        input.IP,
		UserAgent: input.UserAgent,
		Metadata:  payload,
	})
}

// touchLogin stamps the login time and upgrades the hash when the bcrypt
// cost changed.
func (s *authService) touchLogin(ctx context.Context, user *repository.User, password string, input LoginInput) {
	now := s.now().Unix()
	if s.hasher.NeedsRehash(user.Password) {
		if hashed, err := s.hasher.Hash(password); err == nil {
			user.Password = hashed
			user.LastLoginAt = now
			user.UpdatedAt = now
			if err := s.users.Save(ctx, user); err != nil {
				s.recordAudit(ctx, "auth.login.persist_failed", user.Email, input, map[string]any{"error": err.Error(), "user_id": user.ID})
			}
			return
		}
	}
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.recordAudit(ctx, "auth.login.persist_failed", user.Email, input, map[string]any{"error": err.Error(), "user_id": user.ID})
	}
	user.LastLoginAt = now
}
