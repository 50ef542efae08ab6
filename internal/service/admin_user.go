package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
)

// AdminUserFilter 描述后台顾客列表的筛选条件。
type AdminUserFilter struct {
	Keyword  string
	IsAdmin  *bool
	Page     int
	PageSize int
}

// AdminUserView 在 UserView 基础上附带账号状态。
type AdminUserView struct {
	UserView
	Active bool `json:"active"`
}

// AdminUserPage 是分页结果。
type AdminUserPage struct {
	Users []AdminUserView `json:"users"`
	Total int64           `json:"total"`
}

// AdminUserService 提供后台顾客管理。
type AdminUserService interface {
	List(ctx context.Context, filter AdminUserFilter) (*AdminUserPage, error)
	Get(ctx context.Context, id int64) (*AdminUserView, error)
	SetActive(ctx context.Context, id int64, active bool, actorID int64) (*AdminUserView, error)
	Export(ctx context.Context, filter AdminUserFilter) ([]byte, error)
}

type adminUserService struct {
	users repository.UserRepository
	audit security.Recorder
	now   func() time.Time
}

func NewAdminUserService(users repository.UserRepository, audit security.Recorder) AdminUserService {
	return &adminUserService{users: users, audit: audit, now: time.Now}
}

func (s *adminUserService) List(ctx context.Context, filter AdminUserFilter) (*AdminUserPage, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("admin user service not configured / 管理用户服务未配置")
	}
	limit, offset := paginate(filter.Page, filter.PageSize)
	repoFilter := repository.UserSearchFilter{
		Keyword: strings.TrimSpace(filter.Keyword),
		IsAdmin: filter.IsAdmin,
		Limit:   limit,
		Offset:  offset,
	}
	users, err := s.users.Search(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.CountFiltered(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	page := &AdminUserPage{Users: make([]AdminUserView, 0, len(users)), Total: total}
	for _, u := range users {
		if u == nil {
			continue
		}
		page.Users = append(page.Users, toAdminUserView(u))
	}
	return page, nil
}

func (s *adminUserService) Get(ctx context.Context, id int64) (*AdminUserView, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("admin user service not configured / 管理用户服务未配置")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	view := toAdminUserView(user)
	return &view, nil
}

// SetActive 启用或停用账号；管理员不能停用自己。
func (s *adminUserService) SetActive(ctx context.Context, id int64, active bool, actorID int64) (*AdminUserView, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("admin user service not configured / 管理用户服务未配置")
	}
	if id == actorID && !active {
		return nil, ErrForbidden
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	status := repository.UserStatusDisabled
	if active {
		status = repository.UserStatusActive
	}
	if user.Status != status {
		user.Status = status
		user.UpdatedAt = s.now().Unix()
		if err := s.users.Save(ctx, user); err != nil {
			return nil, err
		}
		if s.audit != nil {
			s.audit.Record(ctx, security.Event{
				Kind:     security.EventUserStatus,
				ActorID:  strconv.FormatInt(actorID, 10),
				Metadata: map[string]any{"user_id": id, "active": active},
			})
		}
	}
	view := toAdminUserView(user)
	return &view, nil
}

// Export 导出符合条件的全部账号为 CSV。
func (s *adminUserService) Export(ctx context.Context, filter AdminUserFilter) ([]byte, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("admin user service not configured / 管理用户服务未配置")
	}
	// 导出时不限制数量
	users, err := s.users.Search(ctx, repository.UserSearchFilter{
		Keyword: strings.TrimSpace(filter.Keyword),
		IsAdmin: filter.IsAdmin,
		Limit:   repository.NoLimit,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Name", "Email", "Phone", "Address", "Admin", "Active", "CreatedAt"}); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u == nil {
			continue
		}
		record := []string{
			strconv.FormatInt(u.ID, 10),
			csvEscape(u.Name),
			csvEscape(u.Email),
			csvEscape(u.Phone),
			csvEscape(u.Address),
			strconv.FormatBool(u.IsAdmin),
			strconv.FormatBool(u.Active()),
			time.Unix(u.CreatedAt, 0).UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toAdminUserView(u *repository.User) AdminUserView {
	return AdminUserView{UserView: toUserView(u), Active: u.Active()}
}

// csvEscape 防止表格软件把单元格当作公式执行。
func csvEscape(value string) string {
	trimmed := strings.TrimLeft(value, " \t")
	if trimmed != "" {
		switch trimmed[0] {
		case '=', '+', '-', '@':
			return "'" + value
		}
	}
	return value
}
