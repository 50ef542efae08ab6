package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/support/hash"
)

// UserView is the JSON shape of an account.
type UserView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	LastLoginAt int64  `json:"last_login_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// ProfileInput 描述可修改的个人资料字段。
type ProfileInput struct {
	Name    string
	Phone   string
	Address string
}

// PasswordChangeInput 描述修改密码请求。
type PasswordChangeInput struct {
	Current string
	New     string
	Confirm string
}

// AccountService 提供顾客个人中心功能。
type AccountService interface {
	Profile(ctx context.Context, userID int64) (*UserView, error)
	UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*UserView, error)
	ChangePassword(ctx context.Context, userID int64, input PasswordChangeInput) error
	Orders(ctx context.Context, userID int64, page, pageSize int) (*OrderPage, error)
}

type accountService struct {
	users  repository.UserRepository
	orders repository.OrderRepository
	hasher hash.Hasher
	now    func() time.Time
}

func NewAccountService(users repository.UserRepository, orders repository.OrderRepository, hasher hash.Hasher) AccountService {
	return &accountService{users: users, orders: orders, hasher: hasher, now: time.Now}
}

func (s *accountService) Profile(ctx context.Context, userID int64) (*UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	view := toUserView(user)
	return &view, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	name, ok := cleanName(input.Name)
	if !ok {
		return nil, ErrInvalidName
	}
	phone := ""
	if strings.TrimSpace(input.Phone) != "" {
		if phone, ok = normalizePhone(input.Phone); !ok {
			return nil, ErrInvalidPhone
		}
	}
	user.Name = name
	user.Phone = phone
	user.Address = stripTags(input.Address)
	user.UpdatedAt = s.now().Unix()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, translateNotFound(err)
	}
	view := toUserView(user)
	return &view, nil
}

func (s *accountService) ChangePassword(ctx context.Context, userID int64, input PasswordChangeInput) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return translateNotFound(err)
	}
	if err := s.hasher.Compare(user.Password, input.Current); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}
	if n := utf8.RuneCountInString(input.New); n < minCustomerPasswordLength || len(input.New) > maxPasswordLength {
		return ErrInvalidPassword
	}
	if input.New != input.Confirm {
		return ErrPasswordMismatch
	}
	hashed, err := s.hasher.Hash(input.New)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.UpdatedAt = s.now().Unix()
	return s.users.Save(ctx, user)
}

// Orders lists the customer's own orders and reservations, newest first.
func (s *accountService) Orders(ctx context.Context, userID int64, page, pageSize int) (*OrderPage, error) {
	limit, offset := paginate(page, pageSize)
	filter := repository.OrderFilter{UserID: &userID, Limit: limit, Offset: offset}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: toOrderViews(orders), Total: total}, nil
}

func toUserView(u *repository.User) UserView {
	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
